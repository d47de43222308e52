package otel

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/config"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
)

func TestSamplerRatio(t *testing.T) {
	assert.Equal(t, 1.0, samplerRatio(""))
	assert.Equal(t, 1.0, samplerRatio("abc"))
	assert.Equal(t, 0.25, samplerRatio("0.25"))
	assert.Equal(t, 1.0, samplerRatio("4"))
	assert.Equal(t, 0.0, samplerRatio("-1"))
}

func TestNewSampler(t *testing.T) {
	assert.Equal(t, "AlwaysOffSampler", newSampler("always_off", "").Description())
	assert.Equal(t, "TraceIDRatioBased{0.5}", newSampler("traceidratio", "0.5").Description())
	assert.True(t, strings.HasPrefix(newSampler("", "").Description(), "ParentBased{root:AlwaysOnSampler"))
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{Disabled: true}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnsupportedProtocolDegrades(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TracingConfig{ServiceName: "test", Protocol: "carrier-pigeon"}, logger.Nop())
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
