package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCatalog(t *testing.T) {
	assert.NoError(t, ValidateCatalog())

	err := validate([]Entry{
		{Code: "1", Kind: KindValidation, Message: "a"},
		{Code: "1", Kind: KindNotFound, Message: "b"},
	})
	assert.ErrorContains(t, err, "duplicate code")

	err = validate([]Entry{{Code: "1", Kind: KindValidation}})
	assert.ErrorContains(t, err, "incomplete")
}

func TestErrorMatching(t *testing.T) {
	cause := errors.New("bucket missing")
	err := fmt.Errorf("reconcile: %w", Wrap(CodeStorageUnavailable, cause))

	assert.True(t, errors.Is(err, New(CodeStorageUnavailable)))
	assert.False(t, errors.Is(err, New(CodeUnknown)))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindStorageUnavailable, KindOf(err))
}

func TestAs(t *testing.T) {
	e := As(errors.New("boom"))
	assert.Equal(t, KindUnknown, e.Kind)
	assert.Equal(t, CodeUnknown, e.Code)

	nf := NotFound("account not found")
	assert.Same(t, nf, As(fmt.Errorf("get: %w", nf)))
}

func TestLookupUnregistered(t *testing.T) {
	assert.Equal(t, CodeUnknown, Lookup("nope").Code)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:         400,
		KindNotFound:           404,
		KindConflict:           409,
		KindBusinessRule:       422,
		KindFetch:              502,
		KindStorageUnavailable: 500,
		KindUnknown:            500,
	}
	for k, want := range cases {
		assert.Equal(t, want, HTTPStatus(k), k.String())
	}
}
