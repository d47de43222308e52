package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
	remoteMocks "github.com/jasonhew98/e-commerce-service/internal/remote/mocks"
)

const graphScope = "https://graph.microsoft.com/Files.Read.All"

func TestMicrosoftService_RefreshAccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the graph scope", func(t *testing.T) {
		refresher := new(remoteMocks.MockTokenRefresher)
		refresher.On("Refresh", mock.Anything, model.OAuthTokenSet{
			ClientID: "c", ClientSecret: "s", RefreshToken: "r", Scope: graphScope,
		}).Return(remote.Token{AccessToken: "ms-new", RefreshToken: "r2", ExpiresIn: 3600}, nil).Once()
		svc := NewMicrosoftService(refresher, graphScope, time.Second, logger.Nop())

		tok, err := svc.RefreshAccessToken(ctx, model.OAuthTokenSet{ClientID: "c", ClientSecret: "s", RefreshToken: "r", Scope: "other"})

		require.NoError(t, err)
		assert.Equal(t, &remote.Token{AccessToken: "ms-new", RefreshToken: "r2", ExpiresIn: 3600}, tok)
		refresher.AssertExpectations(t)
	})

	t.Run("refresh failure", func(t *testing.T) {
		refresher := new(remoteMocks.MockTokenRefresher)
		refresher.On("Refresh", mock.Anything, mock.Anything).Return(remote.Token{}, errors.New("invalid_grant")).Once()
		svc := NewMicrosoftService(refresher, graphScope, time.Second, logger.Nop())

		_, err := svc.RefreshAccessToken(ctx, model.OAuthTokenSet{ClientID: "c", RefreshToken: "r"})

		requireCode(t, err, apperr.CodeFetchRefreshFailed)
	})

	t.Run("deadline maps to timeout", func(t *testing.T) {
		refresher := new(remoteMocks.MockTokenRefresher)
		refresher.On("Refresh", mock.Anything, mock.Anything).
			Return(remote.Token{}, context.DeadlineExceeded).Once()
		svc := NewMicrosoftService(refresher, graphScope, time.Second, logger.Nop())

		_, err := svc.RefreshAccessToken(ctx, model.OAuthTokenSet{ClientID: "c", RefreshToken: "r"})

		requireCode(t, err, apperr.CodeFetchTimeout)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		refresher := new(remoteMocks.MockTokenRefresher)
		svc := NewMicrosoftService(refresher, graphScope, 0, logger.Nop())

		_, err := svc.RefreshAccessToken(ctx, model.OAuthTokenSet{ClientID: "c"})

		requireCode(t, err, apperr.CodeValidation)
		refresher.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})
}
