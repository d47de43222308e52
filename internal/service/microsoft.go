package service

import (
	"context"
	"time"

	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
)

// MicrosoftService refreshes access tokens issued by the Microsoft identity platform.
type MicrosoftService interface {
	// RefreshAccessToken exchanges the refresh token of ts for a Graph access token. The scope
	// is always the configured Graph scope; any scope on ts is replaced.
	RefreshAccessToken(ctx context.Context, ts model.OAuthTokenSet) (*remote.Token, error)
}

type microsoftService struct {
	refresher remote.TokenRefresher
	scope     string
	timeout   time.Duration
	log       *logger.Logger
}

func NewMicrosoftService(refresher remote.TokenRefresher, scope string, timeout time.Duration, log *logger.Logger) MicrosoftService {
	return &microsoftService{refresher: refresher, scope: scope, timeout: timeout, log: log}
}

func (s *microsoftService) RefreshAccessToken(ctx context.Context, ts model.OAuthTokenSet) (*remote.Token, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ts.Scope = s.scope
	tok, err := refreshAccessToken(ctx, s.refresher, ts)
	if err != nil {
		s.log.Warn("microsoft_refresh_failed", "client_id", ts.ClientID, "error", err)
		return nil, err
	}
	return tok, nil
}
