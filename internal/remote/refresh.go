package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jasonhew98/e-commerce-service/internal/model"
)

// HTTPTokenRefresher performs the OAuth 2.0 refresh_token grant against a token endpoint.
type HTTPTokenRefresher struct {
	tokenURL   string
	httpClient *http.Client
}

var _ TokenRefresher = (*HTTPTokenRefresher)(nil)

// NewHTTPTokenRefresher returns a refresher posting to tokenURL. A nil client gets a default one
// with a traced transport.
func NewHTTPTokenRefresher(tokenURL string, client *http.Client) *HTTPTokenRefresher {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &HTTPTokenRefresher{tokenURL: tokenURL, httpClient: client}
}

func (r *HTTPTokenRefresher) Refresh(ctx context.Context, ts model.OAuthTokenSet) (Token, error) {
	if ts.RefreshToken == "" {
		return Token{}, fmt.Errorf("refresh token is empty")
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", ts.ClientID)
	form.Set("client_secret", ts.ClientSecret)
	form.Set("refresh_token", ts.RefreshToken)
	if ts.Scope != "" {
		form.Set("scope", ts.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Token{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Token{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Token{}, fmt.Errorf("decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return Token{}, fmt.Errorf("token response has no access_token")
	}
	return Token{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		ExpiresIn:    payload.ExpiresIn,
	}, nil
}
