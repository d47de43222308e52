// Package remote retrieves files from a remote provider with a caller-supplied credential,
// refreshing OAuth access tokens once when the provider rejects them.
package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/model"
)

// ErrUnauthorized marks a download rejected for authorization reasons (HTTP 401/403).
// Downloaders wrap it so the fetcher can tell it apart from other failures.
var ErrUnauthorized = errors.New("remote: unauthorized")

// Reason says which stage of a fetch failed.
type Reason int

const (
	ReasonServiceAccountFailure Reason = iota + 1
	ReasonAccessTokenFailure
	ReasonRefreshFailed
	ReasonRetryExhausted
	ReasonTimeout
)

func (r Reason) String() string {
	switch r {
	case ReasonServiceAccountFailure:
		return "service_account_failure"
	case ReasonAccessTokenFailure:
		return "access_token_failure"
	case ReasonRefreshFailed:
		return "refresh_failed"
	case ReasonRetryExhausted:
		return "retry_exhausted"
	case ReasonTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Code maps the reason to its client-facing catalog code.
func (r Reason) Code() apperr.Code {
	switch r {
	case ReasonServiceAccountFailure:
		return apperr.CodeFetchServiceAccount
	case ReasonAccessTokenFailure:
		return apperr.CodeFetchAccessToken
	case ReasonRefreshFailed:
		return apperr.CodeFetchRefreshFailed
	case ReasonRetryExhausted:
		return apperr.CodeFetchRetryExhausted
	case ReasonTimeout:
		return apperr.CodeFetchTimeout
	default:
		return apperr.CodeUnknown
	}
}

// FetchError is the only failure type FetchRemoteFile returns for a well-formed credential.
type FetchError struct {
	Reason Reason
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("remote fetch %s: %v", e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AppError converts the failure to the typed error returned to clients.
func (e *FetchError) AppError() *apperr.Error {
	return apperr.Wrap(e.Reason.Code(), e)
}

// FetchResult is the downloaded payload and the credential that produced it.
// When Refreshed is set, Credential carries the new access token and the caller should persist it.
type FetchResult struct {
	Data       []byte
	Credential model.Credential
	Refreshed  bool
}

// Downloader retrieves a single file by id.
type Downloader interface {
	DownloadWithServiceAccount(ctx context.Context, sa model.ServiceAccount, fileID string) ([]byte, error)
	DownloadWithAccessToken(ctx context.Context, accessToken, fileID string) ([]byte, error)
}

// Token is a refresh-grant response.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// TokenRefresher exchanges a refresh token for a new access token.
type TokenRefresher interface {
	Refresh(ctx context.Context, ts model.OAuthTokenSet) (Token, error)
}
