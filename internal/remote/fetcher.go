package remote

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
)

const (
	defaultFetchTimeout   = 30 * time.Second
	defaultRefreshTimeout = 10 * time.Second
)

// Fetcher downloads remote files. It holds no per-call state and is safe for concurrent use.
type Fetcher struct {
	downloader     Downloader
	refresher      TokenRefresher
	fetchTimeout   time.Duration
	refreshTimeout time.Duration
	log            *logger.Logger
	outcomes       *prometheus.CounterVec
}

type Option func(*Fetcher)

func WithTimeouts(fetch, refresh time.Duration) Option {
	return func(f *Fetcher) {
		if fetch > 0 {
			f.fetchTimeout = fetch
		}
		if refresh > 0 {
			f.refreshTimeout = refresh
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

func NewFetcher(d Downloader, r TokenRefresher, opts ...Option) *Fetcher {
	f := &Fetcher{
		downloader:     d,
		refresher:      r,
		fetchTimeout:   defaultFetchTimeout,
		refreshTimeout: defaultRefreshTimeout,
		log:            logger.Nop(),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "remote_fetch_total",
				Help: "Remote file fetches by credential kind and outcome.",
			},
			[]string{"credential", "outcome"},
		),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Register exposes the fetch outcome counter on reg.
func (f *Fetcher) Register(reg prometheus.Registerer) error {
	return reg.Register(f.outcomes)
}

// FetchRemoteFile downloads fileID with cred.
//
// A service account gets exactly one attempt. An OAuth token set is tried with its access token;
// if the provider rejects it as unauthorized, the token is refreshed once and the download is
// retried exactly once with the new token. Every attempt and the refresh run under their own
// timeout. Failures are reported as *FetchError.
func (f *Fetcher) FetchRemoteFile(ctx context.Context, cred model.Credential, fileID string) (*FetchResult, error) {
	if fileID == "" {
		return nil, apperr.Validation("file id is required")
	}

	switch cred.Kind() {
	case model.CredentialServiceAccount:
		sa, _ := cred.ServiceAccount()
		data, err := f.download(ctx, func(ctx context.Context) ([]byte, error) {
			return f.downloader.DownloadWithServiceAccount(ctx, sa, fileID)
		})
		if err != nil {
			return nil, f.fail(cred, ReasonServiceAccountFailure, err)
		}
		f.succeed(cred, "ok")
		return &FetchResult{Data: data, Credential: cred}, nil

	case model.CredentialOAuth:
		return f.fetchOAuth(ctx, cred, fileID)

	default:
		return nil, apperr.Validation("credential is required")
	}
}

func (f *Fetcher) fetchOAuth(ctx context.Context, cred model.Credential, fileID string) (*FetchResult, error) {
	ts, _ := cred.OAuth()

	data, err := f.download(ctx, func(ctx context.Context) ([]byte, error) {
		return f.downloader.DownloadWithAccessToken(ctx, ts.AccessToken, fileID)
	})
	if err == nil {
		f.succeed(cred, "ok")
		return &FetchResult{Data: data, Credential: cred}, nil
	}
	if !errors.Is(err, ErrUnauthorized) {
		return nil, f.fail(cred, ReasonAccessTokenFailure, err)
	}

	f.log.Info("remote_fetch_refreshing_token", "file_id", fileID)
	refreshCtx, cancel := context.WithTimeout(ctx, f.refreshTimeout)
	tok, err := f.refresher.Refresh(refreshCtx, ts)
	cancel()
	if err != nil {
		return nil, f.fail(cred, ReasonRefreshFailed, err)
	}
	refreshed := cred.WithAccessToken(tok.AccessToken, tok.RefreshToken)

	data, err = f.download(ctx, func(ctx context.Context) ([]byte, error) {
		return f.downloader.DownloadWithAccessToken(ctx, tok.AccessToken, fileID)
	})
	if err != nil {
		return nil, f.fail(cred, ReasonRetryExhausted, err)
	}
	f.succeed(cred, "refreshed")
	return &FetchResult{Data: data, Credential: refreshed, Refreshed: true}, nil
}

func (f *Fetcher) download(ctx context.Context, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.fetchTimeout)
	defer cancel()
	return fn(ctx)
}

func (f *Fetcher) fail(cred model.Credential, reason Reason, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		reason = ReasonTimeout
	}
	f.outcomes.WithLabelValues(cred.Kind().String(), reason.String()).Inc()
	f.log.Warn("remote_fetch_failed", "credential", cred.Kind().String(), "reason", reason.String(), "error", err)
	return &FetchError{Reason: reason, Err: err}
}

func (f *Fetcher) succeed(cred model.Credential, outcome string) {
	f.outcomes.WithLabelValues(cred.Kind().String(), outcome).Inc()
}
