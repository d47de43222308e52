package remote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
	"github.com/jasonhew98/e-commerce-service/internal/remote/mocks"
)

var tokens = model.OAuthTokenSet{
	ClientID:     "cid",
	ClientSecret: "secret",
	AccessToken:  "old",
	RefreshToken: "refresh",
	Scope:        "https://www.googleapis.com/auth/drive",
}

func requireReason(t *testing.T, err error, want remote.Reason) {
	t.Helper()
	var fe *remote.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, want, fe.Reason)
}

func TestFetch_ServiceAccount(t *testing.T) {
	ctx := context.Background()
	sa := model.ServiceAccount{JSON: []byte(`{"type":"service_account"}`)}
	cred := model.NewServiceAccountCredential(sa)

	t.Run("success", func(t *testing.T) {
		d := new(mocks.MockDownloader)
		r := new(mocks.MockTokenRefresher)
		d.On("DownloadWithServiceAccount", mock.Anything, sa, "f1").Return([]byte("data"), nil).Once()

		res, err := remote.NewFetcher(d, r).FetchRemoteFile(ctx, cred, "f1")

		require.NoError(t, err)
		assert.Equal(t, []byte("data"), res.Data)
		assert.False(t, res.Refreshed)
		d.AssertExpectations(t)
		r.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("failure is not retried", func(t *testing.T) {
		d := new(mocks.MockDownloader)
		r := new(mocks.MockTokenRefresher)
		d.On("DownloadWithServiceAccount", mock.Anything, sa, "f1").Return(nil, remote.ErrUnauthorized).Once()

		_, err := remote.NewFetcher(d, r).FetchRemoteFile(ctx, cred, "f1")

		requireReason(t, err, remote.ReasonServiceAccountFailure)
		d.AssertNumberOfCalls(t, "DownloadWithServiceAccount", 1)
		r.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})
}

func TestFetch_OAuth(t *testing.T) {
	ctx := context.Background()
	cred := model.NewOAuthCredential(tokens)

	t.Run("first attempt succeeds", func(t *testing.T) {
		d := new(mocks.MockDownloader)
		r := new(mocks.MockTokenRefresher)
		d.On("DownloadWithAccessToken", mock.Anything, "old", "f1").Return([]byte("data"), nil).Once()

		res, err := remote.NewFetcher(d, r).FetchRemoteFile(ctx, cred, "f1")

		require.NoError(t, err)
		assert.Equal(t, cred, res.Credential)
		r.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("unauthorized then refresh then success", func(t *testing.T) {
		d := new(mocks.MockDownloader)
		r := new(mocks.MockTokenRefresher)
		d.On("DownloadWithAccessToken", mock.Anything, "old", "f1").Return(nil, remote.ErrUnauthorized).Once()
		r.On("Refresh", mock.Anything, tokens).Return(remote.Token{AccessToken: "new"}, nil).Once()
		d.On("DownloadWithAccessToken", mock.Anything, "new", "f1").Return([]byte("data"), nil).Once()

		res, err := remote.NewFetcher(d, r).FetchRemoteFile(ctx, cred, "f1")

		require.NoError(t, err)
		assert.True(t, res.Refreshed)
		ts, ok := res.Credential.OAuth()
		require.True(t, ok)
		assert.Equal(t, "new", ts.AccessToken)
		assert.Equal(t, "refresh", ts.RefreshToken)
		d.AssertNumberOfCalls(t, "DownloadWithAccessToken", 2)
		r.AssertNumberOfCalls(t, "Refresh", 1)
	})

	t.Run("retry failure is not retried again", func(t *testing.T) {
		d := new(mocks.MockDownloader)
		r := new(mocks.MockTokenRefresher)
		d.On("DownloadWithAccessToken", mock.Anything, "old", "f1").Return(nil, remote.ErrUnauthorized).Once()
		r.On("Refresh", mock.Anything, tokens).Return(remote.Token{AccessToken: "new"}, nil).Once()
		d.On("DownloadWithAccessToken", mock.Anything, "new", "f1").Return(nil, remote.ErrUnauthorized).Once()

		_, err := remote.NewFetcher(d, r).FetchRemoteFile(ctx, cred, "f1")

		requireReason(t, err, remote.ReasonRetryExhausted)
		d.AssertNumberOfCalls(t, "DownloadWithAccessToken", 2)
		r.AssertNumberOfCalls(t, "Refresh", 1)
	})

	t.Run("refresh failure skips the retry", func(t *testing.T) {
		d := new(mocks.MockDownloader)
		r := new(mocks.MockTokenRefresher)
		d.On("DownloadWithAccessToken", mock.Anything, "old", "f1").Return(nil, remote.ErrUnauthorized).Once()
		r.On("Refresh", mock.Anything, tokens).Return(remote.Token{}, errors.New("invalid_grant")).Once()

		_, err := remote.NewFetcher(d, r).FetchRemoteFile(ctx, cred, "f1")

		requireReason(t, err, remote.ReasonRefreshFailed)
		d.AssertNumberOfCalls(t, "DownloadWithAccessToken", 1)
	})

	t.Run("non-auth failure does not refresh", func(t *testing.T) {
		d := new(mocks.MockDownloader)
		r := new(mocks.MockTokenRefresher)
		d.On("DownloadWithAccessToken", mock.Anything, "old", "f1").Return(nil, errors.New("404 not found")).Once()

		_, err := remote.NewFetcher(d, r).FetchRemoteFile(ctx, cred, "f1")

		requireReason(t, err, remote.ReasonAccessTokenFailure)
		r.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
	})
}

func TestFetch_Timeout(t *testing.T) {
	d := new(mocks.MockDownloader)
	r := new(mocks.MockTokenRefresher)
	d.On("DownloadWithAccessToken", mock.Anything, "old", "f1").
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded).Once()

	f := remote.NewFetcher(d, r, remote.WithTimeouts(20*time.Millisecond, time.Second))
	_, err := f.FetchRemoteFile(context.Background(), model.NewOAuthCredential(tokens), "f1")

	requireReason(t, err, remote.ReasonTimeout)
	assert.Equal(t, apperr.CodeFetchTimeout, err.(*remote.FetchError).AppError().Code)
	r.AssertNotCalled(t, "Refresh", mock.Anything, mock.Anything)
}

func TestFetch_InvalidInput(t *testing.T) {
	f := remote.NewFetcher(new(mocks.MockDownloader), new(mocks.MockTokenRefresher))

	_, err := f.FetchRemoteFile(context.Background(), model.Credential{}, "f1")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = f.FetchRemoteFile(context.Background(), model.NewOAuthCredential(tokens), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestFetch_OutcomeMetric(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := new(mocks.MockDownloader)
	d.On("DownloadWithAccessToken", mock.Anything, "old", "f1").Return([]byte("x"), nil)
	f := remote.NewFetcher(d, new(mocks.MockTokenRefresher))
	require.NoError(t, f.Register(reg))

	_, err := f.FetchRemoteFile(context.Background(), model.NewOAuthCredential(tokens), "f1")
	require.NoError(t, err)

	n, err := testutil.GatherAndCount(reg, "remote_fetch_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
