package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
)

type MockDownloader struct {
	mock.Mock
}

func (m *MockDownloader) DownloadWithServiceAccount(ctx context.Context, sa model.ServiceAccount, fileID string) ([]byte, error) {
	args := m.Called(ctx, sa, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockDownloader) DownloadWithAccessToken(ctx context.Context, accessToken, fileID string) ([]byte, error) {
	args := m.Called(ctx, accessToken, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockTokenRefresher struct {
	mock.Mock
}

func (m *MockTokenRefresher) Refresh(ctx context.Context, ts model.OAuthTokenSet) (remote.Token, error) {
	args := m.Called(ctx, ts)
	return args.Get(0).(remote.Token), args.Error(1)
}

// MockFetcher stands in for *remote.Fetcher in service tests.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchRemoteFile(ctx context.Context, cred model.Credential, fileID string) (*remote.FetchResult, error) {
	args := m.Called(ctx, cred, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*remote.FetchResult), args.Error(1)
}
