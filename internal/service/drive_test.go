package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
	remoteMocks "github.com/jasonhew98/e-commerce-service/internal/remote/mocks"
	"github.com/jasonhew98/e-commerce-service/internal/storage"
	storeMocks "github.com/jasonhew98/e-commerce-service/internal/storage/mocks"
)

var testURLs = DriveURLs{
	DriveBase:  "https://drive.google.com/file/d/",
	SheetsBase: "https://docs.google.com/spreadsheets/d/",
}

func TestFileIDFromURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "https://drive.google.com/file/d/abc123/view?usp=sharing", want: "abc123"},
		{in: "https://docs.google.com/spreadsheets/d/sheet9/edit#gid=0", want: "sheet9"},
		{in: "https://drive.google.com/open?id=xyz", want: "xyz"},
		{in: "https://docs.google.com/document/d/doc1/edit", want: "doc1"},
		{in: "rawFileId", want: "rawFileId"},
		{in: "https://example.com/nothing", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FileIDFromURL(tt.in, testURLs)
			if tt.wantErr {
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDriveService_Download(t *testing.T) {
	ctx := context.Background()
	oauth := model.NewOAuthCredential(model.OAuthTokenSet{ClientID: "c", AccessToken: "old", RefreshToken: "r"})
	cmd := DownloadDriveFileCommand{
		FileName:   "report.xlsx",
		URL:        "https://docs.google.com/spreadsheets/d/sheet9/edit",
		Credential: oauth,
	}

	t.Run("stores file under download prefix", func(t *testing.T) {
		fetcher := new(remoteMocks.MockFetcher)
		mStore := new(storeMocks.MockStorage)
		fetcher.On("FetchRemoteFile", ctx, oauth, "sheet9").Return(&remote.FetchResult{
			Data:       []byte("xlsx"),
			Credential: oauth.WithAccessToken("new", ""),
			Refreshed:  true,
		}, nil)
		mStore.On("Put", ctx, "downloads/report.xlsx", mock.Anything, mock.MatchedBy(func(o storage.PutObjectOptions) bool {
			return o.Size == 4 && o.Metadata["source-file-id"] == "sheet9"
		})).Return(storage.ObjectInfo{Key: "downloads/report.xlsx"}, nil)

		svc := NewDriveService(fetcher, new(remoteMocks.MockTokenRefresher), mStore, "downloads/", testURLs, logger.Nop())
		res, err := svc.Download(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, &DownloadResult{Key: "downloads/report.xlsx", Size: 4, Refreshed: true, AccessToken: "new"}, res)
		fetcher.AssertExpectations(t)
		mStore.AssertExpectations(t)
	})

	t.Run("fetch failure maps reason to code", func(t *testing.T) {
		fetcher := new(remoteMocks.MockFetcher)
		mStore := new(storeMocks.MockStorage)
		fetcher.On("FetchRemoteFile", ctx, oauth, "sheet9").
			Return(nil, &remote.FetchError{Reason: remote.ReasonRefreshFailed, Err: errors.New("invalid_grant")})

		svc := NewDriveService(fetcher, new(remoteMocks.MockTokenRefresher), mStore, "downloads", testURLs, logger.Nop())
		_, err := svc.Download(ctx, cmd)

		requireCode(t, err, apperr.CodeFetchRefreshFailed)
		assert.Equal(t, apperr.KindFetch, apperr.KindOf(err))
		mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		fetcher := new(remoteMocks.MockFetcher)
		mStore := new(storeMocks.MockStorage)
		fetcher.On("FetchRemoteFile", ctx, oauth, "sheet9").Return(&remote.FetchResult{Data: []byte("x"), Credential: oauth}, nil)
		mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, storage.ErrUnavailable)

		svc := NewDriveService(fetcher, new(remoteMocks.MockTokenRefresher), mStore, "downloads", testURLs, logger.Nop())
		_, err := svc.Download(ctx, cmd)

		assert.Equal(t, apperr.KindStorageUnavailable, apperr.KindOf(err))
	})
}

func TestDriveService_RefreshAccessToken(t *testing.T) {
	ctx := context.Background()
	ts := model.OAuthTokenSet{ClientID: "c", ClientSecret: "s", RefreshToken: "r"}

	refresher := new(remoteMocks.MockTokenRefresher)
	refresher.On("Refresh", ctx, ts).Return(remote.Token{AccessToken: "new", ExpiresIn: 3600}, nil).Once()
	svc := NewDriveService(new(remoteMocks.MockFetcher), refresher, new(storeMocks.MockStorage), "", testURLs, logger.Nop())

	tok, err := svc.RefreshAccessToken(ctx, ts)
	require.NoError(t, err)
	assert.Equal(t, "new", tok.AccessToken)

	refresher.On("Refresh", ctx, ts).Return(remote.Token{}, errors.New("invalid_grant")).Once()
	_, err = svc.RefreshAccessToken(ctx, ts)
	requireCode(t, err, apperr.CodeFetchRefreshFailed)

	_, err = svc.RefreshAccessToken(ctx, model.OAuthTokenSet{})
	requireCode(t, err, apperr.CodeValidation)
}
