package service

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/logger"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
	"github.com/jasonhew98/e-commerce-service/internal/storage"
)

// RemoteFetcher is implemented by *remote.Fetcher.
type RemoteFetcher interface {
	FetchRemoteFile(ctx context.Context, cred model.Credential, fileID string) (*remote.FetchResult, error)
}

type DownloadDriveFileCommand struct {
	FileName   string
	URL        string
	Credential model.Credential
}

// DownloadResult names the stored object. AccessToken is set only when the token was refreshed
// during the download, so the caller can keep the new one.
type DownloadResult struct {
	Key         string `json:"key"`
	Size        int    `json:"size"`
	Refreshed   bool   `json:"refreshed"`
	AccessToken string `json:"access_token,omitempty"`
}

type DriveService interface {
	// Download fetches a Drive or Sheets file and stores it under the download prefix.
	Download(ctx context.Context, cmd DownloadDriveFileCommand) (*DownloadResult, error)
	// RefreshAccessToken exchanges the refresh token of ts for a new access token.
	RefreshAccessToken(ctx context.Context, ts model.OAuthTokenSet) (*remote.Token, error)
}

// DriveURLs are the address prefixes a file id can be cut from.
type DriveURLs struct {
	DriveBase  string
	SheetsBase string
}

type driveService struct {
	fetcher   RemoteFetcher
	refresher remote.TokenRefresher
	store     storage.Storage
	prefix    string
	urls      DriveURLs
	log       *logger.Logger
}

func NewDriveService(fetcher RemoteFetcher, refresher remote.TokenRefresher, store storage.Storage, prefix string, urls DriveURLs, log *logger.Logger) DriveService {
	return &driveService{
		fetcher:   fetcher,
		refresher: refresher,
		store:     store,
		prefix:    strings.Trim(prefix, "/"),
		urls:      urls,
		log:       log,
	}
}

func (s *driveService) Download(ctx context.Context, cmd DownloadDriveFileCommand) (*DownloadResult, error) {
	if err := required("file_name", cmd.FileName, "url", cmd.URL); err != nil {
		return nil, err
	}
	fileID, err := FileIDFromURL(cmd.URL, s.urls)
	if err != nil {
		return nil, err
	}

	res, err := s.fetcher.FetchRemoteFile(ctx, cmd.Credential, fileID)
	if err != nil {
		var fe *remote.FetchError
		if errors.As(err, &fe) {
			s.log.Warn("drive_download_failed", "file_id", fileID, "reason", fe.Reason.String(), "error", fe.Err)
			return nil, fe.AppError()
		}
		return nil, err
	}

	key := path.Base(cmd.FileName)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	if _, err := s.store.Put(ctx, key, bytes.NewReader(res.Data), storage.PutObjectOptions{
		Size:        int64(len(res.Data)),
		ContentType: http.DetectContentType(res.Data),
		Metadata:    map[string]string{"source-file-id": fileID},
	}); err != nil {
		s.log.Error("drive_download_store_failed", "file_id", fileID, "key", key, "error", err)
		return nil, apperr.Wrap(apperr.CodeStorageUnavailable, err)
	}

	out := &DownloadResult{Key: key, Size: len(res.Data), Refreshed: res.Refreshed}
	if res.Refreshed {
		if ts, ok := res.Credential.OAuth(); ok {
			out.AccessToken = ts.AccessToken
		}
	}
	s.log.Info("drive_file_downloaded", "file_id", fileID, "key", key, "size", len(res.Data), "refreshed", res.Refreshed)
	return out, nil
}

func (s *driveService) RefreshAccessToken(ctx context.Context, ts model.OAuthTokenSet) (*remote.Token, error) {
	return refreshAccessToken(ctx, s.refresher, ts)
}

// refreshAccessToken runs one refresh_token grant and maps failures to the fetch error codes.
func refreshAccessToken(ctx context.Context, refresher remote.TokenRefresher, ts model.OAuthTokenSet) (*remote.Token, error) {
	if err := required("client_id", ts.ClientID, "refresh_token", ts.RefreshToken); err != nil {
		return nil, err
	}
	tok, err := refresher.Refresh(ctx, ts)
	if err != nil {
		reason := remote.ReasonRefreshFailed
		if errors.Is(err, context.DeadlineExceeded) {
			reason = remote.ReasonTimeout
		}
		return nil, (&remote.FetchError{Reason: reason, Err: err}).AppError()
	}
	return &tok, nil
}

// FileIDFromURL extracts the file id from a Drive file or Sheets address. A value without
// slashes is taken as an id; "?id=" links are accepted too.
func FileIDFromURL(raw string, urls DriveURLs) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, base := range []string{urls.DriveBase, urls.SheetsBase} {
		if base != "" && strings.HasPrefix(raw, base) {
			if id := firstSegment(strings.TrimPrefix(raw, base)); id != "" {
				return id, nil
			}
		}
	}

	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		if id := u.Query().Get("id"); id != "" {
			return id, nil
		}
		segs := strings.Split(strings.Trim(u.Path, "/"), "/")
		for i := 0; i+1 < len(segs); i++ {
			if segs[i] == "d" && segs[i+1] != "" {
				return segs[i+1], nil
			}
		}
		return "", apperr.Validation("url does not contain a file id")
	}

	if raw != "" && !strings.ContainsAny(raw, "/?#") {
		return raw, nil
	}
	return "", apperr.Validation("url does not contain a file id")
}

func firstSegment(s string) string {
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return s
}
