// Package gdrive downloads files from Google Drive with either a service account or an OAuth
// access token.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/remote"
)

const googleAppsPrefix = "application/vnd.google-apps."

// exportTypes maps Google-native document types to the format they are exported as.
var exportTypes = map[string]string{
	googleAppsPrefix + "spreadsheet":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	googleAppsPrefix + "document":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	googleAppsPrefix + "presentation": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Client is a remote.Downloader backed by the Drive v3 API.
type Client struct {
	base    []option.ClientOption
	maxSize int64
}

var _ remote.Downloader = (*Client)(nil)

// New returns a client. endpoint overrides the Drive API base URL when non-empty.
func New(endpoint string, opts ...option.ClientOption) *Client {
	base := append([]option.ClientOption{}, opts...)
	if endpoint != "" {
		base = append(base, option.WithEndpoint(endpoint))
	}
	return &Client{base: base, maxSize: 100 << 20}
}

func (c *Client) DownloadWithServiceAccount(ctx context.Context, sa model.ServiceAccount, fileID string) ([]byte, error) {
	if len(sa.JSON) == 0 {
		return nil, errors.New("service account key is empty")
	}
	svc, err := drive.NewService(ctx, append(c.options(),
		option.WithCredentialsJSON(sa.JSON),
		option.WithScopes(drive.DriveReadonlyScope),
	)...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return c.download(ctx, svc, fileID)
}

func (c *Client) DownloadWithAccessToken(ctx context.Context, accessToken, fileID string) ([]byte, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is empty", remote.ErrUnauthorized)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	svc, err := drive.NewService(ctx, append(c.options(), option.WithTokenSource(ts))...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return c.download(ctx, svc, fileID)
}

func (c *Client) options() []option.ClientOption {
	return append([]option.ClientOption{}, c.base...)
}

func (c *Client) download(ctx context.Context, svc *drive.Service, fileID string) ([]byte, error) {
	meta, err := svc.Files.Get(fileID).SupportsAllDrives(true).Fields("id", "mimeType").Context(ctx).Do()
	if err != nil {
		return nil, classify(err)
	}

	var resp *http.Response
	if strings.HasPrefix(meta.MimeType, googleAppsPrefix) {
		target, ok := exportTypes[meta.MimeType]
		if !ok {
			target = "application/pdf"
		}
		resp, err = svc.Files.Export(fileID, target).Context(ctx).Download()
	} else {
		resp, err = svc.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
	}
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxSize {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fileID, c.maxSize)
	}
	return data, nil
}

// classify marks authorization failures with remote.ErrUnauthorized.
func classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: %w", remote.ErrUnauthorized, err)
	}
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		return fmt.Errorf("%w: %w", remote.ErrUnauthorized, err)
	}
	return err
}
