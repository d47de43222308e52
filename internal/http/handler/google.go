package handler

import (
	"bytes"
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/service"
)

type oauthRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// credentialRequest carries exactly one of a service account key or an OAuth token set.
// service_account may be the key object itself or a JSON string holding it.
type credentialRequest struct {
	ServiceAccount json.RawMessage `json:"service_account,omitempty"`
	OAuth          *oauthRequest   `json:"oauth,omitempty"`
}

func (r credentialRequest) toModel() (model.Credential, error) {
	hasSA := len(bytes.TrimSpace(r.ServiceAccount)) > 0 && string(bytes.TrimSpace(r.ServiceAccount)) != "null"
	switch {
	case hasSA && r.OAuth != nil:
		return model.Credential{}, apperr.Validation("credential must hold either service_account or oauth, not both")
	case hasSA:
		key, err := serviceAccountKey(r.ServiceAccount)
		if err != nil {
			return model.Credential{}, err
		}
		return model.NewServiceAccountCredential(model.ServiceAccount{JSON: key}), nil
	case r.OAuth != nil:
		return model.NewOAuthCredential(model.OAuthTokenSet{
			ClientID:     r.OAuth.ClientID,
			ClientSecret: r.OAuth.ClientSecret,
			AccessToken:  r.OAuth.AccessToken,
			RefreshToken: r.OAuth.RefreshToken,
			Scope:        r.OAuth.Scope,
		}), nil
	default:
		return model.Credential{}, apperr.Validation("credential requires service_account or oauth")
	}
}

func serviceAccountKey(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Validation("service_account is not a valid JSON string")
		}
		raw = []byte(s)
	}
	if !json.Valid(raw) {
		return nil, apperr.Validation("service_account is not valid JSON")
	}
	return raw, nil
}

type downloadRequest struct {
	FileName   string            `json:"file_name" validate:"required"`
	URL        string            `json:"url" validate:"required"`
	Credential credentialRequest `json:"credential"`
}

type refreshRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token" validate:"required"`
	Scope        string `json:"scope"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
}

// DownloadDriveFile handles POST /api/internal/google/download.
func DownloadDriveFile(svc service.DriveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req downloadRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		cred, err := req.Credential.toModel()
		if err != nil {
			return err
		}
		res, err := svc.Download(c.UserContext(), service.DownloadDriveFileCommand{
			FileName:   req.FileName,
			URL:        req.URL,
			Credential: cred,
		})
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// RefreshAccessToken handles POST /api/internal/google/refresh.
func RefreshAccessToken(svc service.DriveService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refreshRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		tok, err := svc.RefreshAccessToken(c.UserContext(), model.OAuthTokenSet{
			ClientID:     req.ClientID,
			ClientSecret: req.ClientSecret,
			RefreshToken: req.RefreshToken,
			Scope:        req.Scope,
		})
		if err != nil {
			return err
		}
		return c.JSON(tokenResponse{
			AccessToken:  tok.AccessToken,
			RefreshToken: tok.RefreshToken,
			ExpiresIn:    tok.ExpiresIn,
		})
	}
}
