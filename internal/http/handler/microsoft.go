package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/model"
	"github.com/jasonhew98/e-commerce-service/internal/service"
)

// graphRefreshRequest has no scope; the Graph scope is fixed by configuration.
type graphRefreshRequest struct {
	ClientID     string `json:"client_id" validate:"required"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshMicrosoftAccessToken handles POST /api/internal/microsoft/refresh.
func RefreshMicrosoftAccessToken(svc service.MicrosoftService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req graphRefreshRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		tok, err := svc.RefreshAccessToken(c.UserContext(), model.OAuthTokenSet{
			ClientID:     req.ClientID,
			ClientSecret: req.ClientSecret,
			RefreshToken: req.RefreshToken,
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
