package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/service"
)

type signUpRequest struct {
	UserName string `json:"user_name" validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func SignUp(svc service.OnboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signUpRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		id, err := svc.SignUp(c.UserContext(), service.SignUpCommand{
			UserName: req.UserName,
			FullName: req.FullName,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(createdResponse{ID: id})
	}
}

// Login checks the password only; no session or token is issued.
func Login(svc service.OnboardService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		res, err := svc.Login(c.UserContext(), service.LoginCommand{
			UserName: req.UserName,
			Password: req.Password,
		})
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
