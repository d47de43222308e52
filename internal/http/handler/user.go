package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/attachment"
	"github.com/jasonhew98/e-commerce-service/internal/http/middleware"
	"github.com/jasonhew98/e-commerce-service/internal/service"
)

type addUserRequest struct {
	UserName        string            `json:"user_name" validate:"required"`
	FullName        string            `json:"full_name" validate:"required"`
	Email           string            `json:"email" validate:"required,email"`
	Password        string            `json:"password" validate:"required"`
	ProfilePictures []attachment.Item `json:"profile_pictures"`
}

type updateUserRequest struct {
	UserID          string            `json:"user_id" validate:"required"`
	FullName        string            `json:"full_name" validate:"required"`
	Email           string            `json:"email" validate:"required,email"`
	ProfilePictures []attachment.Item `json:"profile_pictures"`
	ModifiedAtUTC   time.Time         `json:"modified_at_utc" validate:"required"`
}

func AddUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addUserRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		id, err := svc.Add(c.UserContext(), service.AddUserCommand{
			UserName:        req.UserName,
			FullName:        req.FullName,
			Email:           req.Email,
			Password:        req.Password,
			ProfilePictures: req.ProfilePictures,
			Actor:           middleware.ActorFromCtx(c),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(createdResponse{ID: id})
	}
}

func UpdateUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateUserRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		res, err := svc.Update(c.UserContext(), service.UpdateUserCommand{
			UserID:          req.UserID,
			FullName:        req.FullName,
			Email:           req.Email,
			ProfilePictures: req.ProfilePictures,
			ModifiedAtUTC:   req.ModifiedAtUTC,
			Actor:           middleware.ActorFromCtx(c),
		})
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func ListUsers(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q, err := listQuery(c)
		if err != nil {
			return err
		}
		res, err := svc.List(c.UserContext(), q)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func UserPageSize(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		size, err := queryInt(c, "pageSize")
		if err != nil {
			return err
		}
		res, err := svc.PageSize(c.UserContext(), size)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func GetUser(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requiredQuery(c, "userId")
		if err != nil {
			return err
		}
		res, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}
