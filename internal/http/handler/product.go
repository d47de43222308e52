package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/attachment"
	"github.com/jasonhew98/e-commerce-service/internal/http/middleware"
	"github.com/jasonhew98/e-commerce-service/internal/service"
)

type addProductRequest struct {
	ProductName   string            `json:"product_name" validate:"required"`
	ProductPrice  float64           `json:"product_price" validate:"gte=0"`
	ProductImages []attachment.Item `json:"product_images"`
}

type updateProductRequest struct {
	ProductID     string            `json:"product_id" validate:"required"`
	ProductName   string            `json:"product_name" validate:"required"`
	ProductPrice  float64           `json:"product_price" validate:"gte=0"`
	ProductImages []attachment.Item `json:"product_images"`
	ModifiedAtUTC time.Time         `json:"modified_at_utc" validate:"required"`
}

func AddProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req addProductRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		id, err := svc.Add(c.UserContext(), service.AddProductCommand{
			ProductName:   req.ProductName,
			ProductPrice:  req.ProductPrice,
			ProductImages: req.ProductImages,
			Actor:         middleware.ActorFromCtx(c),
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(createdResponse{ID: id})
	}
}

func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateProductRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		res, err := svc.Update(c.UserContext(), service.UpdateProductCommand{
			ProductID:     req.ProductID,
			ProductName:   req.ProductName,
			ProductPrice:  req.ProductPrice,
			ProductImages: req.ProductImages,
			ModifiedAtUTC: req.ModifiedAtUTC,
			Actor:         middleware.ActorFromCtx(c),
		})
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func ListProducts(svc service.ProductService) fiber.Handler {
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

func ProductPageSize(svc service.ProductService) fiber.Handler {
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

func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requiredQuery(c, "productId")
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
