package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jasonhew98/e-commerce-service/internal/apperr"
	"github.com/jasonhew98/e-commerce-service/internal/repository"
	"github.com/jasonhew98/e-commerce-service/internal/service"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bindJSON decodes the request body into dst, rejecting unknown fields, then runs struct validation.
func bindJSON(c *fiber.Ctx, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is required")
		}
		return apperr.Validation("request body is invalid: " + err.Error())
	}
	if dec.More() {
		return apperr.Validation("request body must contain a single JSON object")
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", fieldPath(fe.Namespace()), rule))
	}
	return apperr.Validation("invalid fields: " + strings.Join(parts, ", "))
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func queryInt(c *fiber.Ctx, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name + " must be an integer")
	}
	return n, nil
}

// sortOrder accepts the numeric convention (1 ascending, -1 descending, 0 default) as well as
// "asc"/"desc".
func sortOrder(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0":
		return ""
	case "1", repository.SortAsc:
		return repository.SortAsc
	case "-1", repository.SortDesc:
		return repository.SortDesc
	default:
		return raw
	}
}

func listQuery(c *fiber.Ctx) (service.ListQuery, error) {
	page, err := queryInt(c, "currentPage")
	if err != nil {
		return service.ListQuery{}, err
	}
	size, err := queryInt(c, "pageSize")
	if err != nil {
		return service.ListQuery{}, err
	}
	return service.ListQuery{
		SortBy:      c.Query("sortBy"),
		SortOrder:   sortOrder(c.Query("sortOrder")),
		PageSize:    size,
		CurrentPage: page,
	}, nil
}

func requiredQuery(c *fiber.Ctx, name string) (string, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return "", apperr.Validation(name + " is required")
	}
	return v, nil
}

type createdResponse struct {
	ID string `json:"id"`
}
