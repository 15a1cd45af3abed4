package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"docflow/internal/apperr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

var (
	errInvalidBody   = apperr.New(apperr.KindValidation, "INVALID_BODY", "request body is not valid JSON")
	errInvalidID     = apperr.New(apperr.KindValidation, "INVALID_ID", "invalid id format")
	errInvalidLimit  = apperr.New(apperr.KindValidation, "INVALID_LIMIT", "invalid limit")
	errInvalidOffset = apperr.New(apperr.KindValidation, "INVALID_OFFSET", "invalid offset")
)

// getValidator returns the shared validator; field errors are reported under their JSON names.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// bind decodes the JSON body into dst and validates it.
func bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return validateStruct(dst)
}

func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("validation failed", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return apperr.Validation("validation failed", fields)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	default:
		return "is invalid"
	}
}

// paramID parses a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// page reads limit and offset query parameters. Zero values are left to the service defaults.
func page(c *fiber.Ctx) (limit, offset int, err error) {
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil {
			return 0, 0, errInvalidLimit
		}
	}
	if v := c.Query("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			return 0, 0, errInvalidOffset
		}
	}
	return limit, offset, nil
}
