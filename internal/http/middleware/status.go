package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docflow/internal/apperr"
)

// StatusOf returns the status code the error handler will answer err with.
func StatusOf(err error) int {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return apperr.KindOf(err).HTTPStatus()
}

func responseStatus(c *fiber.Ctx, err error) int {
	if err != nil {
		return StatusOf(err)
	}
	return c.Response().StatusCode()
}
