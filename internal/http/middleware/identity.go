package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"docflow/internal/apperr"
	"docflow/internal/identity"
)

// Identity rebuilds the caller's principal from the trust headers and stores it
// in the request's user context. Missing headers yield the sentinel identity.
func Identity(userHeader, rolesHeader string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := identity.NewPrincipal(c.Get(userHeader), c.Get(rolesHeader))
		c.SetUserContext(identity.WithPrincipal(c.UserContext(), p))
		return c.Next()
	}
}

// Principal returns the principal stored by Identity.
func Principal(c *fiber.Ctx) identity.Principal {
	return identity.FromContext(c.UserContext())
}

// RequireAuthenticated rejects the sentinel identity with 401.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Principal(c).IsAuthenticated() {
			return apperr.ErrNotAuthenticated
		}
		return c.Next()
	}
}

// RequireRole rejects callers without role: 401 when unauthenticated, 403 otherwise.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := Principal(c)
		if !p.IsAuthenticated() {
			return apperr.ErrNotAuthenticated
		}
		if !p.HasRole(role) {
			return apperr.ErrAccessDenied
		}
		return c.Next()
	}
}

var errInvalidInternalToken = apperr.New(apperr.KindAuthentication, "INVALID_INTERNAL_TOKEN", "invalid internal token")

// RequireInternalToken guards service-to-service endpoints. An empty key disables the check.
func RequireInternalToken(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		got := c.Get(identity.InternalTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return errInvalidInternalToken
		}
		return c.Next()
	}
}
