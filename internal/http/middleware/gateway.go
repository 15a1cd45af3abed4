package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/identity"
	"docflow/internal/token"
)

// TokenVerifier is the part of token.Manager used by the gateway.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// GatewayAuthConfig configures GatewayAuth.
type GatewayAuthConfig struct {
	Verifier    TokenVerifier
	PublicPaths []string
	UserHeader  string
	RolesHeader string
	Log         *zap.Logger
}

// GatewayAuth is the gateway's token filter and must be registered first.
//
// Client-supplied trust headers are always removed. Public paths pass through
// untouched; every other request needs "Authorization: Bearer <token>". A valid
// token is replaced by the trust headers carrying its subject and roles; an
// invalid one ends the request with 401 before anything is forwarded.
func GatewayAuth(cfg GatewayAuthConfig) fiber.Handler {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("gateway filter panic", zap.Any("panic", r), zap.String("path", c.Path()))
				err = fmt.Errorf("gateway filter: %v", r)
			}
		}()

		c.Request().Header.Del(cfg.UserHeader)
		c.Request().Header.Del(cfg.RolesHeader)

		if isPublicPath(c.Path(), cfg.PublicPaths) {
			return c.Next()
		}

		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			return apperr.ErrNotAuthenticated
		}

		claims, verr := cfg.Verifier.Verify(raw)
		if verr != nil {
			log.Debug("token rejected", zap.String("path", c.Path()), zap.Error(verr))
			if errors.Is(verr, token.ErrExpired) {
				return apperr.Wrap(apperr.ErrTokenExpired, verr)
			}
			return apperr.Wrap(apperr.ErrInvalidToken, verr)
		}

		c.Request().Header.Set(cfg.UserHeader, claims.Subject)
		c.Request().Header.Set(cfg.RolesHeader, identity.JoinRoles(claims.Roles))
		return c.Next()
	}
}

// isPublicPath matches exact entries and their sub-paths; an entry ending in
// "/" matches as a plain prefix.
func isPublicPath(path string, public []string) bool {
	for _, p := range public {
		switch {
		case strings.HasSuffix(p, "/"):
			if strings.HasPrefix(path, p) {
				return true
			}
		case path == p || strings.HasPrefix(path, p+"/"):
			return true
		}
	}
	return false
}
