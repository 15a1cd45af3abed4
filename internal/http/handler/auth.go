package handler

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"docflow/internal/apperr"
	"docflow/internal/http/middleware"
	"docflow/internal/model"
	"docflow/internal/service"
)

// TokenIssuer is the part of token.Manager used by the auth endpoints.
type TokenIssuer interface {
	Issue(username string, roles []string) (string, error)
	TTL() time.Duration
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=4,max=72"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int64  `json:"expiresIn"`
}

type meResponse struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Signup registers a regular user.
func Signup(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		u, err := users.Signup(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// IssueToken exchanges credentials for a bearer token. Credentials come from
// HTTP Basic authorization or, when that header is absent, a JSON body.
func IssueToken(users service.UserService, tokens TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := credentials(c)
		if err != nil {
			return err
		}
		u, err := users.Authenticate(c.UserContext(), req.Username, req.Password)
		if err != nil {
			return err
		}
		signed, err := tokens.Issue(u.Username, u.Roles)
		if err != nil {
			return err
		}
		return c.JSON(tokenResponse{
			Token:     signed,
			TokenType: "Bearer",
			ExpiresIn: int64(tokens.TTL().Seconds()),
		})
	}
}

func credentials(c *fiber.Ctx) (loginRequest, error) {
	var req loginRequest
	if raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Basic "); ok {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
		if err != nil {
			return req, apperr.ErrInvalidCredentials
		}
		user, pass, ok := strings.Cut(string(decoded), ":")
		if !ok || user == "" {
			return req, apperr.ErrInvalidCredentials
		}
		return loginRequest{Username: user, Password: pass}, nil
	}
	if len(c.Body()) == 0 {
		return req, apperr.ErrNotAuthenticated
	}
	return req, bind(c, &req)
}

// Me returns the propagated identity of the caller.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := middleware.Principal(c)
		return c.JSON(meResponse{Username: p.ID, Roles: p.Roles})
	}
}

type createUserRequest struct {
	Username string   `json:"username" validate:"required,max=64"`
	Password string   `json:"password" validate:"required,min=4,max=72"`
	Roles    []string `json:"roles"`
}

// updateUserRequest is a partial update; absent fields keep their value.
type updateUserRequest struct {
	Password *string   `json:"password" validate:"omitempty,min=4,max=72"`
	Roles    *[]string `json:"roles"`
}

// ListUsers returns every account.
func ListUsers(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := users.List(c.UserContext())
		if err != nil {
			return err
		}
		if list == nil {
			list = []model.User{}
		}
		return c.JSON(list)
	}
}

// GetUser returns one account.
func GetUser(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := users.Get(c.UserContext(), c.Params("username"))
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// CreateUser registers an account with explicit roles. The username comes from
// the path when present, otherwise from the body.
func CreateUser(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req createUserRequest
		if err := c.BodyParser(&req); err != nil {
			return errInvalidBody
		}
		if name := c.Params("username"); name != "" {
			req.Username = name
		}
		if err := validateStruct(&req); err != nil {
			return err
		}
		u, err := users.Create(c.UserContext(), req.Username, req.Password, req.Roles)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	}
}

// UpdateUser applies a partial update to an account.
func UpdateUser(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateUserRequest
		if err := bind(c, &req); err != nil {
			return err
		}
		u, err := users.Update(c.UserContext(), c.Params("username"), model.UserUpdate{
			Password: req.Password,
			Roles:    req.Roles,
		})
		if err != nil {
			return err
		}
		return c.JSON(u)
	}
}

// DeleteUser removes an account.
func DeleteUser(users service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := users.Delete(c.UserContext(), c.Params("username")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
