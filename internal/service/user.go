package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"docflow/internal/apperr"
	"docflow/internal/identity"
	"docflow/internal/model"
	"docflow/internal/repository"
)

// UserService manages accounts of the credential store.
type UserService interface {
	// Signup registers a regular user with ROLE_USER.
	Signup(ctx context.Context, username, password string) (*model.User, error)
	// Authenticate checks a username/password pair.
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
	Get(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Create registers a user with explicit roles (admin operation).
	Create(ctx context.Context, username, password string, roles []string) (*model.User, error)
	// Update applies a partial update; nil fields keep their value.
	Update(ctx context.Context, username string, upd model.UserUpdate) (*model.User, error)
	Delete(ctx context.Context, username string) error
	// EnsureAdmin creates the bootstrap admin account unless it already exists.
	EnsureAdmin(ctx context.Context, username, password string) error
}

type userService struct {
	repo      repository.UserRepository
	cost      int
	log       *zap.Logger
	dummyHash []byte
}

// NewUserService constructs a UserService hashing passwords with the given bcrypt cost.
func NewUserService(repo repository.UserRepository, cost int, log *zap.Logger) UserService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// compared against when the user is unknown, so both paths cost one bcrypt run
	dummy, _ := bcrypt.GenerateFromPassword([]byte("docflow-dummy-password"), cost)
	return &userService{repo: repo, cost: cost, log: log, dummyHash: dummy}
}

func (s *userService) Signup(ctx context.Context, username, password string) (*model.User, error) {
	return s.create(ctx, username, password, []string{identity.RoleUser})
}

func (s *userService) Create(ctx context.Context, username, password string, roles []string) (*model.User, error) {
	normalized := NormalizeRoles(roles)
	if len(normalized) == 0 {
		normalized = []string{identity.RoleUser}
	}
	return s.create(ctx, username, password, normalized)
}

func (s *userService) create(ctx context.Context, username, password string, roles []string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || username == identity.Anonymous {
		return nil, apperr.Validation("invalid user", map[string]string{"username": "username is required"})
	}
	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: username, PasswordHash: hash, Roles: roles}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user created", zap.String("username", username), zap.Strings("roles", roles))
	return u, nil
}

func (s *userService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, username string) (*model.User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) Update(ctx context.Context, username string, upd model.UserUpdate) (*model.User, error) {
	u, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if upd.Password != nil {
		hash, err := s.hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if upd.Roles != nil {
		roles := NormalizeRoles(*upd.Roles)
		if len(roles) == 0 {
			return nil, apperr.Validation("invalid user", map[string]string{"roles": "at least one role is required"})
		}
		u.Roles = roles
	}
	if err := s.repo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

func (s *userService) Delete(ctx context.Context, username string) error {
	if err := s.repo.Delete(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrUserNotFound
		}
		return err
	}
	s.log.Info("user deleted", zap.String("username", username))
	return nil
}

func (s *userService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		s.log.Warn("admin seed skipped: ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}
	_, err := s.create(ctx, username, password, []string{identity.RoleAdmin, identity.RoleUser})
	if errors.Is(err, apperr.ErrUserExists) {
		return nil
	}
	return err
}

func (s *userService) hash(password string) (string, error) {
	if password == "" {
		return "", apperr.Validation("invalid user", map[string]string{"password": "password is required"})
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Validation("invalid user", map[string]string{"password": "password is too long"})
		}
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

// NormalizeRoles upper-cases role names, adds the ROLE_ prefix when missing and drops duplicates.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !strings.HasPrefix(r, "ROLE_") {
			r = "ROLE_" + r
		}
		if !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}
