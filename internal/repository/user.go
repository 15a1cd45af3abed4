package repository

import (
	"context"

	"docflow/internal/model"
)

// UserRepository is the credential store, keyed by username.
type UserRepository interface {
	// Create stores a new user or returns ErrDuplicate.
	Create(ctx context.Context, u *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	// Update replaces an existing user or returns ErrNotFound.
	Update(ctx context.Context, u *model.User) error
	Delete(ctx context.Context, username string) error
}
