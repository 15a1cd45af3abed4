package repository

import (
	"context"

	"docflow/internal/model"
)

// DepartmentRepository persists departments. Names are unique (ErrDuplicate).
type DepartmentRepository interface {
	Create(ctx context.Context, name string) (*model.Department, error)
	FindByID(ctx context.Context, id int64) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	Update(ctx context.Context, id int64, name string) (*model.Department, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// CategoryRepository persists categories. Names are unique (ErrDuplicate).
type CategoryRepository interface {
	Create(ctx context.Context, name string) (*model.Category, error)
	FindByID(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, id int64, name string) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}

// MembershipRepository persists user to department assignments keyed by (userID, departmentID).
type MembershipRepository interface {
	// Assign stores the pair. created is false when it already existed.
	Assign(ctx context.Context, userID string, departmentID int64) (created bool, err error)
	// Unassign removes the pair or returns ErrNotFound.
	Unassign(ctx context.Context, userID string, departmentID int64) error
	IsMember(ctx context.Context, userID string, departmentID int64) (bool, error)
	// DepartmentIDs lists the departments of a user in ascending order.
	DepartmentIDs(ctx context.Context, userID string) ([]int64, error)
	// UserIDs lists the members of a department in ascending order.
	UserIDs(ctx context.Context, departmentID int64) ([]string, error)
	// RemoveDepartment drops every assignment of a department.
	RemoveDepartment(ctx context.Context, departmentID int64) error
}
