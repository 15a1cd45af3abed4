package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/model"
	"docflow/internal/repository"
)

// DepartmentService manages departments.
type DepartmentService interface {
	Create(ctx context.Context, name string) (*model.Department, error)
	Get(ctx context.Context, id int64) (*model.Department, error)
	List(ctx context.Context) ([]model.Department, error)
	Update(ctx context.Context, id int64, name string) (*model.Department, error)
	// Delete refuses departments that still own documents and drops their assignments.
	Delete(ctx context.Context, id int64) error
	// SeedDefaults creates the named departments when none exist yet.
	SeedDefaults(ctx context.Context, names ...string) error
}

type departmentService struct {
	departments repository.DepartmentRepository
	memberships repository.MembershipRepository
	documents   repository.DocumentRepository
	log         *zap.Logger
}

func NewDepartmentService(
	departments repository.DepartmentRepository,
	memberships repository.MembershipRepository,
	documents repository.DocumentRepository,
	log *zap.Logger,
) DepartmentService {
	return &departmentService{departments: departments, memberships: memberships, documents: documents, log: log}
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("invalid name", map[string]string{"name": "name is required"})
	}
	return name, nil
}

func (s *departmentService) Create(ctx context.Context, name string) (*model.Department, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	d, err := s.departments.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrDepartmentExists
		}
		return nil, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

func (s *departmentService) Get(ctx context.Context, id int64) (*model.Department, error) {
	d, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrDepartmentNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *departmentService) List(ctx context.Context) ([]model.Department, error) {
	return s.departments.List(ctx)
}

func (s *departmentService) Update(ctx context.Context, id int64, name string) (*model.Department, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	d, err := s.departments.Update(ctx, id, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ErrDepartmentNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.ErrDepartmentExists
	case err != nil:
		return nil, fmt.Errorf("update department: %w", err)
	}
	return d, nil
}

func (s *departmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.documents.CountByDepartment(ctx, id)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if n > 0 {
		return apperr.ErrDepartmentInUse
	}
	if err := s.memberships.RemoveDepartment(ctx, id); err != nil {
		return fmt.Errorf("remove assignments: %w", err)
	}
	if err := s.departments.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrDepartmentNotFound
		}
		return err
	}
	return nil
}

func (s *departmentService) SeedDefaults(ctx context.Context, names ...string) error {
	n, err := s.departments.Count(ctx)
	if err != nil {
		return fmt.Errorf("count departments: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, name := range names {
		if _, err := s.departments.Create(ctx, name); err != nil && !errors.Is(err, repository.ErrDuplicate) {
			return fmt.Errorf("seed department %q: %w", name, err)
		}
		s.log.Info("department seeded", zap.String("name", name))
	}
	return nil
}

// CategoryService manages categories.
type CategoryService interface {
	Create(ctx context.Context, name string) (*model.Category, error)
	Get(ctx context.Context, id int64) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, id int64, name string) (*model.Category, error)
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	categories repository.CategoryRepository
	documents  repository.DocumentRepository
}

func NewCategoryService(categories repository.CategoryRepository, documents repository.DocumentRepository) CategoryService {
	return &categoryService{categories: categories, documents: documents}
}

func (s *categoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.Create(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.ErrCategoryNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *categoryService) Update(ctx context.Context, id int64, name string) (*model.Category, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.Update(ctx, id, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperr.ErrCategoryNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperr.ErrCategoryExists
	case err != nil:
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	n, err := s.documents.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if n > 0 {
		return apperr.ErrCategoryInUse
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrCategoryNotFound
		}
		return err
	}
	return nil
}
