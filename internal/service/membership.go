package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docflow/internal/apperr"
	"docflow/internal/identity"
	"docflow/internal/model"
	"docflow/internal/repository"
)

// MembershipService is the department membership store used for authorization.
type MembershipService interface {
	// Assign is idempotent: assigning an existing pair succeeds without change.
	Assign(ctx context.Context, userID string, departmentID int64) error
	// Unassign fails with apperr.ErrAssignmentNotFound when the pair does not exist.
	Unassign(ctx context.Context, userID string, departmentID int64) error
	// ListDepartmentIDs returns an empty set for blank or sentinel identities.
	ListDepartmentIDs(ctx context.Context, userID string) ([]int64, error)
	ListDepartments(ctx context.Context, userID string) ([]model.Department, error)
	ListUsers(ctx context.Context, departmentID int64) ([]string, error)
}

type membershipService struct {
	memberships repository.MembershipRepository
	departments repository.DepartmentRepository
	log         *zap.Logger
}

func NewMembershipService(
	memberships repository.MembershipRepository,
	departments repository.DepartmentRepository,
	log *zap.Logger,
) MembershipService {
	return &membershipService{memberships: memberships, departments: departments, log: log}
}

func (s *membershipService) requireDepartment(ctx context.Context, id int64) error {
	if _, err := s.departments.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrDepartmentNotFound
		}
		return fmt.Errorf("find department: %w", err)
	}
	return nil
}

func (s *membershipService) Assign(ctx context.Context, userID string, departmentID int64) error {
	userID = strings.TrimSpace(userID)
	if isAnonymous(userID) {
		return apperr.Validation("invalid assignment", map[string]string{"userId": "userId is required"})
	}
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return err
	}
	created, err := s.memberships.Assign(ctx, userID, departmentID)
	if err != nil {
		return fmt.Errorf("assign user: %w", err)
	}
	if created {
		s.log.Info("user assigned to department", zap.String("user_id", userID), zap.Int64("department_id", departmentID))
	}
	return nil
}

func (s *membershipService) Unassign(ctx context.Context, userID string, departmentID int64) error {
	if err := s.memberships.Unassign(ctx, userID, departmentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.ErrAssignmentNotFound
		}
		return fmt.Errorf("unassign user: %w", err)
	}
	s.log.Info("user removed from department", zap.String("user_id", userID), zap.Int64("department_id", departmentID))
	return nil
}

func (s *membershipService) ListDepartmentIDs(ctx context.Context, userID string) ([]int64, error) {
	if isAnonymous(userID) {
		return []int64{}, nil
	}
	return s.memberships.DepartmentIDs(ctx, userID)
}

func (s *membershipService) ListDepartments(ctx context.Context, userID string) ([]model.Department, error) {
	ids, err := s.ListDepartmentIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.Department, 0, len(ids))
	for _, id := range ids {
		d, err := s.departments.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, nil
}

func (s *membershipService) ListUsers(ctx context.Context, departmentID int64) ([]string, error) {
	if err := s.requireDepartment(ctx, departmentID); err != nil {
		return nil, err
	}
	return s.memberships.UserIDs(ctx, departmentID)
}

// anonymousUser is the principal name some frameworks use for unauthenticated callers.
const anonymousUser = "anonymousUser"

func isAnonymous(userID string) bool {
	userID = strings.TrimSpace(userID)
	return userID == "" || userID == identity.Anonymous || userID == anonymousUser
}
