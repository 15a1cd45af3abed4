package mocks

import (
	"context"

	"docflow/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockMembershipService struct {
	mock.Mock
}

func (m *MockMembershipService) Assign(ctx context.Context, userID string, departmentID int64) error {
	return m.Called(ctx, userID, departmentID).Error(0)
}

func (m *MockMembershipService) Unassign(ctx context.Context, userID string, departmentID int64) error {
	return m.Called(ctx, userID, departmentID).Error(0)
}

func (m *MockMembershipService) ListDepartmentIDs(ctx context.Context, userID string) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockMembershipService) ListDepartments(ctx context.Context, userID string) ([]model.Department, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Department), args.Error(1)
}

func (m *MockMembershipService) ListUsers(ctx context.Context, departmentID int64) ([]string, error) {
	args := m.Called(ctx, departmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
