package mocks

import (
	"context"

	"docflow/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) user(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Signup(ctx context.Context, username, password string) (*model.User, error) {
	return m.user(m.Called(ctx, username, password))
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	return m.user(m.Called(ctx, username, password))
}

func (m *MockUserService) Get(ctx context.Context, username string) (*model.User, error) {
	return m.user(m.Called(ctx, username))
}

func (m *MockUserService) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, username, password string, roles []string) (*model.User, error) {
	return m.user(m.Called(ctx, username, password, roles))
}

func (m *MockUserService) Update(ctx context.Context, username string, upd model.UserUpdate) (*model.User, error) {
	return m.user(m.Called(ctx, username, upd))
}

func (m *MockUserService) Delete(ctx context.Context, username string) error {
	return m.Called(ctx, username).Error(0)
}

func (m *MockUserService) EnsureAdmin(ctx context.Context, username, password string) error {
	return m.Called(ctx, username, password).Error(0)
}
