package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"docflow/internal/apperr"
	"docflow/internal/identity"
	"docflow/internal/model"
	"docflow/internal/repository"
	"docflow/internal/repository/memory"
	repoMocks "docflow/internal/repository/mocks"
)

func newUsers() UserService {
	return NewUserService(memory.NewUserStore(), bcrypt.MinCost, zap.NewNop())
}

func TestUserService_SignupAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newUsers()

	u, err := svc.Signup(ctx, " alice ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, []string{identity.RoleUser}, u.Roles)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	_, err = svc.Signup(ctx, "alice", "other")
	assert.ErrorIs(t, err, apperr.ErrUserExists)

	got, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestUserService_SignupValidation(t *testing.T) {
	ctx := context.Background()
	svc := newUsers()

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{name: "blank username", username: "  ", password: "x", field: "username"},
		{name: "sentinel username", username: identity.Anonymous, password: "x", field: "username"},
		{name: "blank password", username: "carol", password: "", field: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(ctx, tt.username, tt.password)
			e, ok := apperr.As(err)
			require.True(t, ok)
			assert.Equal(t, apperr.KindValidation, e.Kind)
			assert.Contains(t, e.Fields, tt.field)
		})
	}
}

func TestUserService_AdminOperations(t *testing.T) {
	ctx := context.Background()
	svc := newUsers()

	u, err := svc.Create(ctx, "dave", "pw", []string{"admin", "ROLE_USER", "Admin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, u.Roles)

	roles := []string{"auditor"}
	updated, err := svc.Update(ctx, "dave", model.UserUpdate{Roles: &roles})
	require.NoError(t, err)
	assert.Equal(t, []string{"ROLE_AUDITOR"}, updated.Roles)

	pw := "new-pw"
	_, err = svc.Update(ctx, "dave", model.UserUpdate{Password: &pw})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "dave", "new-pw")
	assert.NoError(t, err)

	empty := []string{" "}
	_, err = svc.Update(ctx, "dave", model.UserUpdate{Roles: &empty})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Update(ctx, "ghost", model.UserUpdate{})
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, "dave"))
	assert.ErrorIs(t, svc.Delete(ctx, "dave"), apperr.ErrUserNotFound)
	_, err = svc.Get(ctx, "dave")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newUsers()

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", ""))
	_, err := svc.Get(ctx, "admin")
	assert.ErrorIs(t, err, apperr.ErrUserNotFound)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "changeme"))
	require.NoError(t, svc.EnsureAdmin(ctx, "admin", "changeme"))

	u, err := svc.Authenticate(ctx, "admin", "changeme")
	require.NoError(t, err)
	assert.True(t, identity.HasRole(u.Roles, identity.RoleAdmin))
}

func TestUserService_RepositoryError(t *testing.T) {
	ctx := context.Background()
	mRepo := new(repoMocks.MockUserRepository)
	mRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(errors.New("redis down"))
	mRepo.On("FindByUsername", ctx, "erin").Return(nil, repository.ErrNotFound)

	svc := NewUserService(mRepo, bcrypt.MinCost, zap.NewNop())

	_, err := svc.Signup(ctx, "erin", "pw")
	assert.EqualError(t, err, "create user: redis down")

	_, err = svc.Authenticate(ctx, "erin", "pw")
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	mRepo.AssertExpectations(t)
}

func TestNormalizeRoles(t *testing.T) {
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, NormalizeRoles([]string{" admin", "role_user", "ADMIN", ""}))
	assert.Empty(t, NormalizeRoles(nil))
}
