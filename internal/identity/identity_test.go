package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/apperr"
)

func TestParseRoles(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"ROLE_ADMIN,ROLE_USER", []string{"ROLE_ADMIN", "ROLE_USER"}},
		{"[ROLE_ADMIN, ROLE_USER]", []string{"ROLE_ADMIN", "ROLE_USER"}},
		{" ROLE_USER , ,ROLE_USER", []string{"ROLE_USER"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoles(tt.in))
		})
	}
}

func TestCurrentUser_Authenticated(t *testing.T) {
	ctx := WithPrincipal(context.Background(), NewPrincipal("alice", "ROLE_USER"))

	id, err := CurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)
	assert.Equal(t, []string{"ROLE_USER"}, CurrentUserRoles(ctx))
	assert.False(t, FromContext(ctx).IsAdmin())
}

func TestCurrentUser_Sentinel(t *testing.T) {
	for name, ctx := range map[string]context.Context{
		"no principal":    context.Background(),
		"blank header":    WithPrincipal(context.Background(), NewPrincipal("  ", "ROLE_ADMIN")),
		"sentinel header": WithPrincipal(context.Background(), NewPrincipal(Anonymous, "ROLE_ADMIN")),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := CurrentUserID(ctx)
			assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)
			assert.Empty(t, CurrentUserRoles(ctx))
			assert.Equal(t, Anonymous, FromContext(ctx).ID)
		})
	}
}

func TestJoinRoles(t *testing.T) {
	roles := []string{"ROLE_ADMIN", "ROLE_USER"}
	assert.Equal(t, "ROLE_ADMIN,ROLE_USER", JoinRoles(roles))
	assert.Equal(t, roles, ParseRoles(JoinRoles(roles)))
}
