package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newManager(t *testing.T, clock *fakeClock, opts ...Option) *Manager {
	t.Helper()
	opts = append(opts, WithClock(clock.Now))
	m, err := NewManager(secret, time.Hour, opts...)
	require.NoError(t, err)
	return m
}

func TestNewManager_RejectsShortKey(t *testing.T) {
	_, err := NewManager("too-short", time.Hour)
	assert.ErrorIs(t, err, ErrWeakKey)

	_, err = NewManager(secret, 0)
	assert.Error(t, err)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m := newManager(t, clock, WithIssuer("docflow-auth"))

	tests := []struct {
		name  string
		user  string
		roles []string
		want  []string
	}{
		{name: "admin", user: "admin", roles: []string{"ROLE_ADMIN", "ROLE_USER"}, want: []string{"ROLE_ADMIN", "ROLE_USER"}},
		{name: "single role", user: "alice", roles: []string{"ROLE_USER"}, want: []string{"ROLE_USER"}},
		{name: "no roles", user: "svc", roles: nil, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := m.Issue(tt.user, tt.roles)
			require.NoError(t, err)
			assert.Equal(t, 3, len(strings.Split(tok, ".")))

			claims, err := m.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, tt.user, claims.Subject)
			assert.Equal(t, tt.want, claims.Roles)
			assert.True(t, clock.t.Add(time.Hour).Equal(claims.ExpiresAt))
		})
	}
}

func TestVerify_ExpiredAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	m := newManager(t, clock)

	tok, err := m.Issue("alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	clock.t = clock.t.Add(59 * time.Minute)
	_, err = m.Verify(tok)
	assert.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Minute)
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerify_DifferentSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	issuer := newManager(t, clock)
	other, err := NewManager("ffffffffffffffffffffffffffffffff", time.Hour, WithClock(clock.Now))
	require.NoError(t, err)

	tok, err := issuer.Issue("alice", []string{"ROLE_USER"})
	require.NoError(t, err)

	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_Malformed(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	m := newManager(t, clock)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "mallory",
		"exp": clock.t.Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString([]byte(secret))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage":      "not-a-token",
		"empty":        "",
		"missing exp":  noExp,
		"two segments": "abc.def",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(tok)
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}

	// an algorithm outside the allowed set never reaches claim checks
	_, err = m.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestIssue_RequiresSubject(t *testing.T) {
	m := newManager(t, &fakeClock{t: time.Now()})
	_, err := m.Issue("", []string{"ROLE_USER"})
	assert.Error(t, err)
}
