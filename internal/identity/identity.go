// Package identity carries the caller's principal through a request.
//
// Downstream services never verify tokens themselves: the gateway is the only
// trust anchor, and the principal is rebuilt from the trust headers it injects.
// That only holds while every external request reaches these services through
// the gateway.
package identity

import (
	"context"
	"slices"
	"strings"

	"docflow/internal/apperr"
)

// Anonymous is the user id given to callers without trust headers.
const Anonymous = "unauthenticated-user"

// InternalTokenHeader carries the shared key of service-to-service calls that
// bypass the gateway.
const InternalTokenHeader = "X-Internal-Token"

const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// Principal is the request-scoped identity.
type Principal struct {
	ID    string
	Roles []string
}

// AnonymousPrincipal returns the sentinel identity.
func AnonymousPrincipal() Principal {
	return Principal{ID: Anonymous, Roles: []string{}}
}

// NewPrincipal builds a principal from the user and roles header values.
// A blank user yields the sentinel identity.
func NewPrincipal(user, roles string) Principal {
	user = strings.TrimSpace(user)
	if user == "" || user == Anonymous {
		return AnonymousPrincipal()
	}
	return Principal{ID: user, Roles: ParseRoles(roles)}
}

func (p Principal) IsAuthenticated() bool {
	return p.ID != "" && p.ID != Anonymous
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}

func (p Principal) IsAdmin() bool { return p.HasRole(RoleAdmin) }

// ParseRoles splits a comma-separated role list. Surrounding list brackets
// ("[ROLE_A, ROLE_B]") are tolerated.
func ParseRoles(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	out := []string{}
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" && !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

// JoinRoles is the inverse of ParseRoles.
func JoinRoles(roles []string) string {
	return strings.Join(roles, ",")
}

// HasRole reports whether roles contains role.
func HasRole(roles []string, role string) bool {
	return slices.Contains(roles, role)
}

type ctxKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, or the sentinel identity.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(ctxKey{}).(Principal); ok {
		return p
	}
	return AnonymousPrincipal()
}

// CurrentUserID returns the caller's user id or apperr.ErrNotAuthenticated.
func CurrentUserID(ctx context.Context) (string, error) {
	p := FromContext(ctx)
	if !p.IsAuthenticated() {
		return "", apperr.ErrNotAuthenticated
	}
	return p.ID, nil
}

// CurrentUserRoles returns the caller's roles; empty when unauthenticated.
func CurrentUserRoles(ctx context.Context) []string {
	p := FromContext(ctx)
	if !p.IsAuthenticated() {
		return []string{}
	}
	return p.Roles
}
