// Package token issues and verifies the signed bearer tokens shared by the auth
// service and the gateway.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinKeyLength is the smallest accepted HMAC-SHA256 secret, in bytes.
const MinKeyLength = 32

var (
	ErrInvalidSignature = errors.New("token signature is invalid")
	ErrExpired          = errors.New("token has expired")
	ErrMalformed        = errors.New("token is malformed")
	ErrWeakKey          = fmt.Errorf("signing key must be at least %d bytes", MinKeyLength)
)

// Claims is the verified content of a token.
type Claims struct {
	Subject   string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type jwtClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HS256 tokens with a shared secret.
type Manager struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// Option customizes a Manager.
type Option func(*Manager)

// WithIssuer sets the iss claim and requires it on verification.
func WithIssuer(issuer string) Option {
	return func(m *Manager) { m.issuer = issuer }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager validates the secret length and returns a Manager issuing tokens valid for ttl.
func NewManager(secret string, ttl time.Duration, opts ...Option) (*Manager, error) {
	if len(secret) < MinKeyLength {
		return nil, ErrWeakKey
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	m := &Manager{key: []byte(secret), ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL returns the lifetime of issued tokens.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue returns a compact signed token for username carrying roles.
func (m *Manager) Issue(username string, roles []string) (string, error) {
	if username == "" {
		return "", errors.New("token subject is required")
	}
	if roles == nil {
		roles = []string{}
	}
	now := m.now()
	claims := jwtClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded claims.
// Errors are always one of ErrInvalidSignature, ErrExpired or ErrMalformed.
func (m *Manager) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var claims jwtClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return m.key, nil
	}, opts...)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	default:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, ErrMalformed
	}
	out := &Claims{
		Subject:   claims.Subject,
		Roles:     claims.Roles,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if out.Roles == nil {
		out.Roles = []string{}
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
