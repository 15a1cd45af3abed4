// Package storage turns stored file keys into download URLs.
//
// The services never handle file bytes: clients upload to the blob store directly
// and documents only keep the object key.
package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"
)

// ErrInvalidKey is returned for blank or absolute object keys.
var ErrInvalidKey = errors.New("invalid object key")

// Linker is a reusable, S3-compatible download link generator.
type Linker interface {
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

// proxyLinker points at a storage proxy endpoint that signs on request.
type proxyLinker struct {
	base string
}

// NewProxyLinker returns a Linker producing base + escaped key, used when no
// object store is configured.
func NewProxyLinker(base string) Linker {
	return &proxyLinker{base: base}
}

func (p *proxyLinker) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return p.base + url.PathEscape(key), nil
}
