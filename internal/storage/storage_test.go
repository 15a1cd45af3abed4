package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/config"
)

func TestProxyLinker(t *testing.T) {
	l := NewProxyLinker("/api/storage/presigned-url/")

	u, err := l.PresignGet(context.Background(), "docs/q1 report.pdf", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "/api/storage/presigned-url/docs%2Fq1%20report.pdf", u)

	for _, key := range []string{"", "  ", "/etc/passwd", "a/../b"} {
		_, err := l.PresignGet(context.Background(), key, time.Minute)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

// Presigning is computed locally, so a client pointed at an unreachable endpoint still signs.
func TestMinioLinker_PresignGet(t *testing.T) {
	cli, err := minio.New("minio.local:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret-key", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)
	l := &minioLinker{client: cli, bucket: "documents"}

	raw, err := l.PresignGet(context.Background(), "docs/q1.pdf", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio.local:9000", u.Host)
	assert.True(t, strings.HasPrefix(u.Path, "/documents/docs/q1.pdf"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{"missing endpoint", config.MinIOConfig{}, "minio endpoint is required"},
		{"missing credentials", config.MinIOConfig{Endpoint: "x:9000"}, "minio credentials are required"},
		{"missing bucket", config.MinIOConfig{Endpoint: "x:9000", AccessKey: "a", SecretKey: "b"}, "minio bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(context.Background(), tt.cfg)
			assert.EqualError(t, err, tt.want)
		})
	}
}
