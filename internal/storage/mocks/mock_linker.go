package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockLinker struct {
	mock.Mock
}

func (m *MockLinker) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
