package mocks

import (
	"context"

	"docflow/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishDocumentCreated(ctx context.Context, evt model.DocumentCreatedEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishTranslationResult(ctx context.Context, evt model.TranslationResultEvent) error {
	args := m.Called(ctx, evt)
	return args.Error(0)
}
