package mocks

import (
	"context"

	"docflow/internal/identity"
	"docflow/internal/model"
	"docflow/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, in service.CreateDocumentInput, caller identity.Principal) (*model.DocumentView, error) {
	args := m.Called(ctx, in, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentView), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id int64, caller identity.Principal) (*model.DocumentView, error) {
	args := m.Called(ctx, id, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentView), args.Error(1)
}

func (m *MockDocumentService) ListForUser(ctx context.Context, caller identity.Principal, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, caller, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) ListByDepartment(ctx context.Context, departmentID int64, caller identity.Principal, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, departmentID, caller, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) ListAll(ctx context.Context, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) ApplyTranslation(ctx context.Context, id int64, translatedTitle string) (*model.Document, error) {
	args := m.Called(ctx, id, translatedTitle)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) DownloadLink(ctx context.Context, id int64, caller identity.Principal) (*model.DownloadLink, error) {
	args := m.Called(ctx, id, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DownloadLink), args.Error(1)
}
