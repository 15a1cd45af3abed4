package repository

import (
	"context"

	"docflow/internal/model"
)

// DocumentRepository defines data access for document metadata.
// No business logic here: authorization happens in the service layer.
type DocumentRepository interface {
	// Create inserts a new document and returns it with its generated ID.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// List returns a page over all documents, newest first.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Document], error)

	// ListByDepartments returns a page over documents of the given departments, newest first.
	ListByDepartments(ctx context.Context, departmentIDs []int64, pq PageQuery) (*PageResult[model.Document], error)

	// UpdateTitleEs overwrites the translated title. Returns ErrNotFound if the document is gone.
	UpdateTitleEs(ctx context.Context, id int64, titleEs string) (*model.Document, error)

	// Delete removes a document. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	CountByDepartment(ctx context.Context, departmentID int64) (int, error)
	CountByCategory(ctx context.Context, categoryID int64) (int, error)
}
