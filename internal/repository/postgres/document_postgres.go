package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, title_en, title_es, file_key, file_name, file_type, file_size,
		category_id, department_id, owner_user_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d       model.Document
		titleEs sql.NullString
	)
	if err := row.Scan(
		&d.ID,
		&d.TitleEn,
		&titleEs,
		&d.FileKey,
		&d.FileName,
		&d.FileType,
		&d.FileSize,
		&d.CategoryID,
		&d.DepartmentID,
		&d.OwnerUserID,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if titleEs.Valid {
		d.TitleEs = &titleEs.String
	}
	return &d, nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	q := `
		INSERT INTO documents (title_en, title_es, file_key, file_name, file_type, file_size,
			category_id, department_id, owner_user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.TitleEn,
		doc.TitleEs,
		doc.FileKey,
		doc.FileName,
		doc.FileType,
		doc.FileSize,
		doc.CategoryID,
		doc.DepartmentID,
		doc.OwnerUserID,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return scanDocument(row)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// List returns documents using LIMIT/OFFSET pagination and a total count.
func (r *DocumentPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	return r.page(ctx, "", nil, pq)
}

// ListByDepartments restricts List to the given departments.
func (r *DocumentPostgres) ListByDepartments(ctx context.Context, departmentIDs []int64, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	if len(departmentIDs) == 0 {
		return &repository.PageResult[model.Document]{Items: []model.Document{}}, nil
	}
	placeholders := make([]string, len(departmentIDs))
	args := make([]any, len(departmentIDs))
	for i, id := range departmentIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	where := "WHERE department_id IN (" + strings.Join(placeholders, ", ") + ")"
	return r.page(ctx, where, args, pq)
}

func (r *DocumentPostgres) page(ctx context.Context, where string, args []any, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	// Count total rows
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents `+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	// Fetch page
	n := len(args)
	qList := fmt.Sprintf(`SELECT %s FROM documents %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		documentColumns, where, n+1, n+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// UpdateTitleEs overwrites the translated title. updated_at only moves when the title changes,
// so a redelivered result leaves the row as it was.
func (r *DocumentPostgres) UpdateTitleEs(ctx context.Context, id int64, titleEs string) (*model.Document, error) {
	q := `UPDATE documents SET title_es = $2,
  updated_at = CASE WHEN title_es IS DISTINCT FROM $2 THEN now() ELSE updated_at END
WHERE id = $1 RETURNING ` + documentColumns
	return scanDocument(r.db.QueryRowContext(ctx, q, id, titleEs))
}

// Delete removes a document by ID.
func (r *DocumentPostgres) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, `DELETE FROM documents WHERE id = $1`, id)
}

func (r *DocumentPostgres) CountByDepartment(ctx context.Context, departmentID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE department_id = $1`, departmentID).Scan(&n)
	return n, err
}

func (r *DocumentPostgres) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE category_id = $1`, categoryID).Scan(&n)
	return n, err
}
