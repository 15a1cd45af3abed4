package postgres

import (
	"context"
	"database/sql"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// DepartmentPostgres is a PostgreSQL implementation of repository.DepartmentRepository.
type DepartmentPostgres struct {
	db *sql.DB
}

func NewDepartmentPostgres(db *sql.DB) *DepartmentPostgres {
	return &DepartmentPostgres{db: db}
}

var _ repository.DepartmentRepository = (*DepartmentPostgres)(nil)

func (r *DepartmentPostgres) Create(ctx context.Context, name string) (*model.Department, error) {
	d := model.Department{Name: name}
	err := r.db.QueryRowContext(ctx, `INSERT INTO departments (name) VALUES ($1) RETURNING id`, name).Scan(&d.ID)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *DepartmentPostgres) FindByID(ctx context.Context, id int64) (*model.Department, error) {
	d := model.Department{ID: id}
	if err := r.db.QueryRowContext(ctx, `SELECT name FROM departments WHERE id = $1`, id).Scan(&d.Name); err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (r *DepartmentPostgres) List(ctx context.Context) ([]model.Department, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Department, 0)
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *DepartmentPostgres) Update(ctx context.Context, id int64, name string) (*model.Department, error) {
	if err := execAffecting(ctx, r.db, `UPDATE departments SET name = $2 WHERE id = $1`, id, name); err != nil {
		return nil, err
	}
	return &model.Department{ID: id, Name: name}, nil
}

func (r *DepartmentPostgres) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, `DELETE FROM departments WHERE id = $1`, id)
}

func (r *DepartmentPostgres) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n)
	return n, err
}

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

func (r *CategoryPostgres) Create(ctx context.Context, name string) (*model.Category, error) {
	c := model.Category{Name: name}
	err := r.db.QueryRowContext(ctx, `INSERT INTO categories (name) VALUES ($1) RETURNING id`, name).Scan(&c.ID)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryPostgres) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	c := model.Category{ID: id}
	if err := r.db.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = $1`, id).Scan(&c.Name); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryPostgres) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryPostgres) Update(ctx context.Context, id int64, name string) (*model.Category, error) {
	if err := execAffecting(ctx, r.db, `UPDATE categories SET name = $2 WHERE id = $1`, id, name); err != nil {
		return nil, err
	}
	return &model.Category{ID: id, Name: name}, nil
}

func (r *CategoryPostgres) Delete(ctx context.Context, id int64) error {
	return execAffecting(ctx, r.db, `DELETE FROM categories WHERE id = $1`, id)
}
