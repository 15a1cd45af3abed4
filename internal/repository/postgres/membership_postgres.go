package postgres

import (
	"context"
	"database/sql"

	"docflow/internal/repository"
)

// MembershipPostgres stores assignments in user_departments (primary key user_id, department_id).
type MembershipPostgres struct {
	db *sql.DB
}

func NewMembershipPostgres(db *sql.DB) *MembershipPostgres {
	return &MembershipPostgres{db: db}
}

var _ repository.MembershipRepository = (*MembershipPostgres)(nil)

// Assign relies on the primary key to make repeated inserts a no-op.
func (r *MembershipPostgres) Assign(ctx context.Context, userID string, departmentID int64) (bool, error) {
	const q = `
		INSERT INTO user_departments (user_id, department_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, department_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, q, userID, departmentID)
	if err != nil {
		return false, translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MembershipPostgres) Unassign(ctx context.Context, userID string, departmentID int64) error {
	return execAffecting(ctx, r.db,
		`DELETE FROM user_departments WHERE user_id = $1 AND department_id = $2`, userID, departmentID)
}

func (r *MembershipPostgres) IsMember(ctx context.Context, userID string, departmentID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_departments WHERE user_id = $1 AND department_id = $2)`,
		userID, departmentID).Scan(&ok)
	return ok, err
}

func (r *MembershipPostgres) DepartmentIDs(ctx context.Context, userID string) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT department_id FROM user_departments WHERE user_id = $1 ORDER BY department_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *MembershipPostgres) UserIDs(ctx context.Context, departmentID int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM user_departments WHERE department_id = $1 ORDER BY user_id`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *MembershipPostgres) RemoveDepartment(ctx context.Context, departmentID int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_departments WHERE department_id = $1`, departmentID)
	return err
}
