package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pulseboard/internal/domain"
)

type NewDashboard struct {
	UserID    int64
	Name      string
	IsDefault bool
}

type DashboardUpdate struct {
	Name      *string
	IsDefault *bool
}

func scanDashboard(row *sql.Row) (domain.Dashboard, error) {
	var d domain.Dashboard
	var isDefault int
	err := row.Scan(&d.ID, &d.UserID, &d.Name, &isDefault, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	d.IsDefault = isDefault != 0
	return d, err
}

func (r Repo) CreateDashboard(ctx context.Context, nd NewDashboard) (domain.Dashboard, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dashboard{}, err
	}
	defer tx.Rollback()

	createdAt := now()
	res, err := tx.ExecContext(ctx, `INSERT INTO dashboards(user_id,name,is_default,created_at) VALUES (?,?,?,?)`,
		nd.UserID, nd.Name, boolToInt(nd.IsDefault), createdAt)
	if err != nil {
		return domain.Dashboard{}, fmt.Errorf("insert dashboard: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Dashboard{}, err
	}
	// A user has at most one default dashboard.
	if nd.IsDefault {
		if _, err := tx.ExecContext(ctx, `UPDATE dashboards SET is_default=0 WHERE user_id=? AND id<>?`, nd.UserID, id); err != nil {
			return domain.Dashboard{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Dashboard{ID: id, UserID: nd.UserID, Name: nd.Name, IsDefault: nd.IsDefault, CreatedAt: createdAt}, nil
}

func (r Repo) GetDashboard(ctx context.Context, id int64) (domain.Dashboard, error) {
	return scanDashboard(r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,name,is_default,created_at FROM dashboards WHERE id=?`, id))
}

func (r Repo) GetDefaultDashboard(ctx context.Context, userID int64) (domain.Dashboard, error) {
	return scanDashboard(r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,name,is_default,created_at FROM dashboards WHERE user_id=? AND is_default=1 LIMIT 1`, userID))
}

func (r Repo) ListDashboards(ctx context.Context, userID int64) ([]domain.Dashboard, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,user_id,name,is_default,created_at FROM dashboards WHERE user_id=? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Dashboard
	for rows.Next() {
		var d domain.Dashboard
		var isDefault int
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &isDefault, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.IsDefault = isDefault != 0
		res = append(res, d)
	}
	return res, rows.Err()
}

func (r Repo) UpdateDashboard(ctx context.Context, id int64, upd DashboardUpdate) (domain.Dashboard, error) {
	var (
		fields []string
		args   []any
	)
	if upd.Name != nil {
		fields = append(fields, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.IsDefault != nil {
		fields = append(fields, "is_default=?")
		args = append(args, boolToInt(*upd.IsDefault))
	}
	if len(fields) == 0 {
		return r.GetDashboard(ctx, id)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Dashboard{}, err
	}
	defer tx.Rollback()

	args = append(args, id)
	res, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE dashboards SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return domain.Dashboard{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.Dashboard{}, ErrNotFound
	}
	if upd.IsDefault != nil && *upd.IsDefault {
		if _, err := tx.ExecContext(ctx,
			`UPDATE dashboards SET is_default=0 WHERE user_id=(SELECT user_id FROM dashboards WHERE id=?) AND id<>?`, id, id); err != nil {
			return domain.Dashboard{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Dashboard{}, err
	}
	return r.GetDashboard(ctx, id)
}

// DeleteDashboard removes a dashboard and its widgets.
func (r Repo) DeleteDashboard(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM widgets WHERE dashboard_id=?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM dashboards WHERE id=?`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
