package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pulseboard/internal/domain"
)

type NewIntegration struct {
	UserID   int64
	Type     string
	Name     string
	Config   string
	IsActive bool
}

type IntegrationUpdate struct {
	Type     *string
	Name     *string
	Config   *string
	IsActive *bool
}

func scanIntegration(row *sql.Row) (domain.Integration, error) {
	var in domain.Integration
	var isActive int
	err := row.Scan(&in.ID, &in.UserID, &in.Type, &in.Name, &in.Config, &isActive, &in.CreatedAt)
	if err == sql.ErrNoRows {
		return in, ErrNotFound
	}
	in.IsActive = isActive != 0
	return in, err
}

func (r Repo) CreateIntegration(ctx context.Context, ni NewIntegration) (domain.Integration, error) {
	createdAt := now()
	cfg := ni.Config
	if cfg == "" {
		cfg = "{}"
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO integrations(user_id,type,name,config,is_active,created_at) VALUES (?,?,?,?,?,?)`,
		ni.UserID, ni.Type, ni.Name, cfg, boolToInt(ni.IsActive), createdAt)
	if err != nil {
		return domain.Integration{}, fmt.Errorf("insert integration: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Integration{}, err
	}
	return r.GetIntegration(ctx, id)
}

func (r Repo) GetIntegration(ctx context.Context, id int64) (domain.Integration, error) {
	return scanIntegration(r.DB.QueryRowContext(ctx,
		`SELECT id,user_id,type,name,config,is_active,created_at FROM integrations WHERE id=?`, id))
}

func (r Repo) ListIntegrations(ctx context.Context, userID int64) ([]domain.Integration, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,user_id,type,name,config,is_active,created_at FROM integrations WHERE user_id=? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Integration
	for rows.Next() {
		var in domain.Integration
		var isActive int
		if err := rows.Scan(&in.ID, &in.UserID, &in.Type, &in.Name, &in.Config, &isActive, &in.CreatedAt); err != nil {
			return nil, err
		}
		in.IsActive = isActive != 0
		res = append(res, in)
	}
	return res, rows.Err()
}

func (r Repo) UpdateIntegration(ctx context.Context, id int64, upd IntegrationUpdate) (domain.Integration, error) {
	var (
		fields []string
		args   []any
	)
	if upd.Type != nil {
		fields = append(fields, "type=?")
		args = append(args, *upd.Type)
	}
	if upd.Name != nil {
		fields = append(fields, "name=?")
		args = append(args, *upd.Name)
	}
	if upd.Config != nil {
		fields = append(fields, "config=?")
		args = append(args, *upd.Config)
	}
	if upd.IsActive != nil {
		fields = append(fields, "is_active=?")
		args = append(args, boolToInt(*upd.IsActive))
	}
	if len(fields) == 0 {
		return r.GetIntegration(ctx, id)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE integrations SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return domain.Integration{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.Integration{}, ErrNotFound
	}
	return r.GetIntegration(ctx, id)
}

func (r Repo) DeleteIntegration(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM integrations WHERE id=?`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
