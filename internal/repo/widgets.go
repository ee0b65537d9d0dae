package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pulseboard/internal/domain"
)

type NewWidget struct {
	DashboardID     int64
	IntegrationID   *int64
	Type            string
	Title           string
	Config          string
	Layout          string
	RefreshInterval int
}

type WidgetUpdate struct {
	IntegrationID   *int64
	Type            *string
	Title           *string
	Config          *string
	Layout          *string
	RefreshInterval *int
}

func scanWidget(row *sql.Row) (domain.Widget, error) {
	var w domain.Widget
	var integrationID sql.NullInt64
	err := row.Scan(&w.ID, &w.DashboardID, &integrationID, &w.Type, &w.Title, &w.Config, &w.Layout, &w.RefreshInterval, &w.CreatedAt)
	if err == sql.ErrNoRows {
		return w, ErrNotFound
	}
	if integrationID.Valid {
		w.IntegrationID = &integrationID.Int64
	}
	return w, err
}

func (r Repo) CreateWidget(ctx context.Context, nw NewWidget) (domain.Widget, error) {
	createdAt := now()
	cfg := nw.Config
	if cfg == "" {
		cfg = "{}"
	}
	layout := nw.Layout
	if layout == "" {
		layout = "{}"
	}
	interval := nw.RefreshInterval
	if interval <= 0 {
		interval = 300
	}
	var integrationID any
	if nw.IntegrationID != nil {
		integrationID = *nw.IntegrationID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO widgets(dashboard_id,integration_id,type,title,config,layout,refresh_interval,created_at) VALUES (?,?,?,?,?,?,?,?)`,
		nw.DashboardID, integrationID, nw.Type, nw.Title, cfg, layout, interval, createdAt)
	if err != nil {
		return domain.Widget{}, fmt.Errorf("insert widget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Widget{}, err
	}
	return r.GetWidget(ctx, id)
}

func (r Repo) GetWidget(ctx context.Context, id int64) (domain.Widget, error) {
	return scanWidget(r.DB.QueryRowContext(ctx,
		`SELECT id,dashboard_id,integration_id,type,title,config,layout,refresh_interval,created_at FROM widgets WHERE id=?`, id))
}

func (r Repo) ListWidgets(ctx context.Context, dashboardID int64) ([]domain.Widget, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,dashboard_id,integration_id,type,title,config,layout,refresh_interval,created_at FROM widgets WHERE dashboard_id=? ORDER BY created_at, id`, dashboardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWidgets(rows)
}

// AllWidgets returns every widget across dashboards. The refresh
// controller uses it to resume timers at startup.
func (r Repo) AllWidgets(ctx context.Context) ([]domain.Widget, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,dashboard_id,integration_id,type,title,config,layout,refresh_interval,created_at FROM widgets ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectWidgets(rows)
}

func collectWidgets(rows *sql.Rows) ([]domain.Widget, error) {
	var res []domain.Widget
	for rows.Next() {
		var w domain.Widget
		var integrationID sql.NullInt64
		if err := rows.Scan(&w.ID, &w.DashboardID, &integrationID, &w.Type, &w.Title, &w.Config, &w.Layout, &w.RefreshInterval, &w.CreatedAt); err != nil {
			return nil, err
		}
		if integrationID.Valid {
			w.IntegrationID = &integrationID.Int64
		}
		res = append(res, w)
	}
	return res, rows.Err()
}

func (r Repo) UpdateWidget(ctx context.Context, id int64, upd WidgetUpdate) (domain.Widget, error) {
	var (
		fields []string
		args   []any
	)
	if upd.IntegrationID != nil {
		fields = append(fields, "integration_id=?")
		args = append(args, *upd.IntegrationID)
	}
	if upd.Type != nil {
		fields = append(fields, "type=?")
		args = append(args, *upd.Type)
	}
	if upd.Title != nil {
		fields = append(fields, "title=?")
		args = append(args, *upd.Title)
	}
	if upd.Config != nil {
		fields = append(fields, "config=?")
		args = append(args, *upd.Config)
	}
	if upd.Layout != nil {
		fields = append(fields, "layout=?")
		args = append(args, *upd.Layout)
	}
	if upd.RefreshInterval != nil {
		fields = append(fields, "refresh_interval=?")
		args = append(args, *upd.RefreshInterval)
	}
	if len(fields) == 0 {
		return r.GetWidget(ctx, id)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx, fmt.Sprintf(`UPDATE widgets SET %s WHERE id=?`, strings.Join(fields, ",")), args...)
	if err != nil {
		return domain.Widget{}, err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return domain.Widget{}, ErrNotFound
	}
	return r.GetWidget(ctx, id)
}

func (r Repo) DeleteWidget(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM widgets WHERE id=?`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
