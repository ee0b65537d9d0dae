package repo

import (
	"context"
	"database/sql"

	"pulseboard/internal/domain"
)

// ListEvents returns the most recent change events, newest first.
func (r Repo) ListEvents(ctx context.Context, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,ts,type,entity_kind,entity_id,payload_json FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Event
	for rows.Next() {
		var e domain.Event
		var entityID sql.NullString
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &entityID, &e.Payload); err != nil {
			return nil, err
		}
		if entityID.Valid {
			e.EntityID = entityID.String
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
