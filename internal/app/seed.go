// Package app wires startup concerns that sit between storage and the
// surfaces: seeding the demo account and re-arming refresh timers for
// stored widgets.
package app

import (
	"context"
	"errors"
	"time"

	"pulseboard/internal/cache"
	"pulseboard/internal/domain"
	"pulseboard/internal/log"
	"pulseboard/internal/repo"
	"pulseboard/internal/widget"
)

// EnsureDemoUser creates the demo account on first start. CreateUser
// seeds the default "Main Dashboard" alongside it.
func EnsureDemoUser(ctx context.Context, r repo.Repo) (domain.User, error) {
	u, err := r.GetUserByUsername(ctx, "demo")
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return domain.User{}, err
	}
	return r.CreateUser(ctx, repo.NewUser{
		Username: "demo",
		Password: "password",
		Email:    "demo@example.com",
		FullName: "Demo User",
	})
}

// TrackStoredWidgets re-arms a refresh timer for every widget in the
// store. Widgets with an unrecognized type are skipped and logged.
// overrides maps wire widget types to interval seconds and wins over
// the per-row interval.
func TrackStoredWidgets(ctx context.Context, r repo.Repo, refresher *cache.Refresher, overrides map[string]int) error {
	widgets, err := r.AllWidgets(ctx)
	if err != nil {
		return err
	}
	logger := log.WithComponent("app")
	for _, w := range widgets {
		key, ok := widget.ParseKey(w.Type)
		if !ok {
			logger.Warn().Int64("widget_id", w.ID).Str("type", w.Type).Msg("skipping widget with unknown type")
			continue
		}
		interval := w.RefreshInterval
		if sec, ok := overrides[w.Type]; ok {
			interval = sec
		}
		refresher.Track(w.ID, key, time.Duration(interval)*time.Second)
	}
	logger.Info().Int("widgets", len(widgets)).Msg("refresh timers armed")
	return nil
}
