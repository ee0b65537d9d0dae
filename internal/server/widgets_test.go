package server

import (
	"context"
	"testing"
	"time"

	"pulseboard/internal/cache"
	"pulseboard/internal/domain"
	"pulseboard/internal/widget"
)

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(ctx context.Context, key widget.Key) widget.Envelope {
	return widget.Success(nil)
}

func TestSyncRefresherAppliesIntervalOverrides(t *testing.T) {
	r := cache.NewRefresher(nopInvalidator{})
	defer r.Stop()
	cfg := Config{
		Refresher:        r,
		RefreshOverrides: map[string]int{"pingdom": 30},
	}

	// configured override wins over the row interval
	syncRefresher(cfg, domain.Widget{ID: 7, Type: "pingdom", RefreshInterval: 300})
	if d, ok := r.Interval(7); !ok || d != 30*time.Second {
		t.Fatalf("overridden interval = %v (tracked %v), want 30s", d, ok)
	}

	// no override tracks the row interval
	syncRefresher(cfg, domain.Widget{ID: 8, Type: "jira", RefreshInterval: 120})
	if d, ok := r.Interval(8); !ok || d != 2*time.Minute {
		t.Fatalf("row interval = %v (tracked %v), want 2m", d, ok)
	}

	// unknown type stays untracked
	syncRefresher(cfg, domain.Widget{ID: 9, Type: "weather", RefreshInterval: 60})
	if _, ok := r.Interval(9); ok {
		t.Fatal("unknown widget type must not be tracked")
	}
}
