package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pulseboard/internal/log"
	"pulseboard/internal/metrics"
	"pulseboard/internal/widget"
)

// DefaultRefreshInterval is used when a widget carries no interval of
// its own.
const DefaultRefreshInterval = 5 * time.Minute

// Invalidator is the slice of Cache the refresher needs.
type Invalidator interface {
	Invalidate(ctx context.Context, key widget.Key) widget.Envelope
}

// Refresher runs one timer per tracked widget and invalidates the
// widget's cache entry on every tick. Interval changes take effect on
// the next tick, not immediately.
type Refresher struct {
	cache  Invalidator
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	timers map[int64]*ticker
}

type ticker struct {
	stop chan struct{}

	mu       sync.Mutex
	key      widget.Key
	interval time.Duration
}

func (t *ticker) retune(key widget.Key, interval time.Duration) {
	t.mu.Lock()
	t.key = key
	t.interval = interval
	t.mu.Unlock()
}

func (t *ticker) snapshot() (widget.Key, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.key, t.interval
}

func NewRefresher(cache Invalidator) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Refresher{
		cache:  cache,
		logger: log.WithComponent("refresher"),
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[int64]*ticker),
	}
}

// Track starts (or retunes) the refresh timer for a widget. A
// non-positive interval falls back to the default. Re-tracking an
// already tracked widget updates its key and interval without
// restarting the running timer.
func (r *Refresher) Track(widgetID int64, key widget.Key, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[widgetID]; ok {
		t.retune(key, interval)
		return
	}
	t := &ticker{stop: make(chan struct{}), key: key, interval: interval}
	r.timers[widgetID] = t
	go r.run(widgetID, t)
}

// Interval reports the tracked refresh interval for a widget.
func (r *Refresher) Interval(widgetID int64) (time.Duration, bool) {
	r.mu.Lock()
	t, ok := r.timers[widgetID]
	r.mu.Unlock()
	if !ok {
		return 0, false
	}
	_, interval := t.snapshot()
	return interval, true
}

// Untrack cancels the timer for a widget.
func (r *Refresher) Untrack(widgetID int64) {
	r.mu.Lock()
	t, ok := r.timers[widgetID]
	if ok {
		delete(r.timers, widgetID)
	}
	r.mu.Unlock()
	if ok {
		close(t.stop)
	}
}

// Stop tears down every timer. The refresher cannot be reused after.
func (r *Refresher) Stop() {
	r.cancel()
	r.mu.Lock()
	for id, t := range r.timers {
		close(t.stop)
		delete(r.timers, id)
	}
	r.mu.Unlock()
}

func (r *Refresher) run(widgetID int64, t *ticker) {
	for {
		key, interval := t.snapshot()
		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			metrics.RefreshTicks.Inc()
			env := r.cache.Invalidate(r.ctx, key)
			if !env.OK() {
				r.logger.Warn().
					Int64("widget_id", widgetID).
					Str("widget", key.String()).
					Str("error", env.Err).
					Msg("periodic refresh failed")
			}
		case <-t.stop:
			timer.Stop()
			return
		case <-r.ctx.Done():
			timer.Stop()
			return
		}
	}
}
