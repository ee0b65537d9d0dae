// Package cache keeps fetched widget envelopes server-side with
// stale-while-revalidate semantics. Entries never expire out of the
// map; staleness only decides whether a fetch happens in the
// foreground, the background, or not at all.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"pulseboard/internal/log"
	"pulseboard/internal/metrics"
	"pulseboard/internal/widget"
)

// DefaultStaleWindow is how long a cached envelope is served without
// any revalidation.
const DefaultStaleWindow = 60 * time.Second

// Fetcher produces a fresh envelope for a widget key.
type Fetcher interface {
	Fetch(ctx context.Context, key widget.Key) widget.Envelope
}

// Entry is one cached envelope with its fetch time.
type Entry struct {
	Envelope  widget.Envelope
	FetchedAt time.Time
}

// Cache holds the latest envelope per widget key. All refetches for a
// key are coalesced; concurrent callers observe the same envelope.
type Cache struct {
	fetcher    Fetcher
	staleAfter time.Duration
	now        func() time.Time
	logger     zerolog.Logger

	mu      sync.RWMutex
	entries map[widget.Key]Entry

	group singleflight.Group
}

func New(fetcher Fetcher, staleAfter time.Duration) *Cache {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleWindow
	}
	return &Cache{
		fetcher:    fetcher,
		staleAfter: staleAfter,
		now:        time.Now,
		logger:     log.WithComponent("cache"),
		entries:    make(map[widget.Key]Entry),
	}
}

// Get returns the cached entry without triggering any fetch.
func (c *Cache) Get(key widget.Key) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Fetch returns the envelope for a key. A cold key blocks on the
// fetch. A fresh entry is returned as-is. A stale entry is returned
// immediately while a background revalidation replaces it.
func (c *Cache) Fetch(ctx context.Context, key widget.Key) widget.Envelope {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		metrics.CacheMisses.Inc()
		return c.refetch(ctx, key)
	}
	if c.now().Sub(e.FetchedAt) <= c.staleAfter {
		metrics.CacheHits.WithLabelValues("fresh").Inc()
		return e.Envelope
	}

	metrics.CacheHits.WithLabelValues("stale").Inc()
	go c.refetch(context.WithoutCancel(ctx), key)
	return e.Envelope
}

// Invalidate forces a refetch for the key and returns the resulting
// envelope. Concurrent invalidations of the same key join a single
// provider call.
func (c *Cache) Invalidate(ctx context.Context, key widget.Key) widget.Envelope {
	return c.refetch(ctx, key)
}

func (c *Cache) refetch(ctx context.Context, key widget.Key) widget.Envelope {
	v, _, shared := c.group.Do(key.String(), func() (any, error) {
		// The fetch outlives any one caller. A consumer departing
		// mid-flight must not abort the shared fetch or poison the
		// cache with its cancellation.
		env := c.fetcher.Fetch(context.WithoutCancel(ctx), key)
		c.mu.Lock()
		c.entries[key] = Entry{Envelope: env, FetchedAt: c.now()}
		c.mu.Unlock()
		return env, nil
	})
	if shared {
		c.logger.Debug().Str("widget", key.String()).Msg("coalesced refetch")
	}
	return v.(widget.Envelope)
}
