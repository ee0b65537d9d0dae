package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/widget"
)

type countingInvalidator struct {
	calls atomic.Int32
}

func (c *countingInvalidator) Invalidate(ctx context.Context, key widget.Key) widget.Envelope {
	c.calls.Add(1)
	return widget.Success("refreshed")
}

func TestRefresherTicks(t *testing.T) {
	inv := &countingInvalidator{}
	r := NewRefresher(inv)
	defer r.Stop()

	r.Track(1, testKey, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return inv.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "timer should fire repeatedly")
}

func TestRefresherUntrackStopsTicks(t *testing.T) {
	inv := &countingInvalidator{}
	r := NewRefresher(inv)
	defer r.Stop()

	r.Track(1, testKey, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return inv.calls.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	r.Untrack(1)
	settled := inv.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.LessOrEqual(t, inv.calls.Load(), settled+1, "at most one in-flight tick after untrack")
}

func TestRefresherUntrackUnknownIsNoop(t *testing.T) {
	r := NewRefresher(&countingInvalidator{})
	defer r.Stop()
	r.Untrack(99)
}

func TestRefresherRetuneAppliesNextTick(t *testing.T) {
	inv := &countingInvalidator{}
	r := NewRefresher(inv)
	defer r.Stop()

	r.Track(1, testKey, time.Hour)
	// retuning does not restart the running timer; the widget keeps
	// its hour-long wait until that timer fires
	r.Track(1, testKey, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, inv.calls.Load(), "interval change waits for the current period")
}

func TestRefresherStop(t *testing.T) {
	inv := &countingInvalidator{}
	r := NewRefresher(inv)

	r.Track(1, testKey, 10*time.Millisecond)
	r.Track(2, testKey, 10*time.Millisecond)
	r.Stop()

	settled := inv.calls.Load()
	time.Sleep(60 * time.Millisecond)
	assert.LessOrEqual(t, inv.calls.Load(), settled+2, "stopped refresher must not keep ticking")
}

func TestRefresherDefaultInterval(t *testing.T) {
	inv := &countingInvalidator{}
	r := NewRefresher(inv)
	defer r.Stop()

	r.Track(1, testKey, 0)
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, inv.calls.Load(), "zero interval falls back to the long default")
}
