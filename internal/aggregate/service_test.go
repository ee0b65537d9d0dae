package aggregate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"pulseboard/internal/provider"
	"pulseboard/internal/widget"
)

var summaryKey = widget.Key{Kind: widget.KindSummary, Service: widget.ServicePingdom}

func countingProvider(calls *int, res provider.Result, err error) provider.Provider {
	return provider.Func(func(context.Context) (provider.Result, error) {
		*calls++
		return res, err
	})
}

func TestFetchSuccess(t *testing.T) {
	calls := 0
	svc := NewService(map[widget.Key]provider.Provider{
		summaryKey: countingProvider(&calls, provider.Result{Payload: "up"}, nil),
	})

	env := svc.Fetch(context.Background(), summaryKey)
	assert.True(t, env.OK())
	assert.False(t, env.Degraded)
	assert.Equal(t, "up", env.Payload)
	assert.Equal(t, 1, calls)
}

func TestFetchUnknownKeySkipsProviders(t *testing.T) {
	calls := 0
	svc := NewService(map[widget.Key]provider.Provider{
		summaryKey: countingProvider(&calls, provider.Result{}, nil),
	})

	env := svc.Fetch(context.Background(), widget.Key{Kind: widget.KindMatrix, Service: widget.ServiceMetrics})
	assert.False(t, env.OK())
	assert.Equal(t, "Invalid widget type", env.Err)
	assert.Zero(t, calls)
}

func TestFetchProviderError(t *testing.T) {
	calls := 0
	svc := NewService(map[widget.Key]provider.Provider{
		summaryKey: countingProvider(&calls, provider.Result{}, errors.New("remote down")),
	})

	env := svc.Fetch(context.Background(), summaryKey)
	assert.False(t, env.OK())
	assert.Equal(t, "remote down", env.Err)
	assert.Nil(t, env.Payload)
}

func TestFetchDegraded(t *testing.T) {
	calls := 0
	svc := NewService(map[widget.Key]provider.Provider{
		summaryKey: countingProvider(&calls, provider.Result{Payload: "partial", Degraded: true}, nil),
	})

	env := svc.Fetch(context.Background(), summaryKey)
	assert.True(t, env.OK())
	assert.True(t, env.Degraded)
	assert.Equal(t, "partial", env.Payload)
}

func TestKnown(t *testing.T) {
	svc := NewService(map[widget.Key]provider.Provider{summaryKey: provider.Func(nil)})
	assert.True(t, svc.Known(summaryKey))
	assert.False(t, svc.Known(widget.Key{Kind: widget.KindMatrix, Service: widget.ServiceMetrics}))
}
