// Package aggregate turns widget keys into result envelopes. It is the
// only layer that talks to providers; everything above it deals in
// envelopes and never sees a provider error.
package aggregate

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"pulseboard/internal/log"
	"pulseboard/internal/metrics"
	"pulseboard/internal/provider"
	"pulseboard/internal/widget"
)

const invalidTypeMessage = "Invalid widget type"

// Service dispatches fetches over a fixed provider registry.
type Service struct {
	providers map[widget.Key]provider.Provider
	logger    zerolog.Logger
}

func NewService(providers map[widget.Key]provider.Provider) *Service {
	return &Service{
		providers: providers,
		logger:    log.WithComponent("aggregate"),
	}
}

// Fetch resolves one widget key to an envelope. Unknown keys fail
// without touching any provider.
func (s *Service) Fetch(ctx context.Context, key widget.Key) widget.Envelope {
	p, ok := s.providers[key]
	if !ok {
		metrics.FetchTotal.WithLabelValues(key.String(), "invalid").Inc()
		return widget.Failure(invalidTypeMessage)
	}

	start := time.Now()
	res, err := p.Fetch(ctx)
	metrics.FetchDuration.WithLabelValues(key.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FetchTotal.WithLabelValues(key.String(), "error").Inc()
		s.logger.Warn().
			Str("widget", key.String()).
			Err(err).
			Msg("provider fetch failed")
		return widget.Failure(err.Error())
	}
	if res.Degraded {
		metrics.FetchTotal.WithLabelValues(key.String(), "degraded").Inc()
		s.logger.Info().
			Str("widget", key.String()).
			Msg("provider served degraded payload")
		return widget.DegradedResult(res.Payload)
	}
	metrics.FetchTotal.WithLabelValues(key.String(), "ok").Inc()
	return widget.Success(res.Payload)
}

// Known reports whether the service has a provider for the key.
func (s *Service) Known(key widget.Key) bool {
	_, ok := s.providers[key]
	return ok
}
