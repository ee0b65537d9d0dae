// Package provider produces widget payloads, either synthetically or
// from the live issue-tracker integration. Providers are stateless
// between calls; each fetch is a pure function of its inputs.
package provider

import (
	"context"
	"math/rand"

	"pulseboard/internal/jira"
	"pulseboard/internal/widget"
)

// Result is a fetched payload plus whether the provider had to degrade
// it. Degraded payloads are well-formed and renderable; they are not
// failures.
type Result struct {
	Payload  any
	Degraded bool
}

// Provider fetches the data for one widget key.
type Provider interface {
	Fetch(ctx context.Context) (Result, error)
}

// Func adapts a plain function to the Provider interface.
type Func func(ctx context.Context) (Result, error)

func (f Func) Fetch(ctx context.Context) (Result, error) {
	return f(ctx)
}

// DefaultRegistry wires every known widget key to its provider. The
// Jira-backed keys get live providers; everything else is synthetic.
func DefaultRegistry(client *jira.Client, rng *rand.Rand) map[widget.Key]Provider {
	syn := NewSynthetic(rng)
	return map[widget.Key]Provider{
		{Kind: widget.KindSummary, Service: widget.ServiceJira}:            NewIssueSummaryProvider(client),
		{Kind: widget.KindMatrix, Service: widget.ServiceJira}:             NewMatrixBuilder(client),
		{Kind: widget.KindSummary, Service: widget.ServiceGoogleAnalytics}: syn.Analytics(),
		{Kind: widget.KindSummary, Service: widget.ServiceAtlassian}:       syn.Marketplace(),
		{Kind: widget.KindSummary, Service: widget.ServicePingdom}:         syn.Uptime(),
		{Kind: widget.KindSummary, Service: widget.ServiceMetrics}:         syn.Metrics(),
		{Kind: widget.KindMatrix, Service: widget.ServiceGoogleAnalytics}:  syn.Matrix(widget.ServiceGoogleAnalytics),
		{Kind: widget.KindMatrix, Service: widget.ServiceAtlassian}:        syn.Matrix(widget.ServiceAtlassian),
		{Kind: widget.KindMatrix, Service: widget.ServicePingdom}:          syn.Matrix(widget.ServicePingdom),
	}
}
