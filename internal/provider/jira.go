package provider

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"pulseboard/internal/jira"
	"pulseboard/internal/widget"
)

// IssueSummaryProvider counts Jira issues by severity and by type.
type IssueSummaryProvider struct {
	client *jira.Client
}

func NewIssueSummaryProvider(client *jira.Client) *IssueSummaryProvider {
	return &IssueSummaryProvider{client: client}
}

func (p *IssueSummaryProvider) Fetch(ctx context.Context) (Result, error) {
	if _, err := p.client.TestConnection(ctx); err != nil {
		return Result{}, err
	}

	var critical, high, medium atomic.Int64
	var bugs, tasks, stories, epics atomic.Int64

	count := func(jql string, dst *atomic.Int64) func() error {
		return func() error {
			issues, err := p.client.SearchIssues(ctx, jql, 0)
			if err != nil {
				return err
			}
			dst.Store(int64(len(issues)))
			return nil
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(count("priority = Critical", &critical))
	g.Go(count("priority = High", &high))
	g.Go(count("priority = Medium", &medium))
	g.Go(count("issuetype = Bug", &bugs))
	g.Go(count("issuetype = Task", &tasks))
	g.Go(count("issuetype = Story", &stories))
	g.Go(count("issuetype = Epic", &epics))
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{Payload: widget.IssueSummary{
		Issues: widget.IssueSeverityCounts{
			Critical: int(critical.Load()),
			High:     int(high.Load()),
			Medium:   int(medium.Load()),
		},
		IssuesByType: widget.IssueTypeCounts{
			Bug:   int(bugs.Load()),
			Task:  int(tasks.Load()),
			Story: int(stories.Load()),
			Epic:  int(epics.Load()),
		},
	}}, nil
}
