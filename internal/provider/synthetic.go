package provider

import (
	"context"
	"math/rand"
	"sync"

	"pulseboard/internal/widget"
)

// Synthetic builds the providers for widget types without a live
// integration. Shapes are fixed; the matrix variants salt their status
// counts from the injected rand source so repeated fetches look alive.
type Synthetic struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSynthetic(rng *rand.Rand) *Synthetic {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Synthetic{rng: rng}
}

func (s *Synthetic) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

func (s *Synthetic) Analytics() Provider {
	return Func(func(context.Context) (Result, error) {
		return Result{Payload: widget.AnalyticsSummary{
			Visits:      4392,
			AverageTime: "2:14",
			VisitsTrend: 8.1,
			TimeTrend:   -1.2,
			WeeklyData:  []int{90, 80, 85, 70, 55, 60, 45, 50, 35, 40, 30, 25, 20, 25, 15, 10},
		}}, nil
	})
}

func (s *Synthetic) Marketplace() Provider {
	return Func(func(context.Context) (Result, error) {
		return Result{Payload: widget.MarketplaceSummary{
			Sales: []widget.MarketplaceSale{
				{Name: "App Connector Pro", Value: 14382},
				{Name: "Team Calendar", Value: 8741},
				{Name: "Project Visualizer", Value: 6382},
				{Name: "Advanced Reports", Value: 4127},
				{Name: "Custom Fields+", Value: 3845},
			},
		}}, nil
	})
}

func (s *Synthetic) Uptime() Provider {
	return Func(func(context.Context) (Result, error) {
		return Result{Payload: widget.UptimeSummary{
			Status:              "operational",
			Uptime:              99.98,
			DailyStatus:         []string{"success", "success", "success", "warning", "success", "success", "success"},
			ResponseTime:        324,
			ResponseTrend:       -12,
			ResponseTimeHistory: []int{15, 10, 12, 8, 15, 18, 16, 14, 10, 8, 12, 14, 10, 6, 9, 11, 7, 10, 8, 12, 10},
		}}, nil
	})
}

func (s *Synthetic) Metrics() Provider {
	return Func(func(context.Context) (Result, error) {
		return Result{Payload: widget.MetricsSummary{
			ActiveTasks:     widget.Metric{Value: 128, Trend: 12},
			PendingReviews:  widget.Metric{Value: 25, Trend: 8},
			ConversionRate:  widget.Metric{Value: 3.2, Trend: 0.8},
			AverageResponse: widget.TextMetric{Value: "1.4h", Trend: -12},
			TimelineData: widget.MetricsTimeline{
				Tasks:      []int{100, 90, 120, 100, 80, 60, 70, 50, 30},
				Completion: []int{130, 140, 120, 110, 130, 120, 100, 90, 85},
				Volume:     []int{30, 40, 50, 60, 70, 65, 75, 80},
			},
		}}, nil
	})
}

// Matrix returns the synthetic RACI provider for one service.
func (s *Synthetic) Matrix(service widget.Service) Provider {
	return Func(func(context.Context) (Result, error) {
		roles, tasks := matrixTemplate(service)
		trend := make([]int, 8)
		for i := range trend {
			trend[i] = 50 + s.intn(50)
		}
		return Result{Payload: widget.RoleTaskMatrix{
			Roles: roles,
			Tasks: tasks,
			Status: widget.StatusCounts{
				OnTrack:   5 + s.intn(10),
				AtRisk:    1 + s.intn(5),
				Delayed:   s.intn(3),
				Completed: 10 + s.intn(15),
			},
			TaskCompletionTrend: trend,
		}}, nil
	})
}

func matrixTemplate(service widget.Service) ([]string, []widget.MatrixTask) {
	switch service {
	case widget.ServiceJira:
		return []string{"Product Owner", "Scrum Master", "Developer", "QA Engineer", "UX Designer", "DevOps"},
			[]widget.MatrixTask{
				{Name: "Backlog Grooming", Assignments: []widget.Assignment{a(0, "R"), a(1, "A"), a(2, "C"), a(4, "C")}},
				{Name: "Sprint Planning", Assignments: []widget.Assignment{a(0, "A"), a(1, "R"), a(2, "C"), a(3, "C")}},
				{Name: "Feature Development", Assignments: []widget.Assignment{a(2, "R"), a(0, "A"), a(4, "C"), a(1, "I")}},
				{Name: "Code Review", Assignments: []widget.Assignment{a(2, "R"), a(2, "A"), a(1, "I")}},
				{Name: "QA Testing", Assignments: []widget.Assignment{a(3, "R"), a(0, "A"), a(2, "C")}},
				{Name: "Deployment", Assignments: []widget.Assignment{a(5, "R"), a(2, "A"), a(3, "C"), a(0, "I"), a(1, "I")}},
			}
	case widget.ServiceGoogleAnalytics:
		return []string{"Marketing Manager", "Data Analyst", "Web Developer", "SEO Specialist", "Content Creator"},
			[]widget.MatrixTask{
				{Name: "Campaign Setup", Assignments: []widget.Assignment{a(0, "R"), a(1, "C"), a(3, "C")}},
				{Name: "Tracking Implementation", Assignments: []widget.Assignment{a(2, "R"), a(1, "A"), a(0, "C")}},
				{Name: "Data Analysis", Assignments: []widget.Assignment{a(1, "R"), a(0, "A"), a(3, "C")}},
				{Name: "Reporting", Assignments: []widget.Assignment{a(1, "R"), a(0, "A"), a(4, "I")}},
				{Name: "Content Strategy", Assignments: []widget.Assignment{a(4, "R"), a(0, "A"), a(1, "C"), a(3, "C")}},
			}
	case widget.ServiceAtlassian:
		return []string{"Product Manager", "Developer Lead", "Developer", "Support", "Marketing", "Sales"},
			[]widget.MatrixTask{
				{Name: "App Planning", Assignments: []widget.Assignment{a(0, "R"), a(1, "A"), a(2, "C")}},
				{Name: "Feature Development", Assignments: []widget.Assignment{a(2, "R"), a(1, "A"), a(0, "C")}},
				{Name: "App Store Listing", Assignments: []widget.Assignment{a(4, "R"), a(0, "A"), a(5, "C")}},
				{Name: "Customer Support", Assignments: []widget.Assignment{a(3, "R"), a(0, "A"), a(2, "C")}},
				{Name: "Sales Optimization", Assignments: []widget.Assignment{a(5, "R"), a(0, "A"), a(4, "C")}},
			}
	case widget.ServicePingdom:
		return []string{"DevOps Lead", "System Admin", "Developer", "Support Engineer", "Product Owner"},
			[]widget.MatrixTask{
				{Name: "Monitor Configuration", Assignments: []widget.Assignment{a(1, "R"), a(0, "A"), a(4, "C")}},
				{Name: "Alert Setup", Assignments: []widget.Assignment{a(1, "R"), a(0, "A"), a(3, "C"), a(4, "I")}},
				{Name: "Incident Response", Assignments: []widget.Assignment{a(3, "R"), a(0, "A"), a(1, "C"), a(2, "C")}},
				{Name: "Performance Tuning", Assignments: []widget.Assignment{a(2, "R"), a(0, "A"), a(1, "C")}},
				{Name: "Reporting", Assignments: []widget.Assignment{a(0, "R"), a(4, "A"), a(3, "C")}},
			}
	default:
		return []string{"Manager", "Team Lead", "Developer", "QA", "DevOps"},
			[]widget.MatrixTask{
				{Name: "Project Planning", Assignments: []widget.Assignment{a(0, "R"), a(1, "A"), a(2, "C")}},
				{Name: "Development", Assignments: []widget.Assignment{a(2, "R"), a(1, "A"), a(3, "C")}},
				{Name: "Testing", Assignments: []widget.Assignment{a(3, "R"), a(1, "A"), a(2, "C")}},
			}
	}
}

func a(role int, kind widget.RelationKind) widget.Assignment {
	return widget.Assignment{RoleIndex: role, Kind: kind}
}
