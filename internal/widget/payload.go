package widget

import "fmt"

// IssueSummary is the issue-tracker summary payload.
type IssueSummary struct {
	Issues       IssueSeverityCounts `json:"issues"`
	IssuesByType IssueTypeCounts     `json:"issuesByType"`
}

type IssueSeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
}

type IssueTypeCounts struct {
	Bug   int `json:"bug"`
	Task  int `json:"task"`
	Story int `json:"story"`
	Epic  int `json:"epic"`
	Other int `json:"other"`
}

// AnalyticsSummary is the web-analytics payload.
type AnalyticsSummary struct {
	Visits      int     `json:"visits"`
	AverageTime string  `json:"averageTime"`
	VisitsTrend float64 `json:"visitsTrend"`
	TimeTrend   float64 `json:"timeTrend"`
	WeeklyData  []int   `json:"weeklyData"`
}

// MarketplaceSummary is the app-marketplace sales payload.
type MarketplaceSummary struct {
	Sales []MarketplaceSale `json:"sales"`
}

type MarketplaceSale struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// UptimeSummary is the uptime-monitor payload.
type UptimeSummary struct {
	Status              string   `json:"status" enum:"operational,degraded,down"`
	Uptime              float64  `json:"uptime"`
	DailyStatus         []string `json:"dailyStatus"`
	ResponseTime        int      `json:"responseTime"`
	ResponseTrend       int      `json:"responseTrend"`
	ResponseTimeHistory []int    `json:"responseTimeHistory"`
}

// MetricsSummary is the internal-metrics payload.
type MetricsSummary struct {
	ActiveTasks     Metric          `json:"activeTasks"`
	PendingReviews  Metric          `json:"pendingReviews"`
	ConversionRate  Metric          `json:"conversionRate"`
	AverageResponse TextMetric      `json:"averageResponse"`
	TimelineData    MetricsTimeline `json:"timelineData"`
}

type Metric struct {
	Value float64 `json:"value"`
	Trend float64 `json:"trend"`
}

type TextMetric struct {
	Value string  `json:"value"`
	Trend float64 `json:"trend"`
}

type MetricsTimeline struct {
	Tasks      []int `json:"tasks"`
	Completion []int `json:"completion"`
	Volume     []int `json:"volume"`
}

// RelationKind is a RACI relation between a role and a task.
type RelationKind string

const (
	Responsible RelationKind = "R"
	Accountable RelationKind = "A"
	Consulted   RelationKind = "C"
	Informed    RelationKind = "I"
)

// Assignment ties a role (by index into RoleTaskMatrix.Roles) to a
// relation kind for one task.
type Assignment struct {
	RoleIndex int          `json:"roleIndex"`
	Kind      RelationKind `json:"type"`
}

// MatrixTask is one row of a RoleTaskMatrix. Time fields are seconds;
// Progress is a 0-100 percentage, 0 meaning "not computed".
type MatrixTask struct {
	Name             string       `json:"name"`
	Key              string       `json:"key,omitempty"`
	Assignments      []Assignment `json:"assignments"`
	OriginalEstimate int64        `json:"originalEstimate,omitempty"`
	CurrentEstimate  int64        `json:"currentEstimate,omitempty"`
	TimeSpent        int64        `json:"timeSpent,omitempty"`
	Progress         int          `json:"progress,omitempty"`
}

// AssignmentFor returns the relation kind for a role on this task.
// Duplicates are tolerated; the first match wins.
func (t MatrixTask) AssignmentFor(roleIndex int) (RelationKind, bool) {
	for _, a := range t.Assignments {
		if a.RoleIndex == roleIndex {
			return a.Kind, true
		}
	}
	return "", false
}

// StatusCounts buckets issues by delivery health.
type StatusCounts struct {
	OnTrack   int `json:"onTrack"`
	AtRisk    int `json:"atRisk"`
	Delayed   int `json:"delayed"`
	Completed int `json:"completed"`
}

// TimeAccountingSummary aggregates the time fields across a matrix's
// tasks. Totals are seconds; EstimateAccuracy is a percentage.
type TimeAccountingSummary struct {
	TotalOriginalEstimate int64   `json:"totalOriginalEstimate"`
	TotalCurrentEstimate  int64   `json:"totalCurrentEstimate"`
	TotalTimeSpent        int64   `json:"totalTimeSpent"`
	EstimateAccuracy      float64 `json:"estimateAccuracy"`
}

// RoleTaskMatrix is the RACI payload. Role index is the addressing key
// for assignments.
type RoleTaskMatrix struct {
	Roles               []string               `json:"roles"`
	Tasks               []MatrixTask           `json:"tasks"`
	Status              StatusCounts           `json:"status"`
	TaskCompletionTrend []int                  `json:"taskCompletionTrend"`
	TimeStats           *TimeAccountingSummary `json:"timeStats,omitempty"`
}

// Validate checks the role-index invariant on every assignment.
func (m RoleTaskMatrix) Validate() error {
	for ti, task := range m.Tasks {
		for _, a := range task.Assignments {
			if a.RoleIndex < 0 || a.RoleIndex >= len(m.Roles) {
				return fmt.Errorf("task %d (%s): assignment role index %d out of range [0,%d)",
					ti, task.Name, a.RoleIndex, len(m.Roles))
			}
		}
	}
	return nil
}
