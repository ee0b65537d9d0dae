package provider

import (
	"context"
	"strings"
	"sync"

	"pulseboard/internal/jira"
	"pulseboard/internal/widget"
)

const (
	maxMatrixRoles = 5
	maxMatrixTasks = 10

	matrixIssueJQL = "order by created DESC"
)

// MatrixBuilder derives a RACI matrix from live issue-tracker data.
// The two upstream fetches degrade independently: losing users yields
// placeholder roles, losing issues yields an empty task list, and
// losing both yields a minimal fallback matrix. Only missing
// credentials surface as an error.
type MatrixBuilder struct {
	client *jira.Client
}

func NewMatrixBuilder(client *jira.Client) *MatrixBuilder {
	return &MatrixBuilder{client: client}
}

func (b *MatrixBuilder) Fetch(ctx context.Context) (Result, error) {
	if !b.client.Configured() {
		return Result{}, jira.ErrMissingCredentials
	}

	var (
		wg       sync.WaitGroup
		users    []jira.User
		issues   []jira.Issue
		userErr  error
		issueErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		users, userErr = b.client.SearchUsers(ctx, 0)
	}()
	go func() {
		defer wg.Done()
		issues, issueErr = b.client.SearchIssues(ctx, matrixIssueJQL, 0)
	}()
	wg.Wait()

	if userErr != nil && issueErr != nil {
		return Result{Payload: fallbackMatrix(), Degraded: true}, nil
	}
	if userErr != nil {
		users = []jira.User{{DisplayName: "API Error"}, {DisplayName: "No Access"}}
	}
	if issueErr != nil {
		issues = nil
	}

	return Result{
		Payload:  buildMatrix(users, issues),
		Degraded: userErr != nil || issueErr != nil,
	}, nil
}

func buildMatrix(users []jira.User, issues []jira.Issue) widget.RoleTaskMatrix {
	if len(users) > maxMatrixRoles {
		users = users[:maxMatrixRoles]
	}
	roles := make([]string, len(users))
	for i, u := range users {
		roles[i] = u.DisplayName
	}

	// tasks come from the head of the list; status counts cover all issues
	taskIssues := issues
	if len(taskIssues) > maxMatrixTasks {
		taskIssues = taskIssues[:maxMatrixTasks]
	}
	return assembleMatrix(roles, buildTasks(roles, taskIssues), issues)
}

func assembleMatrix(roles []string, tasks []widget.MatrixTask, issues []jira.Issue) widget.RoleTaskMatrix {
	var totalOriginal, totalCurrent, totalSpent int64
	for _, t := range tasks {
		totalOriginal += t.OriginalEstimate
		totalCurrent += t.CurrentEstimate
		totalSpent += t.TimeSpent
	}

	var accuracy float64
	if totalOriginal > 0 && totalSpent > 0 {
		deviation := float64(abs64(totalSpent-totalOriginal)) / float64(totalOriginal) * 100
		accuracy = max(0, 100-deviation)
	}

	var status widget.StatusCounts
	for _, issue := range issues {
		switch classifyStatus(issue.Fields.Status.Name) {
		case statusCompleted:
			status.Completed++
		case statusOnTrack:
			status.OnTrack++
		case statusAtRisk:
			status.AtRisk++
		default:
			status.Delayed++
		}
	}

	return widget.RoleTaskMatrix{
		Roles:  roles,
		Tasks:  tasks,
		Status: status,
		// trend history is not available from the tracker yet
		TaskCompletionTrend: []int{65, 68, 73, 80, 85, 90},
		TimeStats: &widget.TimeAccountingSummary{
			TotalOriginalEstimate: totalOriginal,
			TotalCurrentEstimate:  totalCurrent,
			TotalTimeSpent:        totalSpent,
			EstimateAccuracy:      accuracy,
		},
	}
}

func buildTasks(roles []string, issues []jira.Issue) []widget.MatrixTask {
	tasks := make([]widget.MatrixTask, 0, len(issues))
	for _, issue := range issues {
		original, current, spent := timeFields(issue.Fields)
		tasks = append(tasks, widget.MatrixTask{
			Name:             issue.Fields.Summary,
			Key:              issue.Key,
			Assignments:      positionalAssignments(len(roles)),
			OriginalEstimate: original,
			CurrentEstimate:  current,
			TimeSpent:        spent,
			Progress:         progressFor(original, current, spent),
		})
	}
	return tasks
}

// positionalAssignments spreads the RACI kinds over the roles by
// position: first role is responsible, second accountable, third and
// fourth consulted, the rest informed.
func positionalAssignments(roleCount int) []widget.Assignment {
	as := make([]widget.Assignment, roleCount)
	for i := range as {
		kind := widget.Informed
		switch {
		case i == 0:
			kind = widget.Responsible
		case i == 1:
			kind = widget.Accountable
		case i == 2 || i == 3:
			kind = widget.Consulted
		}
		as[i] = widget.Assignment{RoleIndex: i, Kind: kind}
	}
	return as
}

// timeFields resolves each time dimension, preferring the direct field
// over its aggregate counterpart.
func timeFields(f jira.IssueFields) (original, current, spent int64) {
	pick := func(direct, aggregate *int64) int64 {
		if direct != nil && *direct != 0 {
			return *direct
		}
		if aggregate != nil {
			return *aggregate
		}
		return 0
	}
	original = pick(f.TimeOriginalEstimate, f.AggregateTimeOriginalEstimate)
	current = pick(f.TimeEstimate, f.AggregateTimeEstimate)
	spent = pick(f.TimeSpent, f.AggregateTimeSpent)
	return original, current, spent
}

// progressFor computes spent time against the original estimate,
// falling back to the current estimate, capped at 100.
func progressFor(original, current, spent int64) int {
	switch {
	case original > 0 && spent > 0:
		return capPercent(spent, original)
	case current > 0 && spent > 0:
		return capPercent(spent, current)
	default:
		return 0
	}
}

func capPercent(num, den int64) int {
	p := int((float64(num)/float64(den))*100 + 0.5)
	if p > 100 {
		return 100
	}
	return p
}

type statusBucket int

const (
	statusDelayed statusBucket = iota
	statusCompleted
	statusOnTrack
	statusAtRisk
)

// classifyStatus buckets a workflow status by name. Completed wins
// over on-track, which wins over at-risk; anything unmatched counts as
// delayed.
func classifyStatus(name string) statusBucket {
	s := strings.ToLower(name)
	switch {
	case strings.Contains(s, "done"), strings.Contains(s, "closed"), strings.Contains(s, "resolved"):
		return statusCompleted
	case strings.Contains(s, "progress"), strings.Contains(s, "doing"):
		return statusOnTrack
	case strings.Contains(s, "review"), strings.Contains(s, "testing"):
		return statusAtRisk
	default:
		return statusDelayed
	}
}

// fallbackMatrix is served when both upstream fetches fail. It keeps
// the widget renderable with an explicit error surface.
func fallbackMatrix() widget.RoleTaskMatrix {
	return widget.RoleTaskMatrix{
		Roles: []string{"API Error", "No Access"},
		Tasks: []widget.MatrixTask{{
			Name: "Jira API connection failed",
			Assignments: []widget.Assignment{
				{RoleIndex: 0, Kind: widget.Responsible},
				{RoleIndex: 1, Kind: widget.Accountable},
			},
		}},
		Status:              widget.StatusCounts{Delayed: 1},
		TaskCompletionTrend: []int{0, 0, 0, 0, 0, 0},
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
