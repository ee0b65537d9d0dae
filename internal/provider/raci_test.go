package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/config"
	"pulseboard/internal/jira"
	"pulseboard/internal/widget"
)

func i64(v int64) *int64 { return &v }

func TestPositionalAssignments(t *testing.T) {
	as := positionalAssignments(6)
	require.Len(t, as, 6)
	assert.Equal(t, widget.Responsible, as[0].Kind)
	assert.Equal(t, widget.Accountable, as[1].Kind)
	assert.Equal(t, widget.Consulted, as[2].Kind)
	assert.Equal(t, widget.Consulted, as[3].Kind)
	assert.Equal(t, widget.Informed, as[4].Kind)
	assert.Equal(t, widget.Informed, as[5].Kind)
	for i, a := range as {
		assert.Equal(t, i, a.RoleIndex)
	}
}

func TestTimeFieldsPreferDirect(t *testing.T) {
	original, current, spent := timeFields(jira.IssueFields{
		TimeOriginalEstimate:          i64(3600),
		AggregateTimeOriginalEstimate: i64(7200),
		AggregateTimeEstimate:         i64(1200),
		TimeSpent:                     i64(1800),
	})
	assert.Equal(t, int64(3600), original, "direct beats aggregate")
	assert.Equal(t, int64(1200), current, "aggregate fills missing direct")
	assert.Equal(t, int64(1800), spent)

	original, current, spent = timeFields(jira.IssueFields{})
	assert.Zero(t, original)
	assert.Zero(t, current)
	assert.Zero(t, spent)
}

func TestProgressFor(t *testing.T) {
	assert.Equal(t, 50, progressFor(3600, 0, 1800))
	assert.Equal(t, 100, progressFor(3600, 0, 7200), "capped at 100")
	assert.Equal(t, 25, progressFor(0, 7200, 1800), "falls back to current estimate")
	assert.Equal(t, 0, progressFor(3600, 3600, 0), "no time spent")
	assert.Equal(t, 0, progressFor(0, 0, 1800), "no estimate at all")
}

func TestClassifyStatus(t *testing.T) {
	cases := map[string]statusBucket{
		"Done":              statusCompleted,
		"Closed":            statusCompleted,
		"Resolved upstream": statusCompleted,
		"In Progress":       statusOnTrack,
		"doing":             statusOnTrack,
		"Code Review":       statusAtRisk,
		"Testing":           statusAtRisk,
		"Open":              statusDelayed,
		"Backlog":           statusDelayed,
		"":                  statusDelayed,
	}
	for name, want := range cases {
		assert.Equal(t, want, classifyStatus(name), "status %q", name)
	}
}

func TestBuildMatrixCaps(t *testing.T) {
	users := make([]jira.User, 7)
	for i := range users {
		users[i] = jira.User{DisplayName: "User"}
	}
	issues := make([]jira.Issue, 12)
	for i := range issues {
		issues[i] = jira.Issue{
			Key:    "PB-1",
			Fields: jira.IssueFields{Summary: "t", Status: jira.NamedField{Name: "Done"}},
		}
	}

	m := buildMatrix(users, issues)
	assert.Len(t, m.Roles, 5)
	assert.Len(t, m.Tasks, 10)
	assert.Equal(t, 12, m.Status.Completed, "status counts cover every issue, not just matrix tasks")
	require.NoError(t, m.Validate())
	for _, task := range m.Tasks {
		assert.Len(t, task.Assignments, 5)
	}
}

func TestBuildMatrixTimeStats(t *testing.T) {
	issues := []jira.Issue{
		{Fields: jira.IssueFields{
			Summary:              "a",
			Status:               jira.NamedField{Name: "In Progress"},
			TimeOriginalEstimate: i64(3600),
			TimeSpent:            i64(3600),
		}},
		{Fields: jira.IssueFields{
			Summary:              "b",
			Status:               jira.NamedField{Name: "Open"},
			TimeOriginalEstimate: i64(3600),
			TimeSpent:            i64(3600),
		}},
	}
	m := buildMatrix([]jira.User{{DisplayName: "Dev"}}, issues)
	require.NotNil(t, m.TimeStats)
	assert.Equal(t, int64(7200), m.TimeStats.TotalOriginalEstimate)
	assert.Equal(t, int64(7200), m.TimeStats.TotalTimeSpent)
	assert.Equal(t, float64(100), m.TimeStats.EstimateAccuracy, "perfect estimate is 100")
	assert.Equal(t, 1, m.Status.OnTrack)
	assert.Equal(t, 1, m.Status.Delayed)
	assert.Equal(t, []int{65, 68, 73, 80, 85, 90}, m.TaskCompletionTrend)
}

func TestAccuracyZeroWithoutEstimates(t *testing.T) {
	m := buildMatrix(nil, []jira.Issue{{Fields: jira.IssueFields{Summary: "a", TimeSpent: i64(1800)}}})
	require.NotNil(t, m.TimeStats)
	assert.Zero(t, m.TimeStats.EstimateAccuracy)
}

func newRaciClient(t *testing.T, handler http.HandlerFunc) *jira.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := config.Jira{Domain: "x.atlassian.net", Email: "e@x", APIToken: "t"}
	return jira.NewClient(creds, jira.WithBaseURL(srv.URL), jira.WithHTTPClient(srv.Client()))
}

func TestMatrixFetchMissingCredentials(t *testing.T) {
	b := NewMatrixBuilder(jira.NewClient(config.Jira{}))
	_, err := b.Fetch(context.Background())
	assert.ErrorIs(t, err, jira.ErrMissingCredentials)
}

func TestMatrixFetchBothUpstreamsFail(t *testing.T) {
	client := newRaciClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res, err := NewMatrixBuilder(client).Fetch(context.Background())
	require.NoError(t, err, "total upstream loss degrades, never errors")
	assert.True(t, res.Degraded)

	m, ok := res.Payload.(widget.RoleTaskMatrix)
	require.True(t, ok)
	assert.Equal(t, []string{"API Error", "No Access"}, m.Roles)
	require.Len(t, m.Tasks, 1)
	assert.Equal(t, widget.StatusCounts{Delayed: 1}, m.Status)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0}, m.TaskCompletionTrend)
	require.NoError(t, m.Validate())
}

func TestMatrixFetchUsersFail(t *testing.T) {
	client := newRaciClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/users") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"issues": []map[string]any{{
				"key": "PB-1",
				"fields": map[string]any{
					"summary": "Fix login",
					"status":  map[string]string{"name": "Done"},
				},
			}},
		})
	})

	res, err := NewMatrixBuilder(client).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Degraded)

	m := res.Payload.(widget.RoleTaskMatrix)
	assert.Equal(t, []string{"API Error", "No Access"}, m.Roles, "placeholder roles on user fetch failure")
	require.Len(t, m.Tasks, 1)
	assert.Equal(t, "Fix login", m.Tasks[0].Name)
	assert.Equal(t, 1, m.Status.Completed)
}

func TestMatrixFetchIssuesFail(t *testing.T) {
	client := newRaciClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/search") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode([]map[string]string{
			{"accountId": "1", "displayName": "Alice"},
		})
	})

	res, err := NewMatrixBuilder(client).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Degraded)

	m := res.Payload.(widget.RoleTaskMatrix)
	assert.Equal(t, []string{"Alice"}, m.Roles)
	assert.Empty(t, m.Tasks)
	assert.Equal(t, widget.StatusCounts{}, m.Status)
}

func TestMatrixFetchHealthy(t *testing.T) {
	client := newRaciClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/users") {
			json.NewEncoder(w).Encode([]map[string]string{
				{"accountId": "1", "displayName": "Alice"},
				{"accountId": "2", "displayName": "Bob"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"issues": []map[string]any{{
				"key": "PB-7",
				"fields": map[string]any{
					"summary":              "Ship dashboard",
					"status":               map[string]string{"name": "In Progress"},
					"timeoriginalestimate": 3600,
					"timespent":            1800,
				},
			}},
		})
	})

	res, err := NewMatrixBuilder(client).Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Degraded)

	m := res.Payload.(widget.RoleTaskMatrix)
	assert.Equal(t, []string{"Alice", "Bob"}, m.Roles)
	require.Len(t, m.Tasks, 1)
	assert.Equal(t, "PB-7", m.Tasks[0].Key)
	assert.Equal(t, 50, m.Tasks[0].Progress)
	assert.Equal(t, 1, m.Status.OnTrack)
}
