package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pulseboard/internal/config"
)

var testCreds = config.Jira{
	Domain:   "example.atlassian.net",
	Email:    "dev@example.com",
	APIToken: "token",
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(testCreds, WithBaseURL(srv.URL), WithHTTPClient(srv.Client())), srv
}

func TestMissingCredentialsShortCircuits(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.creds.APIToken = ""

	_, err := client.TestConnection(context.Background())
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
	if called {
		t.Fatal("remote was called despite missing credentials")
	}
}

func TestTestConnection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/myself" {
			t.Errorf("path = %q", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != testCreds.Email || pass != testCreds.APIToken {
			t.Errorf("basic auth not forwarded")
		}
		json.NewEncoder(w).Encode(map[string]string{
			"accountId":    "abc",
			"displayName":  "Dev",
			"emailAddress": "dev@example.com",
		})
	})

	profile, err := client.TestConnection(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if profile.DisplayName != "Dev" {
		t.Fatalf("profile = %+v", profile)
	}
	if profile.Domain != testCreds.Domain {
		t.Fatalf("domain not set on profile: %+v", profile)
	}
}

func TestSearchIssuesRequest(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("jql") != "order by created DESC" {
			t.Errorf("jql = %q", q.Get("jql"))
		}
		if q.Get("maxResults") != "100" {
			t.Errorf("maxResults = %q", q.Get("maxResults"))
		}
		if q.Get("fields") != searchFields {
			t.Errorf("fields = %q", q.Get("fields"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"issues": []map[string]any{
				{"id": "1", "key": "PB-1", "fields": map[string]any{
					"summary":   "Fix login",
					"status":    map[string]string{"name": "In Progress"},
					"timespent": 1800,
				}},
			},
		})
	})

	issues, err := client.SearchIssues(context.Background(), "order by created DESC", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 1 || issues[0].Key != "PB-1" {
		t.Fatalf("issues = %+v", issues)
	}
	if issues[0].Fields.TimeSpent == nil || *issues[0].Fields.TimeSpent != 1800 {
		t.Fatalf("timespent not parsed: %+v", issues[0].Fields)
	}
	if issues[0].Fields.TimeOriginalEstimate != nil {
		t.Fatal("absent time field should stay nil")
	}
}

func TestRemoteErrorMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"errorMessages": []string{"bad token"},
		})
	})

	_, err := client.TestConnection(context.Background())
	var re *RemoteError
	if !errors.As(err, &re) {
		t.Fatalf("err = %T %v, want RemoteError", err, err)
	}
	if re.Status != http.StatusUnauthorized || re.Message != "bad token" {
		t.Fatalf("remote error = %+v", re)
	}
}

func TestNetworkErrorHidesDetail(t *testing.T) {
	client := NewClient(testCreds, WithBaseURL("http://127.0.0.1:1"))

	_, err := client.TestConnection(context.Background())
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("err = %T %v, want NetworkError", err, err)
	}
	if ne.Error() != "jira: no response from remote" {
		t.Fatalf("network error leaks detail: %q", ne.Error())
	}
}

func TestSearchUsers(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]string{
			{"accountId": "1", "displayName": "Alice"},
			{"accountId": "2", "displayName": "Bob"},
		})
	})

	users, err := client.SearchUsers(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].DisplayName != "Alice" {
		t.Fatalf("users = %+v", users)
	}
}
