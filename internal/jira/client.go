// Package jira wraps the issue-tracker REST API behind authenticated
// connection-test, issue-search, and user-search calls.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"pulseboard/internal/config"
	"pulseboard/internal/log"
)

// searchFields is the whitelisted field set requested on every issue
// search, covering both top-level and sub-task-aggregated time tracking.
const searchFields = "summary,status,assignee,issuetype,priority," +
	"timeoriginalestimate,timeestimate,timespent," +
	"aggregatetimespent,aggregatetimeestimate,aggregatetimeoriginalestimate"

const defaultMaxResults = 100

// Profile is the identity returned by the connection test.
type Profile struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
	Domain       string `json:"domain,omitempty"`
}

// User is one directory entry from user search.
type User struct {
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress,omitempty"`
}

// Issue is a search result with the whitelisted fields parsed. Time
// fields are seconds; nil means the remote reported no value.
type Issue struct {
	ID     string      `json:"id"`
	Key    string      `json:"key"`
	Fields IssueFields `json:"fields"`
}

type IssueFields struct {
	Summary  string      `json:"summary"`
	Status   NamedField  `json:"status"`
	Assignee *UserRef    `json:"assignee,omitempty"`
	Type     NamedField  `json:"issuetype"`
	Priority *NamedField `json:"priority,omitempty"`

	TimeOriginalEstimate *int64 `json:"timeoriginalestimate,omitempty"`
	TimeEstimate         *int64 `json:"timeestimate,omitempty"`
	TimeSpent            *int64 `json:"timespent,omitempty"`

	AggregateTimeOriginalEstimate *int64 `json:"aggregatetimeoriginalestimate,omitempty"`
	AggregateTimeEstimate         *int64 `json:"aggregatetimeestimate,omitempty"`
	AggregateTimeSpent            *int64 `json:"aggregatetimespent,omitempty"`
}

type NamedField struct {
	Name string `json:"name"`
}

type UserRef struct {
	DisplayName string `json:"displayName"`
}

// Client calls the remote with HTTP basic auth. Credentials are sent
// on every request; nothing is cached between calls.
type Client struct {
	creds      config.Jira
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

type Option func(*Client)

// WithHTTPClient overrides the transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the derived https://<domain>/rest/api/3 base,
// mainly for tests against a local stub.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = base }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient builds an adapter from credentials. The client is usable
// even with incomplete credentials; calls fail fast with
// ErrMissingCredentials before touching the network.
func NewClient(creds config.Jira, opts ...Option) *Client {
	c := &Client{
		creds:      creds,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     log.WithComponent("jira"),
	}
	if creds.Domain != "" {
		c.baseURL = fmt.Sprintf("https://%s/rest/api/3", creds.Domain)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether the full credential triple is present.
func (c *Client) Configured() bool {
	return c.creds.Complete()
}

// TestConnection performs an authenticated identity check.
func (c *Client) TestConnection(ctx context.Context) (Profile, error) {
	var p Profile
	if err := c.get(ctx, "/myself", nil, &p); err != nil {
		return Profile{}, err
	}
	p.Domain = c.creds.Domain
	c.logger.Debug().Str("account_id", p.AccountID).Msg("connection test succeeded")
	return p, nil
}

// SearchIssues runs a JQL search capped at maxResults (default 100).
func (c *Client) SearchIssues(ctx context.Context, jql string, maxResults int) ([]Issue, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	params := url.Values{
		"jql":        {jql},
		"maxResults": {strconv.Itoa(maxResults)},
		"fields":     {searchFields},
	}
	var body struct {
		Issues []Issue `json:"issues"`
	}
	if err := c.get(ctx, "/search", params, &body); err != nil {
		return nil, err
	}
	c.logger.Debug().Str("jql", jql).Int("count", len(body.Issues)).Msg("issue search")
	return body.Issues, nil
}

// SearchUsers returns up to maxResults user profiles (default 100) in
// whatever order the remote picked.
func (c *Client) SearchUsers(ctx context.Context, maxResults int) ([]User, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	params := url.Values{"maxResults": {strconv.Itoa(maxResults)}}
	var users []User
	if err := c.get(ctx, "/users/search", params, &users); err != nil {
		return nil, err
	}
	c.logger.Debug().Int("count", len(users)).Msg("user search")
	return users, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if !c.creds.Complete() {
		// Presence booleans only; the values themselves are secrets.
		c.logger.Warn().
			Fields(map[string]any{"credentials": c.creds.Presence()}).
			Msg("call refused: incomplete credentials")
		return ErrMissingCredentials
	}
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.creds.Email, c.creds.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("endpoint", endpoint).Msg("request failed")
		return &NetworkError{err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.remoteError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("jira: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) remoteError(resp *http.Response) error {
	re := &RemoteError{Status: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		ErrorMessages []string `json:"errorMessages"`
		Message       string   `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		switch {
		case len(body.ErrorMessages) > 0:
			re.Message = body.ErrorMessages[0]
		case body.Message != "":
			re.Message = body.Message
		}
	}
	c.logger.Warn().Int("status", re.Status).Str("message", re.Message).Msg("remote error")
	return re
}
