// Package pulseboardsdk is a minimal typed client for the Pulseboard
// HTTP API.
package pulseboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is a minimal Pulseboard HTTP API client.
type Client struct {
	BaseURL    string
	BasePath   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "api",
		Timeout:  10 * time.Second,
	}
}

// Dashboard represents the API dashboard model.
type Dashboard struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at"`
}

// Widget represents the API widget model.
type Widget struct {
	ID              int64  `json:"id"`
	DashboardID     int64  `json:"dashboard_id"`
	IntegrationID   *int64 `json:"integration_id,omitempty"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Config          string `json:"config"`
	Layout          string `json:"layout"`
	RefreshInterval int    `json:"refresh_interval"`
	CreatedAt       string `json:"created_at"`
}

// Integration represents the API integration model.
type Integration struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Config    string `json:"config"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// WidgetData is a fetched widget payload. Data stays raw so callers
// can decode into the shape matching the widget type.
type WidgetData struct {
	Data     json.RawMessage `json:"data"`
	Degraded bool            `json:"degraded,omitempty"`
}

// ConnectionTest is the integration test-connection result.
type ConnectionTest struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// WidgetData fetches the payload for one widget type.
func (c *Client) WidgetData(ctx context.Context, widgetType string) (WidgetData, error) {
	var resp WidgetData
	err := c.do(ctx, http.MethodGet, "widget-data/"+url.PathEscape(widgetType), nil, &resp)
	return resp, err
}

// TestConnection checks the issue-tracker integration. A failed check
// is reported in the result, not as an error.
func (c *Client) TestConnection(ctx context.Context) (ConnectionTest, error) {
	var resp ConnectionTest
	err := c.do(ctx, http.MethodGet, "integration/test-connection", nil, &resp)
	var apiErr *APIError
	if err != nil && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest {
		if jsonErr := json.Unmarshal([]byte(apiErr.Body), &resp); jsonErr == nil {
			return resp, nil
		}
	}
	return resp, err
}

// Dashboards lists a user's dashboards.
func (c *Client) Dashboards(ctx context.Context, userID int64) ([]Dashboard, error) {
	var resp struct {
		Dashboards []Dashboard `json:"dashboards"`
	}
	err := c.do(ctx, http.MethodGet, "dashboards?user_id="+strconv.FormatInt(userID, 10), nil, &resp)
	return resp.Dashboards, err
}

// DefaultDashboard fetches a user's default dashboard.
func (c *Client) DefaultDashboard(ctx context.Context, userID int64) (Dashboard, error) {
	var resp struct {
		Dashboard Dashboard `json:"dashboard"`
	}
	err := c.do(ctx, http.MethodGet, "dashboards/default?user_id="+strconv.FormatInt(userID, 10), nil, &resp)
	return resp.Dashboard, err
}

// CreateDashboard creates a dashboard for a user.
func (c *Client) CreateDashboard(ctx context.Context, userID int64, name string, isDefault bool) (Dashboard, error) {
	body := map[string]any{
		"user_id":    userID,
		"name":       name,
		"is_default": isDefault,
	}
	var resp struct {
		Dashboard Dashboard `json:"dashboard"`
	}
	err := c.do(ctx, http.MethodPost, "dashboards", body, &resp)
	return resp.Dashboard, err
}

// Widgets lists a dashboard's widgets.
func (c *Client) Widgets(ctx context.Context, dashboardID int64) ([]Widget, error) {
	var resp struct {
		Widgets []Widget `json:"widgets"`
	}
	err := c.do(ctx, http.MethodGet, "widgets?dashboard_id="+strconv.FormatInt(dashboardID, 10), nil, &resp)
	return resp.Widgets, err
}

// CreateWidget places a widget on a dashboard.
func (c *Client) CreateWidget(ctx context.Context, dashboardID int64, widgetType, title string) (Widget, error) {
	body := map[string]any{
		"dashboard_id": dashboardID,
		"type":         widgetType,
		"title":        title,
	}
	var resp struct {
		Widget Widget `json:"widget"`
	}
	err := c.do(ctx, http.MethodPost, "widgets", body, &resp)
	return resp.Widget, err
}

// DeleteWidget removes a widget.
func (c *Client) DeleteWidget(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "widgets/"+strconv.FormatInt(id, 10), nil, nil)
}

// Integrations lists a user's integrations.
func (c *Client) Integrations(ctx context.Context, userID int64) ([]Integration, error) {
	var resp struct {
		Integrations []Integration `json:"integrations"`
	}
	err := c.do(ctx, http.MethodGet, "integrations?user_id="+strconv.FormatInt(userID, 10), nil, &resp)
	return resp.Integrations, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(c.path(endpoint), "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) path(p string) string {
	base := strings.Trim(c.BasePath, "/")
	if base == "" {
		return p
	}
	return base + "/" + strings.TrimLeft(p, "/")
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
