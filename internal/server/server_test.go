package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net"
	"net/http"
	"testing"
	"time"

	"pulseboard/internal/aggregate"
	"pulseboard/internal/app"
	"pulseboard/internal/cache"
	"pulseboard/internal/config"
	"pulseboard/internal/db"
	"pulseboard/internal/events"
	"pulseboard/internal/jira"
	"pulseboard/internal/migrate"
	"pulseboard/internal/provider"
	"pulseboard/internal/repo"
)

type testServer struct {
	URL    string
	UserID int64
	client *http.Client
	close  func()
}

func (s *testServer) Client() *http.Client { return s.client }
func (s *testServer) Close()               { s.close() }

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	workspace := t.TempDir()
	conn, err := db.Open(workspace)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	r := repo.Repo{DB: conn}
	user, err := app.EnsureDemoUser(context.Background(), r)
	if err != nil {
		t.Fatalf("seed demo user: %v", err)
	}

	// unconfigured client: live widgets fail fast, synthetic ones work
	client := jira.NewClient(config.Jira{})
	registry := provider.DefaultRegistry(client, rand.New(rand.NewSource(1)))
	svc := aggregate.NewService(registry)
	dataCache := cache.New(svc, time.Minute)
	refresher := cache.NewRefresher(dataCache)

	handler, err := New(Config{
		Repo:      r,
		Cache:     dataCache,
		Refresher: refresher,
		Jira:      client,
		Events:    events.Writer{DB: conn},
		BasePath:  "/api",
	})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := &http.Server{Handler: handler}
	go srv.Serve(ln)
	testSrv := &testServer{
		URL:    "http://" + ln.Addr().String(),
		UserID: user.ID,
		client: &http.Client{},
		close: func() {
			srv.Shutdown(context.Background())
			ln.Close()
			refresher.Stop()
			conn.Close()
		},
	}
	t.Cleanup(testSrv.Close)
	return testSrv
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, data
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/health", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	if res.Header.Get("X-Request-Id") == "" {
		t.Fatal("request id header missing")
	}
}

func TestWidgetDataPingdom(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/widget-data/pingdom", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	var body struct {
		Data struct {
			Status       string  `json:"status"`
			Uptime       float64 `json:"uptime"`
			ResponseTime int     `json:"responseTime"`
			DailyStatus  []string
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	if body.Data.Status != "operational" || body.Data.Uptime != 99.98 || body.Data.ResponseTime != 324 {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestWidgetDataInvalidType(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/widget-data/slack", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	if body.Message != "Invalid widget type" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestWidgetDataLiveFailureIs502(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/widget-data/jira", nil)
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	var body struct {
		Message string `json:"message"`
		Detail  string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	if body.Detail != "missing jira credentials" {
		t.Fatalf("error detail = %q", body.Detail)
	}
}

func TestTestConnectionWithoutCredentials(t *testing.T) {
	srv := newTestServer(t)
	res, data := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/integration/test-connection", nil)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d: %s", res.StatusCode, data)
	}
	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	if body.Success || body.Error == "" {
		t.Fatalf("unexpected body: %s", data)
	}
}

func TestDashboardCRUD(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	// demo user already owns the seeded default dashboard
	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboards/default?user_id=1", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("default dashboard status = %d: %s", res.StatusCode, data)
	}

	res, data = doJSON(t, client, http.MethodPost, srv.URL+"/api/dashboards", map[string]any{
		"user_id": srv.UserID,
		"name":    "Ops",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", res.StatusCode, data)
	}
	var created struct {
		Dashboard struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"dashboard"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	if created.Dashboard.Name != "Ops" {
		t.Fatalf("created = %+v", created)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboards?user_id=1", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d: %s", res.StatusCode, data)
	}
	var list struct {
		Dashboards []json.RawMessage `json:"dashboards"`
	}
	if err := json.Unmarshal(data, &list); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	if len(list.Dashboards) != 2 {
		t.Fatalf("got %d dashboards, want 2: %s", len(list.Dashboards), data)
	}

	newName := "Operations"
	res, data = doJSON(t, client, http.MethodPut, srv.URL+"/api/dashboards/2", map[string]any{"name": newName})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d: %s", res.StatusCode, data)
	}

	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/api/dashboards/2", nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d: %s", res.StatusCode, data)
	}
	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/dashboards/2", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("get deleted status = %d: %s", res.StatusCode, data)
	}
}

func TestWidgetLifecycle(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	res, data := doJSON(t, client, http.MethodPost, srv.URL+"/api/widgets", map[string]any{
		"dashboard_id": 1,
		"type":         "pingdom",
		"title":        "Uptime",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d: %s", res.StatusCode, data)
	}
	var created struct {
		Widget struct {
			ID              int64 `json:"id"`
			RefreshInterval int   `json:"refresh_interval"`
		} `json:"widget"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	if created.Widget.RefreshInterval != 300 {
		t.Fatalf("refresh interval default = %d", created.Widget.RefreshInterval)
	}

	res, data = doJSON(t, client, http.MethodGet, srv.URL+"/api/widgets?dashboard_id=1", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d: %s", res.StatusCode, data)
	}

	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/api/widgets/1", nil)
	if res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d: %s", res.StatusCode, data)
	}
	res, data = doJSON(t, client, http.MethodDelete, srv.URL+"/api/widgets/1", nil)
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d: %s", res.StatusCode, data)
	}
}

func TestEventsRecorded(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	doJSON(t, client, http.MethodPost, srv.URL+"/api/dashboards", map[string]any{
		"user_id": srv.UserID,
		"name":    "Audit",
	})

	res, data := doJSON(t, client, http.MethodGet, srv.URL+"/api/events", nil)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("events status = %d: %s", res.StatusCode, data)
	}
	var body struct {
		Events []struct {
			Type       string `json:"type"`
			EntityKind string `json:"entity_kind"`
		} `json:"events"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("decode: %v: %s", err, data)
	}
	found := false
	for _, e := range body.Events {
		if e.Type == "dashboard.created" && e.EntityKind == "dashboard" {
			found = true
		}
	}
	if !found {
		t.Fatalf("dashboard.created event missing: %s", data)
	}
}
