package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"pulseboard/internal/cache"
	"pulseboard/internal/events"
	"pulseboard/internal/jira"
	"pulseboard/internal/log"
	"pulseboard/internal/metrics"
	"pulseboard/internal/repo"
)

// Config for the HTTP API handler.
type Config struct {
	Repo      repo.Repo
	Cache     *cache.Cache
	Refresher *cache.Refresher
	Jira      *jira.Client
	Events    events.Writer
	BasePath  string
	// RefreshOverrides maps wire widget types to refresh interval
	// seconds, taking precedence over each widget row's interval.
	RefreshOverrides map[string]int
}

// apiError models the flat error envelope every endpoint uses.
type apiError struct {
	status int
	APIErrorBody
}

type APIErrorBody struct {
	Message string `json:"message" example:"Widget not found"`
	Detail  string `json:"error,omitempty"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Message }

func newAPIError(status int, message, detail string) huma.StatusError {
	return &apiError{status: status, APIErrorBody: APIErrorBody{Message: message, Detail: detail}}
}

// New returns an HTTP handler exposing the Pulseboard API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, msg, "")
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		return newAPIError(status, msg, "")
	}

	logger := log.WithComponent("server")

	router := chi.NewRouter()
	router.Use(requestID)
	router.Use(requestMetrics(logger))
	router.Handle("/metrics", metrics.Handler())

	hcfg := huma.DefaultConfig("Pulseboard API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerWidgetData(group, cfg.Cache)
	registerTestConnection(group, cfg.Jira)
	registerDashboards(group, cfg)
	registerWidgets(group, cfg)
	registerIntegrations(group, cfg)
	registerEvents(group, cfg)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

// handleError maps storage errors onto HTTP statuses.
func handleError(entity string, err error) huma.StatusError {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, entity+" not found", "")
	}
	msg := err.Error()
	lowered := strings.ToLower(msg)
	if strings.Contains(lowered, "invalid") || strings.Contains(lowered, "required") || strings.Contains(lowered, "missing") {
		return newAPIError(http.StatusBadRequest, msg, "")
	}
	return newAPIError(http.StatusInternalServerError, "internal error", msg)
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func requestMetrics(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			metrics.APIRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
			if rec.status >= http.StatusInternalServerError {
				logger.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", rec.status).
					Msg("request failed")
			}
		})
	}
}

// recordEvent logs but never propagates event-writer failures.
func recordEvent(ctx context.Context, cfg Config, evtType, kind string, id int64, payload events.EventPayload) {
	if cfg.Events.DB == nil {
		return
	}
	err := cfg.Events.Append(ctx, evtType, kind, strconv.FormatInt(id, 10), payload)
	if err != nil {
		logger := log.WithComponent("server")
		logger.Warn().Err(err).Str("event", evtType).Msg("event append failed")
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			spec, _ = json.Marshal(api.OpenAPI())
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Pulseboard API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}
