package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"pulseboard/internal/domain"
	"pulseboard/internal/events"
	"pulseboard/internal/repo"
	"pulseboard/internal/widget"
)

// syncRefresher keeps the periodic refresh timer aligned with the
// stored widget row. Configured per-type interval overrides win over
// the row's interval, matching startup re-arming. Widgets with an
// unknown type simply stay untracked.
func syncRefresher(cfg Config, w domain.Widget) {
	if cfg.Refresher == nil {
		return
	}
	key, ok := widget.ParseKey(w.Type)
	if !ok {
		cfg.Refresher.Untrack(w.ID)
		return
	}
	interval := w.RefreshInterval
	if sec, ok := cfg.RefreshOverrides[w.Type]; ok {
		interval = sec
	}
	cfg.Refresher.Track(w.ID, key, time.Duration(interval)*time.Second)
}

func registerWidgets(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-widgets",
		Method:      http.MethodGet,
		Path:        "/widgets",
		Summary:     "List a dashboard's widgets",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		DashboardID int64 `query:"dashboard_id" minimum:"1" required:"true"`
	}) (*struct {
		Body WidgetListResponse `json:"body"`
	}, error) {
		items, err := cfg.Repo.ListWidgets(ctx, input.DashboardID)
		if err != nil {
			return nil, handleError("Widget", err)
		}
		return &struct {
			Body WidgetListResponse `json:"body"`
		}{Body: WidgetListResponse{Widgets: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-widget",
		Method:      http.MethodGet,
		Path:        "/widgets/{id}",
		Summary:     "Get widget",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body WidgetResponse `json:"body"`
	}, error) {
		w, err := cfg.Repo.GetWidget(ctx, input.ID)
		if err != nil {
			return nil, handleError("Widget", err)
		}
		return &struct {
			Body WidgetResponse `json:"body"`
		}{Body: WidgetResponse{Widget: w}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-widget",
		Method:        http.MethodPost,
		Path:          "/widgets",
		Summary:       "Create widget",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateWidgetRequest `json:"body"`
	}) (*struct {
		Body WidgetResponse `json:"body"`
	}, error) {
		w, err := cfg.Repo.CreateWidget(ctx, repo.NewWidget{
			DashboardID:     input.Body.DashboardID,
			IntegrationID:   input.Body.IntegrationID,
			Type:            input.Body.Type,
			Title:           input.Body.Title,
			Config:          input.Body.Config,
			Layout:          input.Body.Layout,
			RefreshInterval: input.Body.RefreshInterval,
		})
		if err != nil {
			return nil, handleError("Widget", err)
		}
		syncRefresher(cfg, w)
		recordEvent(ctx, cfg, "widget.created", "widget", w.ID, events.EventPayload{"type": w.Type, "title": w.Title})
		return &struct {
			Body WidgetResponse `json:"body"`
		}{Body: WidgetResponse{Widget: w}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-widget",
		Method:      http.MethodPut,
		Path:        "/widgets/{id}",
		Summary:     "Update widget",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64               `path:"id"`
		Body UpdateWidgetRequest `json:"body"`
	}) (*struct {
		Body WidgetResponse `json:"body"`
	}, error) {
		w, err := cfg.Repo.UpdateWidget(ctx, input.ID, repo.WidgetUpdate{
			IntegrationID:   input.Body.IntegrationID,
			Type:            input.Body.Type,
			Title:           input.Body.Title,
			Config:          input.Body.Config,
			Layout:          input.Body.Layout,
			RefreshInterval: input.Body.RefreshInterval,
		})
		if err != nil {
			return nil, handleError("Widget", err)
		}
		syncRefresher(cfg, w)
		recordEvent(ctx, cfg, "widget.updated", "widget", w.ID, nil)
		return &struct {
			Body WidgetResponse `json:"body"`
		}{Body: WidgetResponse{Widget: w}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-widget",
		Method:        http.MethodDelete,
		Path:          "/widgets/{id}",
		Summary:       "Delete widget",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct{}, error) {
		if err := cfg.Repo.DeleteWidget(ctx, input.ID); err != nil {
			return nil, handleError("Widget", err)
		}
		if cfg.Refresher != nil {
			cfg.Refresher.Untrack(input.ID)
		}
		recordEvent(ctx, cfg, "widget.deleted", "widget", input.ID, nil)
		return &struct{}{}, nil
	})
}
