package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"pulseboard/internal/events"
	"pulseboard/internal/repo"
)

func registerDashboards(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-dashboards",
		Method:      http.MethodGet,
		Path:        "/dashboards",
		Summary:     "List a user's dashboards",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		UserID int64 `query:"user_id" minimum:"1" required:"true"`
	}) (*struct {
		Body DashboardListResponse `json:"body"`
	}, error) {
		items, err := cfg.Repo.ListDashboards(ctx, input.UserID)
		if err != nil {
			return nil, handleError("Dashboard", err)
		}
		return &struct {
			Body DashboardListResponse `json:"body"`
		}{Body: DashboardListResponse{Dashboards: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-default-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboards/default",
		Summary:     "Get a user's default dashboard",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		UserID int64 `query:"user_id" minimum:"1" required:"true"`
	}) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		d, err := cfg.Repo.GetDefaultDashboard(ctx, input.UserID)
		if err != nil {
			return nil, handleError("Default dashboard", err)
		}
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: DashboardResponse{Dashboard: d}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-dashboard",
		Method:      http.MethodGet,
		Path:        "/dashboards/{id}",
		Summary:     "Get dashboard",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		d, err := cfg.Repo.GetDashboard(ctx, input.ID)
		if err != nil {
			return nil, handleError("Dashboard", err)
		}
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: DashboardResponse{Dashboard: d}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-dashboard",
		Method:        http.MethodPost,
		Path:          "/dashboards",
		Summary:       "Create dashboard",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateDashboardRequest `json:"body"`
	}) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		d, err := cfg.Repo.CreateDashboard(ctx, repo.NewDashboard{
			UserID:    input.Body.UserID,
			Name:      input.Body.Name,
			IsDefault: input.Body.IsDefault,
		})
		if err != nil {
			return nil, handleError("Dashboard", err)
		}
		recordEvent(ctx, cfg, "dashboard.created", "dashboard", d.ID, events.EventPayload{"name": d.Name})
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: DashboardResponse{Dashboard: d}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-dashboard",
		Method:      http.MethodPut,
		Path:        "/dashboards/{id}",
		Summary:     "Update dashboard",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64                  `path:"id"`
		Body UpdateDashboardRequest `json:"body"`
	}) (*struct {
		Body DashboardResponse `json:"body"`
	}, error) {
		d, err := cfg.Repo.UpdateDashboard(ctx, input.ID, repo.DashboardUpdate{
			Name:      input.Body.Name,
			IsDefault: input.Body.IsDefault,
		})
		if err != nil {
			return nil, handleError("Dashboard", err)
		}
		recordEvent(ctx, cfg, "dashboard.updated", "dashboard", d.ID, nil)
		return &struct {
			Body DashboardResponse `json:"body"`
		}{Body: DashboardResponse{Dashboard: d}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-dashboard",
		Method:        http.MethodDelete,
		Path:          "/dashboards/{id}",
		Summary:       "Delete dashboard and its widgets",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct{}, error) {
		// widgets on this dashboard stop refreshing too
		widgets, err := cfg.Repo.ListWidgets(ctx, input.ID)
		if err != nil {
			return nil, handleError("Dashboard", err)
		}
		if err := cfg.Repo.DeleteDashboard(ctx, input.ID); err != nil {
			return nil, handleError("Dashboard", err)
		}
		if cfg.Refresher != nil {
			for _, w := range widgets {
				cfg.Refresher.Untrack(w.ID)
			}
		}
		recordEvent(ctx, cfg, "dashboard.deleted", "dashboard", input.ID, nil)
		return &struct{}{}, nil
	})
}
