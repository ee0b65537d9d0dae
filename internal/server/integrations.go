package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"pulseboard/internal/events"
	"pulseboard/internal/repo"
)

func registerIntegrations(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-integrations",
		Method:      http.MethodGet,
		Path:        "/integrations",
		Summary:     "List a user's integrations",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		UserID int64 `query:"user_id" minimum:"1" required:"true"`
	}) (*struct {
		Body IntegrationListResponse `json:"body"`
	}, error) {
		items, err := cfg.Repo.ListIntegrations(ctx, input.UserID)
		if err != nil {
			return nil, handleError("Integration", err)
		}
		return &struct {
			Body IntegrationListResponse `json:"body"`
		}{Body: IntegrationListResponse{Integrations: items}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-integration",
		Method:      http.MethodGet,
		Path:        "/integrations/{id}",
		Summary:     "Get integration",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct {
		Body IntegrationResponse `json:"body"`
	}, error) {
		in, err := cfg.Repo.GetIntegration(ctx, input.ID)
		if err != nil {
			return nil, handleError("Integration", err)
		}
		return &struct {
			Body IntegrationResponse `json:"body"`
		}{Body: IntegrationResponse{Integration: in}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-integration",
		Method:        http.MethodPost,
		Path:          "/integrations",
		Summary:       "Create integration",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body CreateIntegrationRequest `json:"body"`
	}) (*struct {
		Body IntegrationResponse `json:"body"`
	}, error) {
		in, err := cfg.Repo.CreateIntegration(ctx, repo.NewIntegration{
			UserID:   input.Body.UserID,
			Type:     input.Body.Type,
			Name:     input.Body.Name,
			Config:   input.Body.Config,
			IsActive: input.Body.IsActive,
		})
		if err != nil {
			return nil, handleError("Integration", err)
		}
		recordEvent(ctx, cfg, "integration.created", "integration", in.ID, events.EventPayload{"type": in.Type, "name": in.Name})
		return &struct {
			Body IntegrationResponse `json:"body"`
		}{Body: IntegrationResponse{Integration: in}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-integration",
		Method:      http.MethodPut,
		Path:        "/integrations/{id}",
		Summary:     "Update integration",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID   int64                    `path:"id"`
		Body UpdateIntegrationRequest `json:"body"`
	}) (*struct {
		Body IntegrationResponse `json:"body"`
	}, error) {
		in, err := cfg.Repo.UpdateIntegration(ctx, input.ID, repo.IntegrationUpdate{
			Type:     input.Body.Type,
			Name:     input.Body.Name,
			Config:   input.Body.Config,
			IsActive: input.Body.IsActive,
		})
		if err != nil {
			return nil, handleError("Integration", err)
		}
		recordEvent(ctx, cfg, "integration.updated", "integration", in.ID, nil)
		return &struct {
			Body IntegrationResponse `json:"body"`
		}{Body: IntegrationResponse{Integration: in}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-integration",
		Method:        http.MethodDelete,
		Path:          "/integrations/{id}",
		Summary:       "Delete integration",
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID int64 `path:"id"`
	}) (*struct{}, error) {
		if err := cfg.Repo.DeleteIntegration(ctx, input.ID); err != nil {
			return nil, handleError("Integration", err)
		}
		recordEvent(ctx, cfg, "integration.deleted", "integration", input.ID, nil)
		return &struct{}{}, nil
	})
}

func registerEvents(api huma.API, cfg Config) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "List recent change events",
	}, func(ctx context.Context, input *struct {
		Limit int `query:"limit" minimum:"1" maximum:"500" default:"100"`
	}) (*struct {
		Body EventListResponse `json:"body"`
	}, error) {
		items, err := cfg.Repo.ListEvents(ctx, input.Limit)
		if err != nil {
			return nil, handleError("Event", err)
		}
		return &struct {
			Body EventListResponse `json:"body"`
		}{Body: EventListResponse{Events: items}}, nil
	})
}
