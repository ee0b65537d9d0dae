package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"pulseboard/internal/cache"
	"pulseboard/internal/jira"
	"pulseboard/internal/widget"
)

// WidgetDataResponse wraps a fetched widget payload.
type WidgetDataResponse struct {
	Data     any  `json:"data"`
	Degraded bool `json:"degraded,omitempty"`
}

// ConnectionTestResponse mirrors the integration test-connection
// contract: success with profile data, or failure with a message.
type ConnectionTestResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func registerWidgetData(api huma.API, c *cache.Cache) {
	huma.Register(api, huma.Operation{
		OperationID: "get-widget-data",
		Method:      http.MethodGet,
		Path:        "/widget-data/{type}",
		Summary:     "Fetch widget data",
		Errors:      []int{http.StatusBadRequest, http.StatusBadGateway},
	}, func(ctx context.Context, input *struct {
		Type string `path:"type" example:"raci_matrix_jira"`
	}) (*struct {
		Body WidgetDataResponse `json:"body"`
	}, error) {
		key, ok := widget.ParseKey(input.Type)
		if !ok {
			return nil, newAPIError(http.StatusBadRequest, "Invalid widget type", "")
		}
		env := c.Fetch(ctx, key)
		if !env.OK() {
			return nil, newAPIError(http.StatusBadGateway,
				"An error occurred while fetching "+input.Type+" data", env.Err)
		}
		return &struct {
			Body WidgetDataResponse `json:"body"`
		}{Body: WidgetDataResponse{Data: env.Payload, Degraded: env.Degraded}}, nil
	})
}

func registerTestConnection(api huma.API, client *jira.Client) {
	huma.Register(api, huma.Operation{
		OperationID: "test-connection",
		Method:      http.MethodGet,
		Path:        "/integration/test-connection",
		Summary:     "Test the issue-tracker connection",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Status int                    `json:"-"`
		Body   ConnectionTestResponse `json:"body"`
	}, error) {
		out := &struct {
			Status int                    `json:"-"`
			Body   ConnectionTestResponse `json:"body"`
		}{}
		profile, err := client.TestConnection(ctx)
		if err != nil {
			out.Status = http.StatusBadRequest
			out.Body = ConnectionTestResponse{Success: false, Error: err.Error()}
			return out, nil
		}
		out.Status = http.StatusOK
		out.Body = ConnectionTestResponse{Success: true, Data: profile}
		return out, nil
	})
}
