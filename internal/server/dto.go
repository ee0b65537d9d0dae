package server

import "pulseboard/internal/domain"

type DashboardResponse struct {
	Dashboard domain.Dashboard `json:"dashboard"`
}

type DashboardListResponse struct {
	Dashboards []domain.Dashboard `json:"dashboards"`
}

type WidgetResponse struct {
	Widget domain.Widget `json:"widget"`
}

type WidgetListResponse struct {
	Widgets []domain.Widget `json:"widgets"`
}

type IntegrationResponse struct {
	Integration domain.Integration `json:"integration"`
}

type IntegrationListResponse struct {
	Integrations []domain.Integration `json:"integrations"`
}

type EventListResponse struct {
	Events []domain.Event `json:"events"`
}

type CreateDashboardRequest struct {
	UserID    int64  `json:"user_id" minimum:"1"`
	Name      string `json:"name" minLength:"1"`
	IsDefault bool   `json:"is_default,omitempty"`
}

type UpdateDashboardRequest struct {
	Name      *string `json:"name,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

type CreateWidgetRequest struct {
	DashboardID     int64  `json:"dashboard_id" minimum:"1"`
	IntegrationID   *int64 `json:"integration_id,omitempty"`
	Type            string `json:"type" minLength:"1" example:"pingdom"`
	Title           string `json:"title" minLength:"1"`
	Config          string `json:"config,omitempty"`
	Layout          string `json:"layout,omitempty"`
	RefreshInterval int    `json:"refresh_interval,omitempty" minimum:"0"`
}

type UpdateWidgetRequest struct {
	IntegrationID   *int64  `json:"integration_id,omitempty"`
	Type            *string `json:"type,omitempty"`
	Title           *string `json:"title,omitempty"`
	Config          *string `json:"config,omitempty"`
	Layout          *string `json:"layout,omitempty"`
	RefreshInterval *int    `json:"refresh_interval,omitempty" minimum:"0"`
}

type CreateIntegrationRequest struct {
	UserID   int64  `json:"user_id" minimum:"1"`
	Type     string `json:"type" minLength:"1" example:"jira"`
	Name     string `json:"name" minLength:"1"`
	Config   string `json:"config,omitempty"`
	IsActive bool   `json:"is_active,omitempty"`
}

type UpdateIntegrationRequest struct {
	Type     *string `json:"type,omitempty"`
	Name     *string `json:"name,omitempty"`
	Config   *string `json:"config,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
