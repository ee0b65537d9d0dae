package domain

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Integration struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Config    string `json:"config"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Dashboard struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// Widget is a placed widget instance. Type is a wire widget type key;
// Config and Layout are opaque JSON blobs owned by the front-end.
// RefreshInterval is in seconds.
type Widget struct {
	ID              int64  `json:"id"`
	DashboardID     int64  `json:"dashboard_id"`
	IntegrationID   *int64 `json:"integration_id,omitempty"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	Config          string `json:"config"`
	Layout          string `json:"layout"`
	RefreshInterval int    `json:"refresh_interval"`
	CreatedAt       string `json:"created_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	Payload    string `json:"payload_json"`
}
