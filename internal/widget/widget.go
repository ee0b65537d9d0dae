// Package widget defines the widget-type enumeration and the payload
// shapes served to dashboard widgets.
package widget

import "sort"

// Service identifies the upstream a widget draws its data from.
type Service string

const (
	ServiceJira            Service = "jira"
	ServiceGoogleAnalytics Service = "google_analytics"
	ServiceAtlassian       Service = "atlassian"
	ServicePingdom         Service = "pingdom"
	ServiceMetrics         Service = "metrics"
)

// Kind selects the payload family a widget renders.
type Kind string

const (
	// KindSummary is the per-service status summary payload.
	KindSummary Kind = "summary"
	// KindMatrix is the RACI role/task matrix payload.
	KindMatrix Kind = "raci_matrix"
)

// Key identifies one widget data source. The service is a structured
// field, not something recovered by parsing the wire key.
type Key struct {
	Kind    Kind
	Service Service
}

// wireKeys is the closed set of widget type strings accepted on the wire.
var wireKeys = map[string]Key{
	"jira":                         {Kind: KindSummary, Service: ServiceJira},
	"google_analytics":             {Kind: KindSummary, Service: ServiceGoogleAnalytics},
	"atlassian":                    {Kind: KindSummary, Service: ServiceAtlassian},
	"pingdom":                      {Kind: KindSummary, Service: ServicePingdom},
	"metrics":                      {Kind: KindSummary, Service: ServiceMetrics},
	"raci_matrix_jira":             {Kind: KindMatrix, Service: ServiceJira},
	"raci_matrix_google_analytics": {Kind: KindMatrix, Service: ServiceGoogleAnalytics},
	"raci_matrix_atlassian":        {Kind: KindMatrix, Service: ServiceAtlassian},
	"raci_matrix_pingdom":          {Kind: KindMatrix, Service: ServicePingdom},
}

var keyNames = func() map[Key]string {
	m := make(map[Key]string, len(wireKeys))
	for name, key := range wireKeys {
		m[key] = name
	}
	return m
}()

// ParseKey resolves a wire widget type string to its Key.
func ParseKey(s string) (Key, bool) {
	k, ok := wireKeys[s]
	return k, ok
}

// String returns the wire form of the key, or "" for an unknown key.
func (k Key) String() string {
	return keyNames[k]
}

// Known reports whether the key belongs to the closed enumeration.
func (k Key) Known() bool {
	_, ok := keyNames[k]
	return ok
}

// Keys returns every known key sorted by wire name.
func Keys() []Key {
	names := make([]string, 0, len(wireKeys))
	for name := range wireKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	keys := make([]Key, len(names))
	for i, name := range names {
		keys[i] = wireKeys[name]
	}
	return keys
}
