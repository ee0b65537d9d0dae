package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pulseboard/internal/widget"
)

// Config models pulseboard.yml.
type Config struct {
	Server struct {
		Addr     string `yaml:"addr"`
		BasePath string `yaml:"base_path"`
	} `yaml:"server"`
	Jira    Jira `yaml:"jira"`
	Refresh struct {
		// DefaultIntervalSeconds drives periodic widget refresh when a
		// widget row carries no interval of its own.
		DefaultIntervalSeconds int `yaml:"default_interval_seconds"`
		// StaleWindowSeconds is how long a cached payload is reused
		// without revalidation.
		StaleWindowSeconds int `yaml:"stale_window_seconds"`
		// PerWidget overrides the refresh interval for a wire widget
		// type, in seconds.
		PerWidget map[string]int `yaml:"per_widget"`
	} `yaml:"refresh"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// Jira holds the issue-tracker credentials. Values are secrets; never
// log them. Use Presence for diagnostics.
type Jira struct {
	Domain   string `yaml:"domain"`
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
}

// Complete reports whether every credential needed for live calls is set.
func (j Jira) Complete() bool {
	return j.Domain != "" && j.Email != "" && j.APIToken != ""
}

// Presence returns which credentials are configured, for safe logging.
func (j Jira) Presence() map[string]bool {
	return map[string]bool{
		"domain":    j.Domain != "",
		"email":     j.Email != "",
		"api_token": j.APIToken != "",
	}
}

// DefaultRefreshInterval returns the configured default as a duration.
func (c *Config) DefaultRefreshInterval() time.Duration {
	return time.Duration(c.Refresh.DefaultIntervalSeconds) * time.Second
}

// StaleWindow returns the staleness window as a duration.
func (c *Config) StaleWindow() time.Duration {
	return time.Duration(c.Refresh.StaleWindowSeconds) * time.Second
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Refresh.DefaultIntervalSeconds <= 0 {
		return fmt.Errorf("config.refresh.default_interval_seconds must be positive")
	}
	if c.Refresh.StaleWindowSeconds <= 0 {
		return fmt.Errorf("config.refresh.stale_window_seconds must be positive")
	}
	for key, secs := range c.Refresh.PerWidget {
		if _, ok := widget.ParseKey(key); !ok {
			return fmt.Errorf("config.refresh.per_widget references unknown widget type %s", key)
		}
		if secs <= 0 {
			return fmt.Errorf("config.refresh.per_widget.%s must be positive", key)
		}
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "pulseboard.yml")
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; generate one with pbd config init", path)
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadOptional returns the defaults if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Omitted
// fields fall back to the defaults.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	cfg.Server.Addr = ":8080"
	cfg.Server.BasePath = "/api"
	cfg.Refresh.DefaultIntervalSeconds = 300
	cfg.Refresh.StaleWindowSeconds = 60
	cfg.Log.Level = "info"
	return &cfg
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

const defaultTemplate = `server:
  addr: ":8080"
  base_path: "/api"

# Credentials may also come from the environment:
# PULSEBOARD_JIRA_DOMAIN, PULSEBOARD_JIRA_EMAIL, PULSEBOARD_JIRA_API_TOKEN.
jira:
  domain: ""
  email: ""
  api_token: ""

refresh:
  default_interval_seconds: 300
  stale_window_seconds: 60
  per_widget: {}

log:
  level: info
  json: false
`
