// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for supportdesk.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.supportdesk/config.toml
//   - ~/.supportdesk/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeranaias/supportdesk-tui/internal/logging"
	"github.com/jeranaias/supportdesk-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete supportdesk configuration.
type Config struct {
	// API describes the support service
	API APIConfig `toml:"api" json:"api"`

	// Chat configures the chat view
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Polling configures background refresh of the data views
	Polling PollingConfig `toml:"polling" json:"polling"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Log configuration
	Log LogConfig `toml:"log" json:"log"`

	// Server configures the bundled demo service
	Server ServerConfig `toml:"server" json:"server"`
}

// APIConfig contains the support service endpoints.
type APIConfig struct {
	// BaseURL is the service root, e.g. http://127.0.0.1:8000
	BaseURL string `toml:"base_url" json:"base_url" env:"SUPPORTDESK_API_URL"`
	// TimeoutSecs bounds snapshot requests
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs" env:"SUPPORTDESK_TIMEOUT"`

	DashboardPath string `toml:"dashboard_path" json:"dashboard_path"`
	TicketsPath   string `toml:"tickets_path" json:"tickets_path"`
	AgentsPath    string `toml:"agents_path" json:"agents_path"`
	SettingsPath  string `toml:"settings_path" json:"settings_path"`
	HealthPath    string `toml:"health_path" json:"health_path"`

	// Routes maps each agent to its POST path
	Routes RoutesConfig `toml:"routes" json:"routes"`
}

// RoutesConfig holds one path per agent target.
type RoutesConfig struct {
	Support     string `toml:"support" json:"support"`
	Diagnostics string `toml:"diagnostics" json:"diagnostics"`
	Escalation  string `toml:"escalation" json:"escalation"`
	Feedback    string `toml:"feedback" json:"feedback"`
}

// ChatConfig contains chat view settings.
type ChatConfig struct {
	// Greeting is the first assistant turn of every session
	Greeting string `toml:"greeting" json:"greeting"`
	// CompanyName is shown in the chat header
	CompanyName string `toml:"company_name" json:"company_name"`
	// RequestTimeoutSecs bounds one agent call
	RequestTimeoutSecs int `toml:"request_timeout_secs" json:"request_timeout_secs" env:"SUPPORTDESK_REQUEST_TIMEOUT"`
}

// PollingConfig contains refresh intervals in seconds.
type PollingConfig struct {
	DashboardSecs int `toml:"dashboard_secs" json:"dashboard_secs"`
	TicketsSecs   int `toml:"tickets_secs" json:"tickets_secs"`
	AgentsSecs    int `toml:"agents_secs" json:"agents_secs"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is "auto", "dark" or "light"
	Theme string `toml:"theme" json:"theme" env:"SUPPORTDESK_THEME"`
	// Markdown renders assistant replies with glamour
	Markdown bool `toml:"markdown" json:"markdown"`
	// Mouse enables wheel scrolling in the chat viewport
	Mouse bool `toml:"mouse" json:"mouse"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level" env:"SUPPORTDESK_LOG_LEVEL"`
	// File receives the TUI log (empty = ~/.supportdesk/supportdesk.log)
	File string `toml:"file" json:"file" env:"SUPPORTDESK_LOG_FILE"`
}

// ServerConfig contains demo service configuration.
type ServerConfig struct {
	// Addr is the listen address
	Addr string `toml:"addr" json:"addr" env:"SUPPORTDESK_SERVER_ADDR"`
	// DBPath is the SQLite database file (empty = ~/.supportdesk/supportdesk.db)
	DBPath string `toml:"db_path" json:"db_path" env:"SUPPORTDESK_DB_PATH"`
	// RateLimit is the sustained requests per second per client
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// Burst is the request burst per client
	Burst int `toml:"burst" json:"burst"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// DefaultGreeting opens every chat session.
const DefaultGreeting = "Hello! I'm the support assistant. How can I help you today?"

// Default returns a configuration with all default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://127.0.0.1:8000",
			TimeoutSecs:   10,
			DashboardPath: "/api/dashboard",
			TicketsPath:   "/api/tickets",
			AgentsPath:    "/api/agents",
			SettingsPath:  "/api/settings",
			HealthPath:    "/health",
			Routes: RoutesConfig{
				Support:     "/api/atendimento",
				Diagnostics: "/api/diagnostico",
				Escalation:  "/api/escalonamento",
				Feedback:    "/api/feedback",
			},
		},
		Chat: ChatConfig{
			Greeting:           DefaultGreeting,
			CompanyName:        "SupportAI",
			RequestTimeoutSecs: 60,
		},
		Polling: PollingConfig{
			DashboardSecs: 30,
			TicketsSecs:   30,
			AgentsSecs:    60,
		},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
			Mouse:    true,
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8000",
			RateLimit: 20,
			Burst:     40,
		},
	}
}

// =============================================================================
// DURATION ACCESSORS
// =============================================================================

// Timeout returns the snapshot request timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// RequestTimeout returns the agent call timeout.
func (c ChatConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

// Dashboard returns the dashboard refresh interval.
func (p PollingConfig) Dashboard() time.Duration {
	return time.Duration(p.DashboardSecs) * time.Second
}

// Tickets returns the ticket list refresh interval.
func (p PollingConfig) Tickets() time.Duration {
	return time.Duration(p.TicketsSecs) * time.Second
}

// Agents returns the agent roster refresh interval.
func (p PollingConfig) Agents() time.Duration {
	return time.Duration(p.AgentsSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the supportdesk configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".supportdesk"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultLogPath returns the TUI log file path.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "supportdesk.log"), nil
}

// DefaultDBPath returns the demo service database path.
func DefaultDBPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "supportdesk.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	var loadErr error

	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err != nil {
			loadErr = err
			break
		}
		return cfg, nil
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}

	// Return defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
// Missing keys keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		// Default to TOML
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies environment overrides, defaults and validation.
func (c *Config) finish() error {
	if err := c.ApplyEnvOverrides(); err != nil {
		return err
	}
	if err := fillDefaults(c); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	// API
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.TimeoutSecs == 0 {
		cfg.API.TimeoutSecs = defaults.API.TimeoutSecs
	}
	fillString(&cfg.API.DashboardPath, defaults.API.DashboardPath)
	fillString(&cfg.API.TicketsPath, defaults.API.TicketsPath)
	fillString(&cfg.API.AgentsPath, defaults.API.AgentsPath)
	fillString(&cfg.API.SettingsPath, defaults.API.SettingsPath)
	fillString(&cfg.API.HealthPath, defaults.API.HealthPath)
	fillString(&cfg.API.Routes.Support, defaults.API.Routes.Support)
	fillString(&cfg.API.Routes.Diagnostics, defaults.API.Routes.Diagnostics)
	fillString(&cfg.API.Routes.Escalation, defaults.API.Routes.Escalation)
	fillString(&cfg.API.Routes.Feedback, defaults.API.Routes.Feedback)

	// Chat
	fillString(&cfg.Chat.Greeting, defaults.Chat.Greeting)
	fillString(&cfg.Chat.CompanyName, defaults.Chat.CompanyName)
	if cfg.Chat.RequestTimeoutSecs == 0 {
		cfg.Chat.RequestTimeoutSecs = defaults.Chat.RequestTimeoutSecs
	}

	// Polling
	if cfg.Polling.DashboardSecs == 0 {
		cfg.Polling.DashboardSecs = defaults.Polling.DashboardSecs
	}
	if cfg.Polling.TicketsSecs == 0 {
		cfg.Polling.TicketsSecs = defaults.Polling.TicketsSecs
	}
	if cfg.Polling.AgentsSecs == 0 {
		cfg.Polling.AgentsSecs = defaults.Polling.AgentsSecs
	}

	// UI
	fillString(&cfg.UI.Theme, defaults.UI.Theme)

	// Log
	fillString(&cfg.Log.Level, defaults.Log.Level)

	// Server
	fillString(&cfg.Server.Addr, defaults.Server.Addr)
	if cfg.Server.RateLimit == 0 {
		cfg.Server.RateLimit = defaults.Server.RateLimit
	}
	if cfg.Server.Burst == 0 {
		cfg.Server.Burst = defaults.Server.Burst
	}

	return nil
}

func fillString(field *string, def string) {
	if strings.TrimSpace(*field) == "" {
		*field = def
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# supportdesk configuration file\n")
	b.WriteString("# Generated by supportdesk - edit with care\n")
	b.WriteString("\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// MinPollSecs is the shortest accepted refresh interval.
const MinPollSecs = 1

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.API.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{"api.base_url", "must be an absolute http(s) URL"})
	}
	if c.API.TimeoutSecs < 1 {
		errs = append(errs, ValidationError{"api.timeout_secs", "must be at least 1"})
	}

	paths := map[string]string{
		"api.dashboard_path":     c.API.DashboardPath,
		"api.tickets_path":       c.API.TicketsPath,
		"api.agents_path":        c.API.AgentsPath,
		"api.settings_path":      c.API.SettingsPath,
		"api.health_path":        c.API.HealthPath,
		"api.routes.support":     c.API.Routes.Support,
		"api.routes.diagnostics": c.API.Routes.Diagnostics,
		"api.routes.escalation":  c.API.Routes.Escalation,
		"api.routes.feedback":    c.API.Routes.Feedback,
	}
	for _, field := range slices.Sorted(maps.Keys(paths)) {
		if !strings.HasPrefix(paths[field], "/") {
			errs = append(errs, ValidationError{field, "must start with /"})
		}
	}

	if c.Chat.RequestTimeoutSecs < 1 {
		errs = append(errs, ValidationError{"chat.request_timeout_secs", "must be at least 1"})
	}

	intervals := []struct {
		field string
		secs  int
	}{
		{"polling.dashboard_secs", c.Polling.DashboardSecs},
		{"polling.tickets_secs", c.Polling.TicketsSecs},
		{"polling.agents_secs", c.Polling.AgentsSecs},
	}
	for _, iv := range intervals {
		if iv.secs < MinPollSecs {
			errs = append(errs, ValidationError{iv.field, fmt.Sprintf("must be at least %d", MinPollSecs)})
		}
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		errs = append(errs, ValidationError{"ui.theme", "must be auto, dark or light"})
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, ValidationError{"log.level", "must be debug, info, warn or error"})
	}

	if c.Server.RateLimit <= 0 {
		errs = append(errs, ValidationError{"server.rate_limit", "must be positive"})
	}
	if c.Server.Burst < 1 {
		errs = append(errs, ValidationError{"server.burst", "must be at least 1"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a TOML representation of the config for debugging.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
