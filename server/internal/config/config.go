package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the dashboard configuration.
const (
	DefaultHTTPPort          = 8050
	DefaultLogLevel          = "info"
	DefaultBroadcastInterval = 5 * time.Second
	DefaultDatasetPath       = "spacex_launch_dash.csv"
	DefaultPayloadStep       = 1000
	DefaultMarkInterval      = 2000
	DefaultChartWidth        = 800
	DefaultChartHeight       = 480
)

// Default column headers, matching the published launch dataset.
const (
	DefaultSiteColumn    = "Launch Site"
	DefaultPayloadColumn = "Payload Mass (kg)"
	DefaultOutcomeColumn = "class"
	DefaultBoosterColumn = "Booster Version Category"
)

// Config holds the full dashboard configuration parsed from config.yaml.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Controls ControlsConfig `yaml:"controls"`
	Charts   ChartsConfig   `yaml:"charts"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// HTTPPort serves the UI, REST API, WebSocket stream and metrics (default 8050).
	HTTPPort int `yaml:"http_port"`

	// LogLevel is one of: debug | info | warn | error. Hot-reloadable.
	LogLevel string `yaml:"log_level"`

	// BroadcastInterval is how often the WebSocket hub checks for a reloaded
	// dataset and re-pushes figures to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// Auth configures how /api/ and /ws/ requests are authenticated.
	Auth AuthConfig `yaml:"auth"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from. Defaults to "x-api-key".
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// DatasetConfig locates the launch records file and its columns.
type DatasetConfig struct {
	// Path is the CSV file loaded at startup.
	Path string `yaml:"path"`

	// Watch reloads the file when it changes on disk. Each reload produces a
	// new immutable table; a failed reload keeps the previous one.
	Watch bool `yaml:"watch"`

	Columns ColumnsConfig `yaml:"columns"`
}

// ColumnsConfig maps record fields to CSV header names.
type ColumnsConfig struct {
	LaunchSite      string `yaml:"launch_site"`
	PayloadMass     string `yaml:"payload_mass"`
	Outcome         string `yaml:"outcome"`
	BoosterCategory string `yaml:"booster_category"`
}

// ControlsConfig shapes the payload range selector.
type ControlsConfig struct {
	// PayloadStep is the slider step in kilograms (default 1000).
	PayloadStep float64 `yaml:"payload_step"`

	// MarkInterval is the spacing of labelled slider marks (default 2000).
	MarkInterval float64 `yaml:"mark_interval"`
}

// ChartsConfig sets the size of rendered chart images.
type ChartsConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Load reads and parses the config file at path.
// Missing fields are filled with sensible defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	return defaults()
}

// ParseLevel maps a log_level string to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			LogLevel:          DefaultLogLevel,
			BroadcastInterval: DefaultBroadcastInterval,
		},
		Dataset: DatasetConfig{
			Path: DefaultDatasetPath,
			Columns: ColumnsConfig{
				LaunchSite:      DefaultSiteColumn,
				PayloadMass:     DefaultPayloadColumn,
				Outcome:         DefaultOutcomeColumn,
				BoosterCategory: DefaultBoosterColumn,
			},
		},
		Controls: ControlsConfig{
			PayloadStep:  DefaultPayloadStep,
			MarkInterval: DefaultMarkInterval,
		},
		Charts: ChartsConfig{
			Width:  DefaultChartWidth,
			Height: DefaultChartHeight,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if _, err := ParseLevel(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("server.log_level: %w", err)
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	cols := cfg.Dataset.Columns
	for name, v := range map[string]string{
		"launch_site":      cols.LaunchSite,
		"payload_mass":     cols.PayloadMass,
		"outcome":          cols.Outcome,
		"booster_category": cols.BoosterCategory,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("dataset.columns.%s must not be empty", name)
		}
	}
	if cfg.Controls.PayloadStep <= 0 {
		return fmt.Errorf("controls.payload_step must be positive")
	}
	if cfg.Controls.MarkInterval <= 0 {
		return fmt.Errorf("controls.mark_interval must be positive")
	}
	if cfg.Charts.Width <= 0 || cfg.Charts.Height <= 0 {
		return fmt.Errorf("charts.width and charts.height must be positive")
	}
	return nil
}
