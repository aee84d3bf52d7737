package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoad_Defaults(t *testing.T) {
	p := writeConfig(t, `server: {}
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("broadcast_interval: got %v, want %v", cfg.Server.BroadcastInterval, DefaultBroadcastInterval)
	}
	if cfg.Dataset.Path != DefaultDatasetPath {
		t.Errorf("dataset.path: got %q, want %q", cfg.Dataset.Path, DefaultDatasetPath)
	}
	if cfg.Dataset.Columns.PayloadMass != DefaultPayloadColumn {
		t.Errorf("columns.payload_mass: got %q, want %q", cfg.Dataset.Columns.PayloadMass, DefaultPayloadColumn)
	}
	if cfg.Controls.PayloadStep != DefaultPayloadStep {
		t.Errorf("payload_step: got %v, want %v", cfg.Controls.PayloadStep, DefaultPayloadStep)
	}
	if cfg.Controls.MarkInterval != DefaultMarkInterval {
		t.Errorf("mark_interval: got %v, want %v", cfg.Controls.MarkInterval, DefaultMarkInterval)
	}
}

func TestLoad_Full(t *testing.T) {
	p := writeConfig(t, `server:
  http_port: 9091
  log_level: debug
  broadcast_interval: 2s
  auth:
    mode: apikey
    key_env: MY_KEY
    header: x-dash-key
dataset:
  path: /data/launches.csv
  watch: true
  columns:
    launch_site: Site
    payload_mass: Payload
    outcome: Outcome
    booster_category: Booster
controls:
  payload_step: 500
  mark_interval: 2500
charts:
  width: 640
  height: 400
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.HTTPPort != 9091 {
		t.Errorf("http_port: got %d, want 9091", cfg.Server.HTTPPort)
	}
	if cfg.Server.BroadcastInterval != 2*time.Second {
		t.Errorf("broadcast_interval: got %v, want 2s", cfg.Server.BroadcastInterval)
	}
	if cfg.Server.Auth.EffectiveHeader() != "x-dash-key" {
		t.Errorf("header: got %q, want x-dash-key", cfg.Server.Auth.EffectiveHeader())
	}
	if !cfg.Dataset.Watch {
		t.Error("dataset.watch: got false, want true")
	}
	if cfg.Dataset.Columns.LaunchSite != "Site" {
		t.Errorf("columns.launch_site: got %q, want Site", cfg.Dataset.Columns.LaunchSite)
	}
	if cfg.Controls.PayloadStep != 500 {
		t.Errorf("payload_step: got %v, want 500", cfg.Controls.PayloadStep)
	}
	if cfg.Charts.Width != 640 || cfg.Charts.Height != 400 {
		t.Errorf("charts: got %dx%d, want 640x400", cfg.Charts.Width, cfg.Charts.Height)
	}
}

func TestLoad_DefaultHeader(t *testing.T) {
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: K
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h := cfg.Server.Auth.EffectiveHeader(); h != "x-api-key" {
		t.Errorf("EffectiveHeader: got %q, want x-api-key", h)
	}
}

func TestLoad_KeyEnvResolution(t *testing.T) {
	t.Setenv("TEST_DASH_KEY", "supersecret")
	p := writeConfig(t, `server:
  auth:
    mode: apikey
    key_env: TEST_DASH_KEY
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if k := cfg.Server.Auth.Key(); k != "supersecret" {
		t.Errorf("Key(): got %q, want supersecret", k)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown auth mode": "server:\n  auth:\n    mode: oauth2\n",
		"port out of range": "server:\n  http_port: 70000\n",
		"bad log level":     "server:\n  log_level: loud\n",
		"empty column":      "dataset:\n  columns:\n    outcome: \"\"\n",
		"zero step":         "controls:\n  payload_step: 0\n",
		"negative interval": "server:\n  broadcast_interval: -1s\n",
		"malformed yaml":    "server: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, body)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := validate(Default()); err != nil {
		t.Fatalf("Default() failed validation: %v", err)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestWatch_CallsOnChange(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) {
			select {
			case changed <- c:
			default:
			}
		})
	}()

	// Rewrite until the watcher has registered and observed a write.
	deadline := time.After(3 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-changed:
			if c.Server.LogLevel != "debug" {
				t.Errorf("reloaded log_level: got %q, want debug", c.Server.LogLevel)
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch returned: %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(p, []byte("server:\n  log_level: debug\n"), 0o600); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for config reload")
		}
	}
}

func TestWatch_InvalidReloadKeepsPrevious(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	called := false
	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(p, []byte("server:\n  log_level: loud\n"), 0o600) //nolint:errcheck
	}()
	if err := Watch(ctx, p, func(*Config) { called = true }); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if called {
		t.Error("onChange called for an invalid config")
	}
}

// replaceFile writes content to a sibling temp file and renames it over p,
// the way editors and atomic writers save.
func replaceFile(t *testing.T, p, content string) {
	t.Helper()
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp: %v", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		t.Fatalf("rename: %v", err)
	}
}

func TestWatch_SurvivesAtomicReplace(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	levels := make(chan string, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, p, func(c *Config) {
			select {
			case levels <- c.Server.LogLevel:
			default:
			}
		})
	}()

	// waitFor repeats write until a reload reports want.
	waitFor := func(want string, write func()) {
		t.Helper()
		deadline := time.After(3 * time.Second)
		tick := time.NewTicker(50 * time.Millisecond)
		defer tick.Stop()
		for {
			select {
			case got := <-levels:
				if got == want {
					return
				}
			case <-tick.C:
				write()
			case <-deadline:
				t.Fatalf("timed out waiting for log_level %q", want)
			}
		}
	}

	waitFor("debug", func() { replaceFile(t, p, "server:\n  log_level: debug\n") })
	// Plain writes after the rename must still be seen.
	waitFor("error", func() {
		if err := os.WriteFile(p, []byte("server:\n  log_level: error\n"), 0o600); err != nil {
			t.Fatalf("rewrite config: %v", err)
		}
	})

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned: %v", err)
	}
}

func TestWatchFile_IgnoresSiblings(t *testing.T) {
	p := writeConfig(t, "server: {}\n")
	sibling := filepath.Join(filepath.Dir(p), "other.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(100 * time.Millisecond)
		os.WriteFile(sibling, []byte("x: 1\n"), 0o600) //nolint:errcheck
	}()
	calls := 0
	if err := WatchFile(ctx, p, func() { calls++ }); err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	if calls != 0 {
		t.Errorf("onChange calls for a sibling write: got %d, want 0", calls)
	}
}

func TestWatchFile_MissingFile(t *testing.T) {
	err := WatchFile(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), func() {})
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}
