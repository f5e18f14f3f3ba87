// Package config holds the gemhist configuration: where state lives, how the
// browser is reached, and the tunables of the capture pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all gemhist configuration.
type Config struct {
	// StateDir is the root for persisted state (history, logs, handshake
	// files). Defaults to ~/.gemhist.
	StateDir string `yaml:"state_dir"`

	Browser BrowserConfig `yaml:"browser"`
	Capture CaptureConfig `yaml:"capture"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// BrowserConfig configures how the Chrome instance is reached.
type BrowserConfig struct {
	// DebuggerURL is the DevTools websocket URL of an already-running Chrome.
	// When empty, gemhist looks for the handshake file written by
	// `gemhist launch`, then falls back to launching its own instance.
	DebuggerURL string `yaml:"debugger_url"`

	// Launch is the Chrome binary plus extra flags used when launching.
	Launch   []string `yaml:"launch"`
	Headless bool     `yaml:"headless"`

	// BaseURL is the chat application entry point.
	BaseURL string `yaml:"base_url"`

	NavigationTimeoutMs int `yaml:"navigation_timeout_ms"`
}

// CaptureConfig configures the capture state machine.
type CaptureConfig struct {
	// SidebarTimeout bounds the initial "does the sidebar exist at all" wait.
	// It only gates the send-button workaround, never an in-flight capture.
	SidebarTimeout string `yaml:"sidebar_timeout"`

	// TitleTimeout bounds the wait for a real title. On expiry the attempt is
	// aborted with a warning and nothing is persisted.
	TitleTimeout string `yaml:"title_timeout"`

	// ReconcileInterval is the send-button reconciliation poll period.
	ReconcileInterval string `yaml:"reconcile_interval"`
}

// HistoryConfig configures the history store.
type HistoryConfig struct {
	// Backend selects the key-value store: "json" or "sqlite".
	Backend string `yaml:"backend"`

	// Path overrides the store location. Empty means <state_dir>/history.json
	// or <state_dir>/history.db depending on the backend.
	Path string `yaml:"path"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		StateDir: filepath.Join(home, ".gemhist"),
		Browser: BrowserConfig{
			Headless:            false,
			BaseURL:             "https://gemini.google.com/app",
			NavigationTimeoutMs: 30000,
		},
		Capture: CaptureConfig{
			SidebarTimeout:    "10s",
			TitleTimeout:      "2m",
			ReconcileInterval: "500ms",
		},
		History: HistoryConfig{
			Backend: "json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file and merges it over the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if url := os.Getenv("GEMHIST_DEBUGGER_URL"); url != "" {
		cfg.Browser.DebuggerURL = url
	}
	return cfg, nil
}

// NavigationTimeout returns the browser navigation timeout.
func (c BrowserConfig) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// SidebarWait returns the parsed sidebar timeout.
func (c CaptureConfig) SidebarWait() time.Duration {
	return parseDuration(c.SidebarTimeout, 10*time.Second)
}

// TitleWait returns the parsed title timeout.
func (c CaptureConfig) TitleWait() time.Duration {
	return parseDuration(c.TitleTimeout, 2*time.Minute)
}

// Reconcile returns the parsed reconciliation interval.
func (c CaptureConfig) Reconcile() time.Duration {
	return parseDuration(c.ReconcileInterval, 500*time.Millisecond)
}

// StorePath resolves the history store location for the configured backend.
func (c Config) StorePath() string {
	if c.History.Path != "" {
		return c.History.Path
	}
	if c.History.Backend == "sqlite" {
		return filepath.Join(c.StateDir, "history.db")
	}
	return filepath.Join(c.StateDir, "history.json")
}

// ControlFile is where `gemhist launch` records the DevTools URL.
func (c Config) ControlFile() string {
	return filepath.Join(c.StateDir, "browser", "control.txt")
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
