package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://gemini.google.com/app", cfg.Browser.BaseURL)
	assert.Equal(t, "json", cfg.History.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Capture.TitleWait())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
history:
  backend: sqlite
capture:
  title_timeout: 45s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.History.Backend)
	assert.Equal(t, 45*time.Second, cfg.Capture.TitleWait())
	// Untouched sections keep their defaults.
	assert.Equal(t, "https://gemini.google.com/app", cfg.Browser.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.Capture.Reconcile())
}

func TestDebuggerURLEnvOverride(t *testing.T) {
	t.Setenv("GEMHIST_DEBUGGER_URL", "ws://127.0.0.1:9222/devtools/browser/x")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/x", cfg.Browser.DebuggerURL)
}

func TestDurationFallbacks(t *testing.T) {
	c := CaptureConfig{TitleTimeout: "bogus", SidebarTimeout: "-3s"}
	assert.Equal(t, 2*time.Minute, c.TitleWait())
	assert.Equal(t, 10*time.Second, c.SidebarWait())
}

func TestStorePathFollowsBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StateDir = "/tmp/state"

	assert.Equal(t, "/tmp/state/history.json", cfg.StorePath())

	cfg.History.Backend = "sqlite"
	assert.Equal(t, "/tmp/state/history.db", cfg.StorePath())

	cfg.History.Path = "/elsewhere/h.db"
	assert.Equal(t, "/elsewhere/h.db", cfg.StorePath())
}
