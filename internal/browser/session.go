// Package browser owns the Chrome connection: attaching to a running
// instance over DevTools, launching one when none is reachable, finding the
// Gemini tab, and streaming its page changes to the capture pipeline.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/config"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

// geminiHost is the host the manager looks for when picking a tab.
const geminiHost = "gemini.google.com"

// Manager owns the Chrome connection and the Gemini page.
type Manager struct {
	cfg         config.BrowserConfig
	controlFile string
	log         *logging.Logger

	browser    *rod.Browser
	controlURL string
	launched   bool
}

// NewManager builds a manager. controlFile is the handshake file `gemhist
// launch` writes its DevTools URL into; pass "" to skip the handshake lookup.
func NewManager(cfg config.BrowserConfig, controlFile string) *Manager {
	return &Manager{
		cfg:         cfg,
		controlFile: controlFile,
		log:         logging.Get(logging.CategoryBrowser),
	}
}

// Connect resolves a DevTools URL and attaches to it. Resolution order:
// explicit debugger_url, the handshake file, then launching a fresh Chrome
// with the configured binary and flags.
func (m *Manager) Connect(ctx context.Context) error {
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.log.Warn("stale browser connection, reconnecting")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
	}

	controlURL := m.cfg.DebuggerURL
	if controlURL == "" && m.controlFile != "" {
		if url, err := ReadControlFile(m.controlFile); err == nil {
			controlURL = url
			m.log.Info("using DevTools URL from %s", m.controlFile)
		}
	}
	if controlURL == "" {
		url, err := m.launch()
		if err != nil {
			return err
		}
		controlURL = url
		m.launched = true
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome at %s: %w", controlURL, err)
	}
	m.browser = browser
	m.controlURL = controlURL
	m.log.Info("connected to chrome")
	return nil
}

// launch starts a Chrome instance with the configured binary and flags,
// falling back to a bare launch when the flags are rejected.
func (m *Manager) launch() (string, error) {
	if len(m.cfg.Launch) == 0 {
		url, err := launcher.New().Headless(m.cfg.Headless).Launch()
		if err != nil {
			return "", fmt.Errorf("launch chrome: %w", err)
		}
		return url, nil
	}

	bin := m.cfg.Launch[0]
	launch := launcher.New().Bin(bin).Headless(m.cfg.Headless)
	for _, rawFlag := range m.cfg.Launch[1:] {
		flagStr := strings.TrimLeft(rawFlag, "-")
		name, val, hasVal := strings.Cut(flagStr, "=")
		if hasVal {
			launch = launch.Set(flags.Flag(name), val)
		} else {
			launch = launch.Set(flags.Flag(name))
		}
	}
	url, err := launch.Launch()
	if err != nil {
		fallback := launcher.New().Bin(bin).Headless(m.cfg.Headless)
		alt, altErr := fallback.Launch()
		if altErr != nil {
			return "", fmt.Errorf("launch chrome: %w (fallback: %v)", err, altErr)
		}
		return alt, nil
	}
	return url, nil
}

// ControlURL returns the DevTools websocket URL of the attached browser.
func (m *Manager) ControlURL() string {
	return m.controlURL
}

// GeminiPage returns the first open Gemini tab, opening one at the
// configured base URL when none exists.
func (m *Manager) GeminiPage(ctx context.Context) (*rod.Page, error) {
	if m.browser == nil {
		return nil, errors.New("browser not connected")
	}

	pages, err := m.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	for _, p := range pages {
		info, err := p.Info()
		if err != nil {
			continue
		}
		if strings.Contains(info.URL, geminiHost) {
			m.log.Info("attached to existing tab %s", info.URL)
			return p.Context(ctx), nil
		}
	}

	page, err := m.browser.Page(proto.TargetCreateTarget{URL: m.cfg.BaseURL})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", m.cfg.BaseURL, err)
	}
	page = page.Context(ctx)
	if err := page.Timeout(m.cfg.NavigationTimeout()).WaitLoad(); err != nil {
		m.log.Warn("initial load wait: %v", err)
	}
	m.log.Info("opened new tab at %s", m.cfg.BaseURL)
	return page, nil
}

// Close detaches from the browser. A browser this process launched is shut
// down; one it merely attached to is left running.
func (m *Manager) Close() error {
	if m.browser == nil {
		return nil
	}
	var err error
	if m.launched {
		err = m.browser.Close()
	}
	m.browser = nil
	m.controlURL = ""
	return err
}

// WriteControlFile records a DevTools URL for later sessions to attach to.
func WriteControlFile(path, controlURL string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	line := fmt.Sprintf("%s %s\n", controlURL, time.Now().UTC().Format(time.RFC3339))
	return os.WriteFile(path, []byte(line), 0o644)
}

// ReadControlFile returns the DevTools URL recorded by WriteControlFile.
func ReadControlFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return "", fmt.Errorf("control file %s is empty", path)
	}
	return fields[0], nil
}
