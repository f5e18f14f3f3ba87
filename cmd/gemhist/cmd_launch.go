package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/browser"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/config"
)

var launchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch Chrome and record its DevTools URL for later sessions",
	Long: `Starts a Chrome instance and writes its DevTools websocket URL into
the handshake file under the state directory. A later 'gemhist watch' attaches
to this instance instead of launching its own, so the signed-in profile and
open tabs survive across watch sessions.`,
	RunE: runLaunch,
}

func runLaunch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Force a launch even when a debugger URL is configured.
	bcfg := cfg.Browser
	bcfg.DebuggerURL = ""

	mgr := browser.NewManager(bcfg, "")
	if err := mgr.Connect(ctx); err != nil {
		return err
	}

	controlFile := cfg.ControlFile()
	if err := browser.WriteControlFile(controlFile, mgr.ControlURL()); err != nil {
		return fmt.Errorf("write control file: %w", err)
	}

	if _, err := mgr.GeminiPage(ctx); err != nil {
		logger.Warn("could not open Gemini tab", zap.Error(err))
	}

	fmt.Printf("Chrome launched. Control URL: %s\n", mgr.ControlURL())
	fmt.Printf("Handshake file: %s\n", controlFile)
	fmt.Println("Run 'gemhist watch' in another terminal. Press Ctrl+C to shut down.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := os.Remove(controlFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("remove control file", zap.Error(err))
	}
	return mgr.Close()
}

// ensureStateDir creates the state directory tree.
func ensureStateDir(c config.Config) error {
	return os.MkdirAll(c.StateDir, 0o755)
}
