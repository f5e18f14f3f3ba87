// Package main implements the gemhist CLI: a daemon that watches a Gemini
// tab over DevTools and records every new conversation into a local history.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/config"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Loaded configuration, available to every subcommand.
	cfg config.Config

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gemhist",
	Short: "gemhist - Gemini conversation history recorder",
	Long: `gemhist attaches to a running Chrome over the DevTools protocol and
passively observes the Gemini web app. When a new conversation starts it
captures the model, prompt, attachments, account and Gem at submission time,
waits for Gemini to assign a title, and records exactly one history entry
per conversation.

It never clicks, types or navigates on its own; the page is only read.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.DebugMode = true
		}
		if err := logging.Initialize(cfg.StateDir, cfg.Logging); err != nil {
			logger.Warn("file logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gemhist.yaml"
	}
	return filepath.Join(home, ".gemhist", "config.yaml")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyCountCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(launchCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
