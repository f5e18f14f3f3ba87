package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/config"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/history"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/kv"
)

var (
	listLimit  int
	clearForce bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and manage the recorded conversation history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded conversations, most recent first",
	RunE:  historyList,
}

var historyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of recorded conversations",
	RunE:  historyCount,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all recorded conversations",
	RunE:  historyClear,
}

var historyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the history as JSON (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  historyExport,
}

var historyImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Merge a JSON export into the history, skipping known URLs",
	Args:  cobra.ExactArgs(1),
	RunE:  historyImport,
}

func init() {
	historyListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "show at most n entries")
	historyClearCmd.Flags().BoolVar(&clearForce, "force", false, "clear without confirmation")
}

// openBackend opens the configured key-value store.
func openBackend(c config.Config) (kv.Store, error) {
	if err := ensureStateDir(c); err != nil {
		return nil, fmt.Errorf("state dir: %w", err)
	}
	if c.History.Backend == "sqlite" {
		return kv.OpenSQLite(c.StorePath())
	}
	return kv.NewFileStore(c.StorePath())
}

func openStore(c config.Config) (*history.Store, kv.Store, error) {
	backend, err := openBackend(c)
	if err != nil {
		return nil, nil, err
	}
	return history.NewStore(backend), backend, nil
}

func historyList(cmd *cobra.Command, args []string) error {
	store, backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	entries := store.Load()
	if len(entries) == 0 {
		fmt.Println("No conversations recorded.")
		return nil
	}
	if listLimit > 0 && len(entries) > listLimit {
		entries = entries[:listLimit]
	}
	for _, e := range entries {
		gem := ""
		if e.GemName != "" {
			gem = " [" + e.GemName + "]"
		}
		fmt.Printf("%s  %-12s%s  %s\n    %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"),
			e.Model, gem, e.Title, e.URL)
	}
	return nil
}

func historyCount(cmd *cobra.Command, args []string) error {
	store, backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	fmt.Println(store.Count())
	return nil
}

func historyClear(cmd *cobra.Command, args []string) error {
	store, backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	n := store.Count()
	if n == 0 {
		fmt.Println("History is already empty.")
		return nil
	}
	if !clearForce {
		fmt.Printf("This deletes %d recorded conversations. Continue? [y/N] ", n)
		var answer string
		fmt.Scanln(&answer)
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Println("Aborted.")
			return nil
		}
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Printf("Deleted %d conversations.\n", n)
	return nil
}

func historyExport(cmd *cobra.Command, args []string) error {
	store, backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return store.Export(out)
}

func historyImport(cmd *cobra.Command, args []string) error {
	store, backend, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	added, err := store.Import(f)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d new conversations (%d total).\n", added, store.Count())
	return nil
}
