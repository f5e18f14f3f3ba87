package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/browser"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/capture"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/dom"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/extract"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/history"
	"github.com/InvictusNavarchus/gemini-history-manager-sub000/internal/status"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Attach to the Gemini tab and record new conversations",
	Long: `Connects to Chrome (an explicit --debugger-url / config URL, the
handshake file written by 'gemhist launch', or a freshly launched instance),
finds the Gemini tab, and watches it until interrupted.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	mgr := browser.NewManager(cfg.Browser, cfg.ControlFile())
	if err := mgr.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			logger.Warn("browser close", zap.Error(err))
		}
	}()

	page, err := mgr.GeminiPage(ctx)
	if err != nil {
		return err
	}
	livePage := browser.NewLivePage(page)
	overlay := browser.NewOverlay(page)
	rep := status.Multi{status.Log{}, overlay}

	backend, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	notifier := history.NewChannelNotifier()
	store := history.NewStore(backend,
		history.WithNotifier(notifier),
		history.WithStatus(rep),
	)

	gems := extract.NewGemDetector()
	watcher := browser.NewWatcher(page)
	machine := capture.NewMachine(livePage, watcher, store, gems, rep, capture.Config{
		TitleTimeout: cfg.Capture.TitleWait(),
	})

	// Hold the send button while the observers come up, so nothing can be
	// submitted before anyone is listening.
	browser.SetSendEnabled(page, false)
	if err := watcher.Start(ctx); err != nil {
		browser.SetSendEnabled(page, true)
		return err
	}
	defer watcher.Stop()
	browser.SetSendEnabled(page, true)

	submitTok := watcher.WatchSubmit(machine.OnSubmitClick)
	defer submitTok.Cancel()

	// Keep the Gem persona cache in step with navigation: a Gem page is the
	// only place its display name can be read, and leaving Gem pages must
	// drop the cached name so it cannot attach to the next Gem visited.
	navTok, err := watcher.WatchNavigation(func(url string) {
		var snap *dom.Snapshot
		if _, ok := extract.GemIDFromURL(url); ok {
			snap, _ = livePage.Snapshot()
		}
		gems.Track(url, snap)
	})
	if err != nil {
		return err
	}
	defer navTok.Cancel()

	crash := capture.NewCrashDetector(machine)
	if err := crash.Start(watcher); err != nil {
		return err
	}
	defer crash.Stop()

	recon := browser.NewReconciler(page, machine, cfg.Capture.Reconcile())
	recon.Start(ctx, cfg.Capture.SidebarWait())
	defer recon.Stop()

	// Pick up edits other tools make to the JSON store while we run.
	if cfg.History.Backend != "sqlite" {
		fw, err := history.NewFileWatcher(store, cfg.StorePath())
		if err != nil {
			logger.Warn("history file watch unavailable", zap.Error(err))
		} else if err := fw.Start(); err != nil {
			logger.Warn("history file watch", zap.Error(err))
		} else {
			defer fw.Stop()
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case msg := <-notifier.C:
				logger.Info("history count changed", zap.Int("count", msg.Count))
			}
		}
	})

	store.NotifyCount()
	logger.Info("watching", zap.String("page", livePage.URL()),
		zap.Int("recorded", store.Count()))
	fmt.Printf("Watching %s (%d conversations on record). Press Ctrl+C to stop.\n",
		livePage.URL(), store.Count())

	<-ctx.Done()
	return g.Wait()
}
