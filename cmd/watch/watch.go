// Package watch implements the local development command. It watches a
// capture file on disk and re-runs the scan scheduler every time the
// capture is rewritten, printing each extracted batch as JSON.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/chatscrape/cmd/common"
	"github.com/jonesrussell/chatscrape/internal/dom"
	"github.com/jonesrussell/chatscrape/internal/domain"
	"github.com/jonesrussell/chatscrape/internal/logger"
	"github.com/jonesrussell/chatscrape/internal/pipeline"
	"github.com/jonesrussell/chatscrape/internal/scheduler"
)

var pageURL string

// Command returns the watch command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <snapshot file>",
		Short: "Re-extract whenever a capture file changes",
		Long: `Watch a rendered-document capture on disk and run the scan
scheduler against it on every rewrite. Extracted batches are printed to
stdout as JSON, one object per scan.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "page URL of the capture (selects the target)")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	deps, err := common.NewCommandDeps(
		cmd.Flag("config").Value.String(),
		cmd.Flag("debug").Value.String() == "true",
	)
	if err != nil {
		return err
	}
	log := deps.Logger

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	holder := scheduler.NewSnapshotHolder()
	sched := scheduler.New(
		log,
		deps.Config.Scheduler,
		pipeline.New(log),
		holder,
		common.Strategies(deps),
		printBatch,
		func(conversationKey string) {
			log.Info("Conversation changed", "conversation", conversationKey)
		},
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if startErr := sched.Start(ctx); startErr != nil {
		return fmt.Errorf("start scheduler: %w", startErr)
	}
	defer sched.Stop()

	if loadErr := loadCapture(log, holder, sched, path); loadErr != nil {
		return loadErr
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files instead of writing in place.
	if watchErr := watcher.Add(filepath.Dir(path)); watchErr != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), watchErr)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	log.Info("Watching capture", "path", path, "url", pageURL)
	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != path || !ev.Op.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if loadErr := loadCapture(log, holder, sched, path); loadErr != nil {
				log.Warn("Reload failed", "error", loadErr)
			}
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watcher error", "error", watchErr)
		case <-sigCh:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func loadCapture(
	log logger.Interface,
	holder *scheduler.SnapshotHolder,
	sched *scheduler.Scheduler,
	path string,
) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read capture: %w", err)
	}

	snap, err := dom.NewSnapshotFromString(string(data), pageURL)
	if err != nil {
		return fmt.Errorf("parse capture: %w", err)
	}

	holder.Set(snap)
	sched.DocumentChanged()
	log.Debug("Capture reloaded", "path", path, "bytes", len(data))
	return nil
}

func printBatch(batch domain.ScanBatch) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(batch)
}
