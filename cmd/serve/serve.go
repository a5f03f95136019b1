// Package serve implements the long-running ingest service. It accepts
// document captures and navigation events over HTTP, schedules scans,
// and relays extracted batches to the configured store.
package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/chatscrape/cmd/common"
	"github.com/jonesrussell/chatscrape/internal/api"
	"github.com/jonesrussell/chatscrape/internal/archive"
	"github.com/jonesrussell/chatscrape/internal/pipeline"
	"github.com/jonesrussell/chatscrape/internal/relay"
	"github.com/jonesrussell/chatscrape/internal/scheduler"
)

const shutdownTimeout = 10 * time.Second

// Command returns the serve command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the capture ingest service",
		Long: `Run the HTTP ingest service. Captures posted to it feed the scan
scheduler, and extracted batches are relayed to Redis or kept in memory.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	deps, err := common.NewCommandDeps(
		cmd.Flag("config").Value.String(),
		cmd.Flag("debug").Value.String() == "true",
	)
	if err != nil {
		return err
	}
	log := deps.Logger
	cfg := deps.Config

	store, err := newStore(deps)
	if err != nil {
		return err
	}

	archiver := archive.New(log, store)
	holder := scheduler.NewSnapshotHolder()

	sched := scheduler.New(
		log,
		cfg.Scheduler,
		pipeline.New(log),
		holder,
		common.Strategies(deps),
		archiver.Consume,
		archiver.Reset,
	)

	server := api.NewServer(api.Params{
		Config: cfg.Server,
		Logger: log,
		Ingest: api.NewIngestHandler(log, holder, sched, archiver),
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if startErr := sched.Start(ctx); startErr != nil {
		return fmt.Errorf("start scheduler: %w", startErr)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		if err != nil {
			err = fmt.Errorf("server: %w", err)
		}
	case sig := <-sigCh:
		log.Info("Received signal, shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if stopErr := server.Stop(shutdownCtx); stopErr != nil {
		log.Error("Server shutdown failed", "error", stopErr)
	}
	sched.Stop()

	return err
}

func newStore(deps common.CommandDeps) (relay.Store, error) {
	cfg := deps.Config.Redis
	if !cfg.Enabled {
		deps.Logger.Info("Relay store: in-memory")
		return relay.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	deps.Logger.Info("Relay store: redis", "addr", cfg.Addr, "db", cfg.DB)
	return relay.NewRedisStore(client), nil
}
