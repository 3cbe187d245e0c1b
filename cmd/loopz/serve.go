package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/api"
	"github.com/hyperengineering/loopz/internal/app"
	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/worker"
)

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local JSON API and the streak decay worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.serve(cmd.Context())
		},
	}
}

func (c *cli) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg := c.cfg
	slog.Info("configuration loaded", "db", cfg.Database.Path, "timezone", cfg.Calendar.Timezone)

	clock, err := c.clock()
	if err != nil {
		return err
	}
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	a, err := app.Open(ctx, db, clock)
	if err != nil {
		db.Close()
		return fmt.Errorf("load logbook: %w", err)
	}
	slog.Info("logbook loaded", "days_logged", a.Health(Version).DaysLogged)

	router := api.NewRouter(api.NewHandler(a, cfg.Auth.APIKey, Version))
	if cfg.Auth.APIKey == "" {
		slog.Warn("no API key configured, API is unauthenticated")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// Workers outlive the signal context so they stop only after the server drains.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var wg sync.WaitGroup
	decay := worker.NewStreakDecayWorker(a, time.Duration(cfg.Worker.StreakCheckInterval))
	startWorker(workerCtx, &wg, "streak-decay", decay.Run)

	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed means Shutdown was called; anything else is a failure.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// Drain in-flight requests, then stop workers, then close the store.
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	stopWorkers()
	wg.Wait()
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
