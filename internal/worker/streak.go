package worker

import (
	"context"
	"log/slog"
	"time"
)

// StreakChecker defines the operation needed by the streak decay worker.
type StreakChecker interface {
	CheckStreaks(ctx context.Context) (bool, error)
}

// StreakDecayWorker zeroes streaks whose last entry is older than yesterday.
type StreakDecayWorker struct {
	checker  StreakChecker
	interval time.Duration
}

// NewStreakDecayWorker creates a worker that checks every interval.
func NewStreakDecayWorker(checker StreakChecker, interval time.Duration) *StreakDecayWorker {
	return &StreakDecayWorker{
		checker:  checker,
		interval: interval,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Checks once immediately, the same way a fresh launch would, then on every tick.
func (w *StreakDecayWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "streak-decay",
		"interval", w.interval.String(),
	)

	w.runCheck(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "streak-decay",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.runCheck(ctx)
		}
	}
}

// runCheck executes a single decay check.
func (w *StreakDecayWorker) runCheck(ctx context.Context) {
	start := time.Now()

	reset, err := w.checker.CheckStreaks(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("streak check failed",
			"component", "worker",
			"action", "streak_check_failed",
			"error", err,
		)
		return
	}

	if reset {
		slog.Info("streaks reset",
			"component", "worker",
			"action", "streak_reset",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return
	}
	slog.Debug("streaks unchanged",
		"component", "worker",
		"action", "streak_check",
	)
}
