package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/app"
	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/config"
	"github.com/hyperengineering/loopz/internal/store"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

// clockOverride replaces the system clock when set. Tests pin "today" with it.
var clockOverride calendar.Clock

// cli carries the loaded configuration and global flags to every subcommand.
type cli struct {
	cfg        *config.Config
	dbOverride string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "loopz",
		Short:        "loopz - daily habit logbook",
		Long:         "Log Golden Hours, workouts and limits by day, and measure each week against your goals.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if c.dbOverride != "" {
				cfg.Database.Path = c.dbOverride
			}
			c.cfg = cfg
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), cfg.Log))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.dbOverride, "db", "",
		"Database path (overrides config and LOOPZ_DB_PATH)")
	root.PersistentFlags().BoolVar(&c.jsonOutput, "json", false,
		"Output in JSON format")

	root.AddCommand(
		newServeCmd(c),
		newLogCmd(c),
		newWeekCmd(c),
		newYearCmd(c),
		newCalendarCmd(c),
		newGoalsCmd(c),
		newStreakCmd(c),
		newMetricsCmd(c),
		newExportCmd(c),
		newImportCmd(c),
	)
	return root
}

// newLogger builds the process logger from the log config section.
func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c *cli) clock() (calendar.Clock, error) {
	if clockOverride != nil {
		return clockOverride, nil
	}
	loc, err := c.cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}
	return calendar.SystemClock{Location: loc}, nil
}

// openApp opens the SQLite store and loads the application state from it.
// The returned close func releases the store.
func (c *cli) openApp(ctx context.Context) (*app.App, func(), error) {
	clock, err := c.clock()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.NewSQLiteStore(c.cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	a, err := app.Open(ctx, db, clock)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("load logbook: %w", err)
	}
	return a, func() {
		if err := db.Close(); err != nil {
			slog.Error("store close error", "error", err)
		}
	}, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}
