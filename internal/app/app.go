// Package app is the single application context: it owns the log
// repository, goals, metric registry and streak tracker over one store and
// exposes the read and write operations every client uses.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hyperengineering/loopz/internal/aggregate"
	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/goals"
	"github.com/hyperengineering/loopz/internal/logbook"
	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/streak"
	"github.com/hyperengineering/loopz/internal/types"
	"github.com/hyperengineering/loopz/internal/validation"
)

// ErrInvalidRange is returned when a query's start is after its end.
var ErrInvalidRange = errors.New("invalid date range")

// App wires the four sub-states together.
type App struct {
	store store.Store
	clock calendar.Clock

	mu      sync.RWMutex
	logs    *logbook.Repository
	goals   *goals.Repository
	metrics *metrics.Registry
	streaks *streak.Tracker
}

// Open loads every sub-state from s.
func Open(ctx context.Context, s store.Store, clock calendar.Clock) (*App, error) {
	a := &App{store: s, clock: clock}
	if err := a.load(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload re-reads every sub-state from the store, e.g. after a restore.
func (a *App) Reload(ctx context.Context) error {
	return a.load(ctx)
}

func (a *App) load(ctx context.Context) error {
	logs, err := logbook.Open(ctx, a.store)
	if err != nil {
		return fmt.Errorf("open logbook: %w", err)
	}
	g, err := goals.Open(ctx, a.store)
	if err != nil {
		return fmt.Errorf("open goals: %w", err)
	}
	m, err := metrics.Open(ctx, a.store)
	if err != nil {
		return fmt.Errorf("open metrics: %w", err)
	}
	st, err := streak.Open(ctx, a.store, a.clock)
	if err != nil {
		return fmt.Errorf("open streaks: %w", err)
	}

	a.mu.Lock()
	a.logs, a.goals, a.metrics, a.streaks = logs, g, m, st
	a.mu.Unlock()

	slog.Debug("app state loaded",
		"component", "app",
		"days_logged", logs.Count(),
		"metrics", m.Count(),
	)
	return nil
}

func (a *App) parts() (*logbook.Repository, *goals.Repository, *metrics.Registry, *streak.Tracker) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.logs, a.goals, a.metrics, a.streaks
}

// Store returns the backing store.
func (a *App) Store() store.Store { return a.store }

// Today is the current date according to the app's clock.
func (a *App) Today() types.Date { return a.clock.Today() }

// Log returns the log for date, defaulted when nothing was stored.
func (a *App) Log(ctx context.Context, date types.Date) (types.LogView, error) {
	logs, _, _, _ := a.parts()
	return logs.Get(ctx, date)
}

// UpsertLog validates and applies an update. An update to today's log also
// counts as a streak entry, with building activity when the resulting log
// has building minutes.
func (a *App) UpsertLog(ctx context.Context, date types.Date, u types.LogUpdate) (types.DailyLog, error) {
	if err := validation.AsError(validation.ValidateLogUpdate(u)); err != nil {
		return types.DailyLog{}, err
	}
	logs, _, _, streaks := a.parts()

	updated, err := logs.Upsert(ctx, date, u)
	if err != nil {
		return types.DailyLog{}, err
	}
	if date == a.Today() {
		if _, _, err := streaks.RecordEntry(ctx, date, updated.BuildingMinutes > 0); err != nil {
			return updated, fmt.Errorf("record streak: %w", err)
		}
	}
	return updated, nil
}

// SetMetricValue stores v for a metric on date.
func (a *App) SetMetricValue(ctx context.Context, date types.Date, metricID string, v float64) (types.DailyLog, error) {
	_, _, reg, _ := a.parts()
	m, err := reg.Get(metricID)
	if err != nil {
		return types.DailyLog{}, err
	}
	if err := validation.AsError(validation.ValidateMetricValue(m, v)); err != nil {
		return types.DailyLog{}, err
	}
	return a.UpsertLog(ctx, date, metrics.SetValue(m, v))
}

// LogsInRange returns stored logs between from and to inclusive.
func (a *App) LogsInRange(ctx context.Context, from, to types.Date) ([]types.DailyLog, error) {
	if from.After(to) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange, from, to)
	}
	logs, _, _, _ := a.parts()
	return logs.QueryRange(ctx, from, to)
}

// LogsForWeek returns stored logs for the Monday week containing date.
func (a *App) LogsForWeek(ctx context.Context, date types.Date) ([]types.DailyLog, error) {
	logs, _, _, _ := a.parts()
	return logs.QueryWeek(ctx, date)
}

// LogsForMonth returns stored logs for one calendar month.
func (a *App) LogsForMonth(ctx context.Context, year int, month time.Month) ([]types.DailyLog, error) {
	logs, _, _, _ := a.parts()
	return logs.QueryMonth(ctx, year, month)
}

// LogsForYear returns stored logs for year.
func (a *App) LogsForYear(ctx context.Context, year int) ([]types.DailyLog, error) {
	logs, _, _, _ := a.parts()
	return logs.QueryYear(ctx, year)
}

// AllLogs returns every stored log.
func (a *App) AllLogs(ctx context.Context) ([]types.DailyLog, error) {
	logs, _, _, _ := a.parts()
	return logs.QueryAll(ctx)
}

// Totals aggregates stored logs between from and to inclusive.
func (a *App) Totals(ctx context.Context, from, to types.Date) (aggregate.Totals, error) {
	logs, err := a.LogsInRange(ctx, from, to)
	if err != nil {
		return aggregate.Totals{}, err
	}
	return aggregate.Aggregate(logs), nil
}

// AllTimeTotals aggregates every stored log.
func (a *App) AllTimeTotals(ctx context.Context) (aggregate.Totals, error) {
	logs, err := a.AllLogs(ctx)
	if err != nil {
		return aggregate.Totals{}, err
	}
	return aggregate.Aggregate(logs), nil
}

// Goals returns the weekly goals.
func (a *App) Goals() types.WeeklyGoals {
	_, g, _, _ := a.parts()
	return g.Goals()
}

// VacationMode returns the vacation mode switch.
func (a *App) VacationMode() types.VacationMode {
	_, g, _, _ := a.parts()
	return g.VacationMode()
}

// UpdateGoals validates and applies a goals update.
func (a *App) UpdateGoals(ctx context.Context, u types.GoalsUpdate) (types.WeeklyGoals, error) {
	if err := validation.AsError(validation.ValidateGoalsUpdate(u)); err != nil {
		return types.WeeklyGoals{}, err
	}
	_, g, _, _ := a.parts()
	return g.Update(ctx, u)
}

// ResetGoals restores the default goals.
func (a *App) ResetGoals(ctx context.Context) error {
	_, g, _, _ := a.parts()
	return g.Reset(ctx)
}

// SetVacationMode switches vacation mode, stamping today's date.
func (a *App) SetVacationMode(ctx context.Context, active bool) (types.VacationMode, error) {
	_, g, _, _ := a.parts()
	return g.SetVacationMode(ctx, active, a.Today())
}

// ToggleVacationMode flips vacation mode, stamping today's date.
func (a *App) ToggleVacationMode(ctx context.Context) (types.VacationMode, error) {
	_, g, _, _ := a.parts()
	return g.ToggleVacationMode(ctx, a.Today())
}

// RecordEntry registers a streak entry directly. It reports whether the
// entry applied; only entries for today do.
func (a *App) RecordEntry(ctx context.Context, date types.Date, hadBuilding bool) (types.StreakData, bool, error) {
	_, _, _, st := a.parts()
	return st.RecordEntry(ctx, date, hadBuilding)
}

// Streaks returns the streak state after the decay check.
func (a *App) Streaks(ctx context.Context) (types.StreakData, error) {
	_, _, _, st := a.parts()
	return st.State(ctx)
}

// CheckStreaks runs the decay check.
func (a *App) CheckStreaks(ctx context.Context) (bool, error) {
	_, _, _, st := a.parts()
	return st.CheckAndReset(ctx)
}

// Health summarizes the app for the health endpoint.
func (a *App) Health(version string) types.HealthResponse {
	logs, _, reg, _ := a.parts()
	return types.HealthResponse{
		Status:      "healthy",
		Version:     version,
		DaysLogged:  logs.Count(),
		MetricCount: reg.Count(),
	}
}
