// Package streak tracks two day-granular streaks: consecutive days with any
// log entry and consecutive days with building activity.
//
// Only entries dated today move a streak. Back-filling a past date neither
// extends nor protects one.
package streak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/types"
)

// Advance applies one entry recorded today. A counter whose last date is
// today is left alone, yesterday extends it, anything else restarts it at 1.
// The building counter only moves when hadBuilding is true.
func Advance(s types.StreakData, today types.Date, hadBuilding bool) types.StreakData {
	s.CurrentLoggingStreak = step(s.CurrentLoggingStreak, s.LastLogDate, today)
	s.LastLogDate = today.Ptr()

	if hadBuilding {
		s.CurrentBuildingStreak = step(s.CurrentBuildingStreak, s.LastBuildingDate, today)
		s.LastBuildingDate = today.Ptr()
	}
	return s
}

func step(current int, last *types.Date, today types.Date) int {
	switch {
	case last == nil:
		return 1
	case *last == today:
		return current
	case calendar.IsYesterday(*last, today):
		return current + 1
	default:
		return 1
	}
}

// Decay zeroes each counter whose last date is neither today nor yesterday.
// Last dates are kept.
func Decay(s types.StreakData, today types.Date) types.StreakData {
	if lapsed(s.LastLogDate, today) {
		s.CurrentLoggingStreak = 0
	}
	if lapsed(s.LastBuildingDate, today) {
		s.CurrentBuildingStreak = 0
	}
	return s
}

func lapsed(last *types.Date, today types.Date) bool {
	return last != nil && *last != today && !calendar.IsYesterday(*last, today)
}

// Tracker owns the streaks key.
type Tracker struct {
	store store.Store
	clock calendar.Clock

	mu    sync.Mutex
	state types.StreakData
}

// Open loads the streaks key. Missing or unreadable data starts from zero.
func Open(ctx context.Context, s store.Store, clock calendar.Clock) (*Tracker, error) {
	t := &Tracker{store: s, clock: clock}

	data, err := s.Get(ctx, store.KeyStreaks)
	if errors.Is(err, store.ErrNotFound) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load streaks: %w", err)
	}
	state, err := Decode(data)
	if err != nil {
		slog.Warn("discarding unreadable streaks",
			"component", "streak",
			"error", err,
		)
		return t, nil
	}
	t.state = state
	return t, nil
}

// Decode parses a persisted streaks document.
func Decode(data []byte) (types.StreakData, error) {
	var state types.StreakData
	if err := json.Unmarshal(data, &state); err != nil {
		return types.StreakData{}, fmt.Errorf("decode streaks: %w", err)
	}
	return state, nil
}

// RecordEntry registers a log entry for date. Entries for any day other
// than today are ignored and reported as not applied.
func (t *Tracker) RecordEntry(ctx context.Context, date types.Date, hadBuilding bool) (types.StreakData, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	today := t.clock.Today()
	if date != today {
		return t.state, false, nil
	}

	next := Advance(t.state, today, hadBuilding)
	if err := t.commit(ctx, next); err != nil {
		return t.state, false, err
	}
	return next, true, nil
}

// CheckAndReset applies decay for today and persists only when a counter
// changed. It reports whether anything was reset.
func (t *Tracker) CheckAndReset(ctx context.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkAndReset(ctx)
}

func (t *Tracker) checkAndReset(ctx context.Context) (bool, error) {
	next := Decay(t.state, t.clock.Today())
	if next == t.state {
		return false, nil
	}
	if err := t.commit(ctx, next); err != nil {
		return false, err
	}
	slog.Info("streaks reset",
		"component", "streak",
		"logging", next.CurrentLoggingStreak,
		"building", next.CurrentBuildingStreak,
	)
	return true, nil
}

// State returns the streaks after applying decay.
func (t *Tracker) State(ctx context.Context) (types.StreakData, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.checkAndReset(ctx); err != nil {
		return t.state, err
	}
	return t.state, nil
}

// LoggingStreak returns the current logging streak after applying decay.
func (t *Tracker) LoggingStreak(ctx context.Context) (int, error) {
	s, err := t.State(ctx)
	return s.CurrentLoggingStreak, err
}

// BuildingStreak returns the current building streak after applying decay.
func (t *Tracker) BuildingStreak(ctx context.Context) (int, error) {
	s, err := t.State(ctx)
	return s.CurrentBuildingStreak, err
}

// commit must be called with mu held.
func (t *Tracker) commit(ctx context.Context, next types.StreakData) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal streaks: %w", err)
	}
	if err := t.store.Put(ctx, store.KeyStreaks, data); err != nil {
		return fmt.Errorf("persist streaks: %w", err)
	}
	t.state = next
	return nil
}
