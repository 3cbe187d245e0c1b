// Package logbook is the log repository: one DailyLog per calendar date,
// persisted as a single JSON object under the "logs" key.
package logbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/types"
	"github.com/oklog/ulid/v2"
)

// Repository holds every stored DailyLog in memory and writes the whole set
// back to the store after each upsert.
type Repository struct {
	store store.Store
	now   func() time.Time

	mu   sync.RWMutex
	logs map[types.Date]types.DailyLog
}

// Option configures a Repository.
type Option func(*Repository)

// WithNow overrides the timestamp source used for createdAt/updatedAt.
func WithNow(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Open loads the "logs" key from s. A missing key yields an empty
// repository; so does a corrupt blob, which is logged and otherwise ignored.
// Only store I/O failures are returned.
func Open(ctx context.Context, s store.Store, opts ...Option) (*Repository, error) {
	r := &Repository{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		logs:  make(map[types.Date]types.DailyLog),
	}
	for _, opt := range opts {
		opt(r)
	}

	data, err := s.Get(ctx, store.KeyLogs)
	if errors.Is(err, store.ErrNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load logs: %w", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		slog.Warn("discarding unreadable logs",
			"component", "logbook",
			"error", err,
			"bytes", len(data),
		)
		return r, nil
	}
	for date, log := range decoded {
		r.logs[date] = log
	}
	return r, nil
}

// Decode parses a persisted logs document. Each log takes its date from
// its key.
func Decode(data []byte) (map[types.Date]types.DailyLog, error) {
	var decoded map[types.Date]types.DailyLog
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decode logs: %w", err)
	}
	for date, log := range decoded {
		log.Date = date
		decoded[date] = log
	}
	return decoded, nil
}

// NewDefaultLog builds the all-zero log for date. It is not persisted.
func NewDefaultLog(date types.Date, now time.Time) types.DailyLog {
	return types.DailyLog{
		ID:        date.String() + "_" + strings.ToLower(ulid.Make().String()),
		Date:      date,
		MoodScore: types.DefaultMoodScore,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Get returns the stored log for date, or a default view when nothing was
// ever written. It never writes.
func (r *Repository) Get(ctx context.Context, date types.Date) (types.LogView, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if log, ok := r.logs[date]; ok {
		return types.LogView{DailyLog: cloneLog(log), Persisted: true}, nil
	}
	return types.LogView{DailyLog: NewDefaultLog(date, r.now())}, nil
}

// Upsert merges update onto the stored log (or the default) and persists the
// full set. On a write failure the in-memory state is left unchanged.
func (r *Repository) Upsert(ctx context.Context, date types.Date, update types.LogUpdate) (types.DailyLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	existing, ok := r.logs[date]
	if !ok {
		existing = NewDefaultLog(date, now)
	}

	updated := update.Apply(existing)
	updated.Date = date
	updated.UpdatedAt = now

	next := make(map[types.Date]types.DailyLog, len(r.logs)+1)
	for d, l := range r.logs {
		next[d] = l
	}
	next[date] = updated

	if err := r.persist(ctx, next); err != nil {
		return types.DailyLog{}, err
	}
	r.logs = next

	slog.Debug("log upserted",
		"component", "logbook",
		"date", date.String(),
		"created", !ok,
	)
	return cloneLog(updated), nil
}

// QueryRange returns stored logs with start <= date <= end, ascending.
func (r *Repository) QueryRange(ctx context.Context, start, end types.Date) ([]types.DailyLog, error) {
	return r.filter(func(d types.Date) bool {
		return !d.Before(start) && !d.After(end)
	}), nil
}

// QueryWeek returns stored logs for the Monday-Sunday week containing date.
func (r *Repository) QueryWeek(ctx context.Context, date types.Date) ([]types.DailyLog, error) {
	return r.QueryRange(ctx, calendar.WeekStart(date), calendar.WeekEnd(date))
}

// QueryMonth returns stored logs for one calendar month.
func (r *Repository) QueryMonth(ctx context.Context, year int, month time.Month) ([]types.DailyLog, error) {
	return r.filter(func(d types.Date) bool {
		return d.Year == year && d.Month == month
	}), nil
}

// QueryYear returns stored logs for one calendar year.
func (r *Repository) QueryYear(ctx context.Context, year int) ([]types.DailyLog, error) {
	return r.filter(func(d types.Date) bool {
		return d.Year == year
	}), nil
}

// QueryAll returns every stored log.
func (r *Repository) QueryAll(ctx context.Context) ([]types.DailyLog, error) {
	return r.filter(func(types.Date) bool { return true }), nil
}

// Count returns the number of stored logs.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs)
}

func (r *Repository) filter(keep func(types.Date) bool) []types.DailyLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.DailyLog, 0)
	for d, log := range r.logs {
		if keep(d) {
			out = append(out, cloneLog(log))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (r *Repository) persist(ctx context.Context, logs map[types.Date]types.DailyLog) error {
	data, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("marshal logs: %w", err)
	}
	if err := r.store.Put(ctx, store.KeyLogs, data); err != nil {
		return fmt.Errorf("persist logs: %w", err)
	}
	return nil
}

func cloneLog(l types.DailyLog) types.DailyLog {
	if l.CustomMetrics != nil {
		m := make(map[string]float64, len(l.CustomMetrics))
		for k, v := range l.CustomMetrics {
			m[k] = v
		}
		l.CustomMetrics = m
	}
	return l
}
