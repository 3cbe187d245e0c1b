package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/types"
	"github.com/oklog/ulid/v2"
)

// ErrMetricNotFound is returned for an unknown metric id.
var ErrMetricNotFound = errors.New("metric not found")

// Registry owns the custom-metrics key.
type Registry struct {
	store store.Store
	now   func() time.Time

	mu    sync.RWMutex
	state State
}

// Option configures a Registry.
type Option func(*Registry)

// WithNow overrides the creation timestamp source.
func WithNow(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Open loads and migrates the stored metric definitions. A missing key
// yields the system metrics; a corrupt blob is logged and replaced by them.
// A migrated state is written back immediately.
func Open(ctx context.Context, s store.Store, opts ...Option) (*Registry, error) {
	r := &Registry{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
		state: DefaultState(),
	}
	for _, opt := range opts {
		opt(r)
	}

	data, err := s.Get(ctx, store.KeyCustomMetrics)
	if errors.Is(err, store.ErrNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load metrics: %w", err)
	}

	decoded, err := Decode(data)
	if err != nil {
		slog.Warn("discarding unreadable metrics",
			"component", "metrics",
			"error", err,
		)
		return r, nil
	}

	migrated, changed := Migrate(decoded)
	r.state = migrated
	if changed {
		slog.Info("metrics migrated",
			"component", "metrics",
			"from_version", decoded.Version,
			"to_version", migrated.Version,
		)
		if err := r.persist(ctx, migrated); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// All returns every definition, active or not, in display order.
func (r *Registry) All() []types.CustomMetric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.CustomMetric, len(r.state.Metrics))
	copy(out, r.state.Metrics)
	return out
}

// Active returns the active definitions in display order.
func (r *Registry) Active() []types.CustomMetric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.CustomMetric, 0, len(r.state.Metrics))
	for _, m := range r.state.Metrics {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out
}

// Get returns one definition by id.
func (r *Registry) Get(id string) (types.CustomMetric, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.state.Metrics[i], nil
	}
	return types.CustomMetric{}, fmt.Errorf("%w: %s", ErrMetricNotFound, id)
}

// Add creates an active user metric. Without a color the next free palette
// color is assigned.
func (r *Registry) Add(ctx context.Context, n types.NewCustomMetric) (types.CustomMetric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := types.CustomMetric{
		ID:          CustomIDPrefix + strings.ToLower(ulid.Make().String()),
		Name:        n.Name,
		Description: n.Description,
		UnitType:    n.UnitType,
		Category:    n.Category,
		WeeklyGoal:  n.WeeklyGoal,
		Color:       n.Color,
		Icon:        n.Icon,
		IsActive:    true,
		CreatedAt:   r.now(),
	}
	if m.Color == "" {
		m.Color = NextColor(r.state.Metrics)
	}

	next := r.cloneState()
	next.Metrics = append(next.Metrics, m)
	if err := r.commit(ctx, next); err != nil {
		return types.CustomMetric{}, err
	}
	slog.Debug("metric added", "component", "metrics", "id", m.ID)
	return m, nil
}

// Update merges u into the definition with id.
func (r *Registry) Update(ctx context.Context, id string, u types.CustomMetricUpdate) (types.CustomMetric, error) {
	return r.modify(ctx, id, u.Apply)
}

// Toggle flips a metric's active flag.
func (r *Registry) Toggle(ctx context.Context, id string) (types.CustomMetric, error) {
	return r.modify(ctx, id, func(m types.CustomMetric) types.CustomMetric {
		m.IsActive = !m.IsActive
		return m
	})
}

// Delete deactivates a system metric and removes a user metric. Values
// already logged against the id stay in the logs.
func (r *Registry) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrMetricNotFound, id)
	}

	next := r.cloneState()
	if next.Metrics[i].IsSystemMetric {
		next.Metrics[i].IsActive = false
	} else {
		next.Metrics = append(next.Metrics[:i], next.Metrics[i+1:]...)
	}
	if err := r.commit(ctx, next); err != nil {
		return err
	}
	slog.Debug("metric deleted", "component", "metrics", "id", id)
	return nil
}

// Count returns the number of definitions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.state.Metrics)
}

func (r *Registry) modify(ctx context.Context, id string, fn func(types.CustomMetric) types.CustomMetric) (types.CustomMetric, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return types.CustomMetric{}, fmt.Errorf("%w: %s", ErrMetricNotFound, id)
	}
	next := r.cloneState()
	next.Metrics[i] = fn(next.Metrics[i])
	next.Metrics[i].ID = id
	if err := r.commit(ctx, next); err != nil {
		return types.CustomMetric{}, err
	}
	return next.Metrics[i], nil
}

// indexOf must be called with mu held.
func (r *Registry) indexOf(id string) int {
	for i, m := range r.state.Metrics {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (r *Registry) cloneState() State {
	metrics := make([]types.CustomMetric, len(r.state.Metrics))
	copy(metrics, r.state.Metrics)
	return State{Version: r.state.Version, Metrics: metrics}
}

// commit persists next and swaps it in. Called with mu held.
func (r *Registry) commit(ctx context.Context, next State) error {
	if err := r.persist(ctx, next); err != nil {
		return err
	}
	r.state = next
	return nil
}

func (r *Registry) persist(ctx context.Context, s State) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	if err := r.store.Put(ctx, store.KeyCustomMetrics, data); err != nil {
		return fmt.Errorf("persist metrics: %w", err)
	}
	return nil
}
