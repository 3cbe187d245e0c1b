package goals

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hyperengineering/loopz/internal/store"
	"github.com/hyperengineering/loopz/internal/types"
)

// document is the JSON layout of the goals key.
type document struct {
	Goals        types.WeeklyGoals  `json:"goals"`
	VacationMode types.VacationMode `json:"vacationMode"`
}

// Repository owns the goals key: the current weekly goals and vacation mode.
type Repository struct {
	store store.Store

	mu  sync.RWMutex
	doc document
}

// Open loads the goals key. Missing or unreadable data yields the defaults.
func Open(ctx context.Context, s store.Store) (*Repository, error) {
	r := &Repository{store: s, doc: document{Goals: types.DefaultGoals()}}

	data, err := s.Get(ctx, store.KeyGoals)
	if errors.Is(err, store.ErrNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load goals: %w", err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		slog.Warn("discarding unreadable goals",
			"component", "goals",
			"error", err,
		)
		return r, nil
	}
	r.doc = doc
	return r, nil
}

func decodeDocument(data []byte) (document, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode goals: %w", err)
	}
	return doc, nil
}

// Decode parses a persisted goals document.
func Decode(data []byte) (types.WeeklyGoals, types.VacationMode, error) {
	doc, err := decodeDocument(data)
	return doc.Goals, doc.VacationMode, err
}

// Goals returns the current weekly goals.
func (r *Repository) Goals() types.WeeklyGoals {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneGoals(r.doc.Goals)
}

// VacationMode returns the current vacation mode.
func (r *Repository) VacationMode() types.VacationMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.doc.VacationMode
}

// Update merges u into the goals and persists them.
func (r *Repository) Update(ctx context.Context, u types.GoalsUpdate) (types.WeeklyGoals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.doc
	next.Goals = u.Apply(cloneGoals(r.doc.Goals))
	if err := r.commit(ctx, next); err != nil {
		return types.WeeklyGoals{}, err
	}
	return cloneGoals(next.Goals), nil
}

// Reset restores the default goals. Vacation mode is kept.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.doc
	next.Goals = types.DefaultGoals()
	return r.commit(ctx, next)
}

// SetVacationMode switches vacation mode. Turning it on stamps today as the
// start date and clears the end date; turning it off stamps today as the end.
func (r *Repository) SetVacationMode(ctx context.Context, active bool, today types.Date) (types.VacationMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setVacation(ctx, active, today)
}

// ToggleVacationMode flips vacation mode, stamping dates like SetVacationMode.
func (r *Repository) ToggleVacationMode(ctx context.Context, today types.Date) (types.VacationMode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.setVacation(ctx, !r.doc.VacationMode.IsActive, today)
}

func (r *Repository) setVacation(ctx context.Context, active bool, today types.Date) (types.VacationMode, error) {
	vm := r.doc.VacationMode
	vm.IsActive = active
	if active {
		vm.StartDate = today.Ptr()
		vm.EndDate = nil
	} else {
		vm.EndDate = today.Ptr()
	}

	next := r.doc
	next.VacationMode = vm
	if err := r.commit(ctx, next); err != nil {
		return types.VacationMode{}, err
	}
	slog.Info("vacation mode changed",
		"component", "goals",
		"active", active,
		"date", today.String(),
	)
	return vm, nil
}

func (r *Repository) commit(ctx context.Context, next document) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("marshal goals: %w", err)
	}
	if err := r.store.Put(ctx, store.KeyGoals, data); err != nil {
		return fmt.Errorf("persist goals: %w", err)
	}
	r.doc = next
	return nil
}

func cloneGoals(g types.WeeklyGoals) types.WeeklyGoals {
	if g.MaxDrinks != nil {
		v := *g.MaxDrinks
		g.MaxDrinks = &v
	}
	if g.MaxTVHours != nil {
		v := *g.MaxTVHours
		g.MaxTVHours = &v
	}
	return g
}
