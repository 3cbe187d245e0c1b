package app

import (
	"context"

	"github.com/hyperengineering/loopz/internal/types"
	"github.com/hyperengineering/loopz/internal/validation"
)

// Metrics returns every metric definition; with activeOnly, just the active ones.
func (a *App) Metrics(activeOnly bool) []types.CustomMetric {
	_, _, reg, _ := a.parts()
	if activeOnly {
		return reg.Active()
	}
	return reg.All()
}

// Metric returns one definition.
func (a *App) Metric(id string) (types.CustomMetric, error) {
	_, _, reg, _ := a.parts()
	return reg.Get(id)
}

// AddMetric validates and creates a user metric.
func (a *App) AddMetric(ctx context.Context, n types.NewCustomMetric) (types.CustomMetric, error) {
	if err := validation.AsError(validation.ValidateNewMetric(n)); err != nil {
		return types.CustomMetric{}, err
	}
	_, _, reg, _ := a.parts()
	return reg.Add(ctx, n)
}

// UpdateMetric validates and applies a definition update.
func (a *App) UpdateMetric(ctx context.Context, id string, u types.CustomMetricUpdate) (types.CustomMetric, error) {
	if err := validation.AsError(validation.ValidateMetricUpdate(u)); err != nil {
		return types.CustomMetric{}, err
	}
	_, _, reg, _ := a.parts()
	return reg.Update(ctx, id, u)
}

// DeleteMetric deactivates a system metric or removes a user metric.
func (a *App) DeleteMetric(ctx context.Context, id string) error {
	_, _, reg, _ := a.parts()
	return reg.Delete(ctx, id)
}

// ToggleMetric flips a metric's active flag.
func (a *App) ToggleMetric(ctx context.Context, id string) (types.CustomMetric, error) {
	_, _, reg, _ := a.parts()
	return reg.Toggle(ctx, id)
}
