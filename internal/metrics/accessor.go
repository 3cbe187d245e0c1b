package metrics

import (
	"math"

	"github.com/hyperengineering/loopz/internal/aggregate"
	"github.com/hyperengineering/loopz/internal/types"
)

// fieldAccessor reads and writes one DailyLog field that backs a system
// metric, plus the matching weekly total.
type fieldAccessor struct {
	get   func(types.DailyLog) float64
	set   func(float64) types.LogUpdate
	total func(aggregate.Totals) float64
}

var linkedFields = map[types.LinkedField]fieldAccessor{
	types.FieldWorkoutMinutes: {
		get: func(l types.DailyLog) float64 { return float64(l.WorkoutMinutes) },
		set: func(v float64) types.LogUpdate {
			n := minutes(v)
			return types.LogUpdate{WorkoutMinutes: &n}
		},
		total: func(t aggregate.Totals) float64 { return float64(t.WorkoutMinutes) },
	},
	types.FieldDrinks: {
		get: func(l types.DailyLog) float64 { return l.Drinks },
		set: func(v float64) types.LogUpdate {
			return types.LogUpdate{Drinks: &v}
		},
		total: func(t aggregate.Totals) float64 { return t.Drinks },
	},
	types.FieldTVMinutes: {
		get: func(l types.DailyLog) float64 { return float64(l.TVMinutes) },
		set: func(v float64) types.LogUpdate {
			n := minutes(v)
			return types.LogUpdate{TVMinutes: &n}
		},
		total: func(t aggregate.Totals) float64 { return float64(t.TVMinutes) },
	},
}

func minutes(v float64) int {
	return int(math.Round(v))
}

func accessorFor(m types.CustomMetric) (fieldAccessor, bool) {
	if !m.IsSystemMetric || m.LinkedField == types.FieldNone {
		return fieldAccessor{}, false
	}
	a, ok := linkedFields[m.LinkedField]
	return a, ok
}

// Value reads the metric's value from a log. Unset values read as 0.
func Value(m types.CustomMetric, log types.DailyLog) float64 {
	if a, ok := accessorFor(m); ok {
		return a.get(log)
	}
	return log.CustomValue(m.ID)
}

// SetValue builds the partial update that stores v for the metric.
// Minute-backed system fields take whole minutes; see
// validation.ValidateMetricValue.
func SetValue(m types.CustomMetric, v float64) types.LogUpdate {
	if a, ok := accessorFor(m); ok {
		return a.set(v)
	}
	return types.LogUpdate{CustomMetrics: map[string]float64{m.ID: v}}
}

// Total reads the metric's summed value from aggregated totals.
func Total(m types.CustomMetric, t aggregate.Totals) float64 {
	if a, ok := accessorFor(m); ok {
		return a.total(t)
	}
	return t.CustomTotal(m.ID)
}
