package metrics

import (
	"testing"

	"github.com/hyperengineering/loopz/internal/aggregate"
	"github.com/hyperengineering/loopz/internal/types"
)

func TestValue_RoundTrip(t *testing.T) {
	custom := types.CustomMetric{ID: "custom_read", UnitType: types.UnitMinutes}
	boolean := types.CustomMetric{ID: "custom_meditated", UnitType: types.UnitBoolean}

	tests := []struct {
		name   string
		metric types.CustomMetric
		value  float64
	}{
		{"exercise", mustSystem(t, IDExercise), 45},
		{"drinks half step", mustSystem(t, IDDrinks), 2.5},
		{"streaming", mustSystem(t, IDStreaming), 120},
		{"custom", custom, 30},
		{"custom boolean", boolean, 1},
		{"zero", custom, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := types.DailyLog{
				Date:          types.MustParseDate("2024-01-01"),
				CustomMetrics: map[string]float64{"custom_other": 9},
			}
			got := Value(tt.metric, SetValue(tt.metric, tt.value).Apply(base))
			if got != tt.value {
				t.Errorf("Value(SetValue(%v)) = %v", tt.value, got)
			}
		})
	}
}

func TestSetValue_TouchesOnlyItsField(t *testing.T) {
	base := types.DailyLog{
		WorkoutMinutes: 10,
		Drinks:         1,
		CustomMetrics:  map[string]float64{"custom_other": 9},
	}

	log := SetValue(mustSystem(t, IDDrinks), 3).Apply(base)
	if log.WorkoutMinutes != 10 || log.CustomValue("custom_other") != 9 {
		t.Errorf("system write leaked: %+v", log)
	}

	log = SetValue(types.CustomMetric{ID: "custom_new"}, 4).Apply(base)
	if log.Drinks != 1 || log.CustomValue("custom_other") != 9 || log.CustomValue("custom_new") != 4 {
		t.Errorf("custom write leaked: %+v", log)
	}
}

func TestValue_UserMetricIgnoresLinkedField(t *testing.T) {
	// Only system metrics may read log fields.
	m := types.CustomMetric{ID: "custom_x", LinkedField: types.FieldDrinks}
	log := types.DailyLog{Drinks: 5}
	if got := Value(m, log); got != 0 {
		t.Errorf("Value() = %v, want 0", got)
	}
}

func TestTotal(t *testing.T) {
	totals := aggregate.Aggregate([]types.DailyLog{
		{WorkoutMinutes: 30, Drinks: 2, TVMinutes: 60, CustomMetrics: map[string]float64{"custom_read": 15}},
		{WorkoutMinutes: 20, Drinks: 1.5, CustomMetrics: map[string]float64{"custom_read": 5}},
	})

	tests := []struct {
		metric types.CustomMetric
		want   float64
	}{
		{mustSystem(t, IDExercise), 50},
		{mustSystem(t, IDDrinks), 3.5},
		{mustSystem(t, IDStreaming), 60},
		{types.CustomMetric{ID: "custom_read"}, 20},
		{types.CustomMetric{ID: "custom_missing"}, 0},
	}
	for _, tt := range tests {
		if got := Total(tt.metric, totals); got != tt.want {
			t.Errorf("Total(%s) = %v, want %v", tt.metric.ID, got, tt.want)
		}
	}
}

func mustSystem(t *testing.T, id string) types.CustomMetric {
	t.Helper()
	m, ok := SystemMetric(id)
	if !ok {
		t.Fatalf("SystemMetric(%q) not found", id)
	}
	return m
}
