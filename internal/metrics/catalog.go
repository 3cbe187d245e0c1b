// Package metrics manages metric definitions: the three built-in system
// metrics backed by DailyLog fields and any number of user metrics stored
// in the log's sparse custom map.
package metrics

import (
	"time"

	"github.com/hyperengineering/loopz/internal/types"
)

// System metric ids.
const (
	IDExercise  = "system_workout"
	IDDrinks    = "system_drinks"
	IDStreaming = "system_streaming"
)

// CustomIDPrefix starts every user metric id.
const CustomIDPrefix = "custom_"

// Palette is the ordered set of colors handed out to new metrics.
var Palette = []string{
	"#8B5CF6", // purple
	"#F59E0B", // gold
	"#E7D8B1", // cream
	"#10B981", // emerald
	"#3B82F6", // blue
	"#EC4899", // pink
	"#F97316", // orange
	"#06B6D4", // cyan
}

var systemCreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// SystemMetrics returns fresh copies of the built-in metric definitions in
// display order.
func SystemMetrics() []types.CustomMetric {
	return []types.CustomMetric{
		{
			ID:             IDExercise,
			Name:           "Exercise",
			Description:    "Any intentional physical exercise. 20 min a day is 140 mins a week.",
			UnitType:       types.UnitMinutes,
			Category:       types.CategoryPositive,
			WeeklyGoal:     150,
			Color:          "#A78BFA",
			IsActive:       true,
			CreatedAt:      systemCreatedAt,
			IsSystemMetric: true,
			LinkedField:    types.FieldWorkoutMinutes,
		},
		{
			ID:             IDDrinks,
			Name:           "Drinks",
			Description:    "Number of alcoholic drinks consumed.",
			UnitType:       types.UnitCount,
			Category:       types.CategoryNegative,
			WeeklyGoal:     7,
			Color:          "#FBBF24",
			IsActive:       true,
			CreatedAt:      systemCreatedAt,
			IsSystemMetric: true,
			LinkedField:    types.FieldDrinks,
		},
		{
			ID:             IDStreaming,
			Name:           "Streaming",
			Description:    "Passive screen consumption not related to learning or building.",
			UnitType:       types.UnitMinutes,
			Category:       types.CategoryNegative,
			WeeklyGoal:     420,
			Color:          "#FCD34D",
			IsActive:       true,
			CreatedAt:      systemCreatedAt,
			IsSystemMetric: true,
			LinkedField:    types.FieldTVMinutes,
		},
	}
}

// SystemMetric returns the built-in definition for id.
func SystemMetric(id string) (types.CustomMetric, bool) {
	for _, m := range SystemMetrics() {
		if m.ID == id {
			return m, true
		}
	}
	return types.CustomMetric{}, false
}

// NextColor returns the first palette color no existing metric uses, or
// cycles through the palette by count once all are taken.
func NextColor(existing []types.CustomMetric) string {
	used := make(map[string]bool, len(existing))
	for _, m := range existing {
		used[m.Color] = true
	}
	for _, c := range Palette {
		if !used[c] {
			return c
		}
	}
	return Palette[len(existing)%len(Palette)]
}
