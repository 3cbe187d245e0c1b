package validation

import (
	"github.com/hyperengineering/loopz/internal/types"
)

const (
	MaxReflectionLength = 2000
	MaxMetricNameLength = 60
	MaxMetricDescLength = 280
	MinMoodScore        = 0
	MaxMoodScore        = 100
)

var (
	unitTypes  = []string{string(types.UnitMinutes), string(types.UnitHours), string(types.UnitCount), string(types.UnitBoolean)}
	categories = []string{string(types.CategoryPositive), string(types.CategoryNegative)}
)

// ValidateLogUpdate checks every field the update sets.
func ValidateLogUpdate(u types.LogUpdate) []ValidationError {
	var c Collector

	nonNegInt := func(field string, v *int) {
		if v != nil {
			c.Add(ValidateNonNegative(field, float64(*v)))
		}
	}
	nonNegInt("buildingMinutes", u.BuildingMinutes)
	nonNegInt("marketingMinutes", u.MarketingMinutes)
	nonNegInt("levelingUpMinutes", u.LevelingUpMinutes)
	nonNegInt("workoutMinutes", u.WorkoutMinutes)
	nonNegInt("tvMinutes", u.TVMinutes)

	if u.Drinks != nil {
		c.Add(ValidateNonNegative("drinks", *u.Drinks))
	}
	if u.MoodScore != nil {
		c.Add(ValidateRange("moodScore", float64(*u.MoodScore), MinMoodScore, MaxMoodScore))
	}
	if u.Reflection != nil {
		c.Add(ValidateUTF8("reflection", *u.Reflection))
		c.Add(ValidateNoNullBytes("reflection", *u.Reflection))
		c.Add(ValidateMaxLength("reflection", *u.Reflection, MaxReflectionLength))
	}
	for id, v := range u.CustomMetrics {
		c.Add(ValidateRequired("customMetrics", id))
		c.Add(ValidateNonNegative("customMetrics."+id, v))
	}

	return c.Errors()
}

// ValidateMetricValue checks a value entered for m. Metrics backed by a
// minutes field of the log only take whole minutes.
func ValidateMetricValue(m types.CustomMetric, v float64) []ValidationError {
	var c Collector
	c.Add(ValidateNonNegative("value", v))
	if m.IsSystemMetric && (m.LinkedField == types.FieldWorkoutMinutes || m.LinkedField == types.FieldTVMinutes) {
		c.Add(ValidateWhole("value", v))
	}
	return c.Errors()
}

// ValidateGoalsUpdate rejects negative targets and caps.
func ValidateGoalsUpdate(u types.GoalsUpdate) []ValidationError {
	var c Collector

	nonNeg := func(field string, v *float64) {
		if v != nil {
			c.Add(ValidateNonNegative(field, *v))
		}
	}
	nonNeg("buildingHours", u.BuildingHours)
	nonNeg("marketingHours", u.MarketingHours)
	nonNeg("levelingUpHours", u.LevelingUpHours)
	nonNeg("maxDrinks", u.MaxDrinks)
	nonNeg("maxTvHours", u.MaxTVHours)
	if u.WorkoutCount != nil {
		c.Add(ValidateRange("workoutCount", float64(*u.WorkoutCount), 0, 7))
	}

	return c.Errors()
}

// ValidateNewMetric checks a metric definition before it is created.
func ValidateNewMetric(m types.NewCustomMetric) []ValidationError {
	var c Collector

	c.Add(ValidateRequired("name", m.Name))
	c.Add(ValidateMaxLength("name", m.Name, MaxMetricNameLength))
	c.Add(ValidateNoNullBytes("name", m.Name))
	c.Add(ValidateMaxLength("description", m.Description, MaxMetricDescLength))
	c.Add(ValidateEnum("unitType", string(m.UnitType), unitTypes))
	c.Add(ValidateEnum("category", string(m.Category), categories))
	c.Add(ValidateNonNegative("weeklyGoal", m.WeeklyGoal))
	if m.UnitType == types.UnitBoolean {
		c.Add(ValidateRange("weeklyGoal", m.WeeklyGoal, 0, 7))
	}

	return c.Errors()
}

// ValidateMetricUpdate checks the fields a metric update sets.
func ValidateMetricUpdate(u types.CustomMetricUpdate) []ValidationError {
	var c Collector

	if u.Name != nil {
		c.Add(ValidateRequired("name", *u.Name))
		c.Add(ValidateMaxLength("name", *u.Name, MaxMetricNameLength))
	}
	if u.Description != nil {
		c.Add(ValidateMaxLength("description", *u.Description, MaxMetricDescLength))
	}
	if u.UnitType != nil {
		c.Add(ValidateEnum("unitType", string(*u.UnitType), unitTypes))
	}
	if u.Category != nil {
		c.Add(ValidateEnum("category", string(*u.Category), categories))
	}
	if u.WeeklyGoal != nil {
		c.Add(ValidateNonNegative("weeklyGoal", *u.WeeklyGoal))
	}

	return c.Errors()
}
