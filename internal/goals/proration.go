// Package goals scales weekly goals down for vacation days and computes
// progress against them. The calculators in this file are pure and never
// fail: every degenerate input resolves to 0 or 1.
package goals

import (
	"math"

	"github.com/hyperengineering/loopz/internal/calendar"
)

// VacationMultiplier is the share of totalDays that were not vacation.
// The result is in [0, 1]. A non-positive totalDays yields 0.
func VacationMultiplier(vacationDays, totalDays int) float64 {
	if totalDays <= 0 {
		return 0
	}
	working := totalDays - vacationDays
	if working < 0 {
		working = 0
	}
	if working > totalDays {
		working = totalDays
	}
	return float64(working) / float64(totalDays)
}

// WeekMultiplier is VacationMultiplier over a seven day week.
func WeekMultiplier(vacationDays int) float64 {
	return VacationMultiplier(vacationDays, calendar.DaysPerWeek)
}

// ProRateGoal scales a weekly goal by the week's vacation multiplier.
func ProRateGoal(goal float64, vacationDays int) float64 {
	return goal * WeekMultiplier(vacationDays)
}

// Progress returns actual as a fraction of the pro-rated goal, clamped to
// [0, 1]. ok is false when vacation covers the whole week; callers treat that
// as goal met.
func Progress(actual, goal float64, vacationDays int) (progress float64, ok bool) {
	if vacationDays >= calendar.DaysPerWeek {
		return 0, false
	}
	if goal <= 0 {
		return 0, true
	}
	adjusted := ProRateGoal(goal, vacationDays)
	if adjusted <= 0 {
		if actual > 0 {
			return 1, true
		}
		return 0, true
	}
	return clamp01(actual / adjusted), true
}

// ResolvedProgress is Progress with the full-vacation case resolved to 1.
func ResolvedProgress(actual, goal float64, vacationDays int) float64 {
	p, ok := Progress(actual, goal, vacationDays)
	if !ok {
		return 1
	}
	return p
}

// IsFullVacationWeek reports whether vacation covers the week: all seven
// days, or every day that was logged.
func IsFullVacationWeek(vacationDays, daysLogged int) bool {
	return vacationDays >= calendar.DaysPerWeek || (daysLogged > 0 && vacationDays >= daysLogged)
}

// LimitStatus is a negative metric measured against its pro-rated ceiling.
type LimitStatus struct {
	Adjusted float64 `json:"adjusted"`
	// Ratio is actual/Adjusted and is not clamped; it is 0 when Adjusted is 0.
	Ratio    float64 `json:"ratio"`
	Excess   float64 `json:"excess"`
	Breached bool    `json:"breached"`
}

// EvaluateLimit measures actual against limit pro-rated for vacationDays.
func EvaluateLimit(actual, limit float64, vacationDays int) LimitStatus {
	s := LimitStatus{Adjusted: ProRateGoal(limit, vacationDays)}
	if s.Adjusted > 0 {
		s.Ratio = actual / s.Adjusted
	}
	s.Excess = math.Max(0, actual-s.Adjusted)
	s.Breached = s.Excess > 0
	return s
}

// Percent is current as a whole percentage of goal, capped at 100.
// A zero goal is 0%.
func Percent(current, goal float64) int {
	if goal == 0 {
		return 0
	}
	return int(math.Min(math.Round(current/goal*100), 100))
}

// IsGoalMet reports whether current has reached goal.
func IsGoalMet(current, goal float64) bool {
	return current >= goal
}

// Remaining is what is still needed to reach goal, never negative.
func Remaining(current, goal float64) float64 {
	return math.Max(0, goal-current)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
