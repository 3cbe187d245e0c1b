package metrics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hyperengineering/loopz/internal/types"
)

// UnitLabel is the weekly-goal suffix for a unit ("min/week").
func UnitLabel(u types.UnitType) string {
	switch u {
	case types.UnitMinutes:
		return "min/week"
	case types.UnitHours:
		return "hrs/week"
	case types.UnitCount:
		return "/week"
	case types.UnitBoolean:
		return "days/week"
	default:
		return ""
	}
}

// UnitDisplayLabel is the human name of a unit.
func UnitDisplayLabel(u types.UnitType) string {
	switch u {
	case types.UnitMinutes:
		return "Minutes"
	case types.UnitHours:
		return "Hours"
	case types.UnitCount:
		return "Count"
	case types.UnitBoolean:
		return "Yes/No"
	default:
		return ""
	}
}

// FormatValue renders a metric value in its unit.
func FormatValue(v float64, u types.UnitType) string {
	switch u {
	case types.UnitMinutes:
		if v >= 60 {
			hours := math.Floor(v / 60)
			mins := math.Mod(v, 60)
			if mins > 0 {
				return fmt.Sprintf("%sh %sm", num(hours), num(mins))
			}
			return num(hours) + "h"
		}
		return num(v) + "m"
	case types.UnitHours:
		return num(v) + "h"
	case types.UnitBoolean:
		if v == 1 {
			return "Yes"
		}
		return "No"
	default:
		return num(v)
	}
}

// FormatMinutes renders a duration in minutes as "0m", "45m", "2h" or "1h 30m".
func FormatMinutes(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
}

// DefaultIncrement is the stepper increment for a unit.
func DefaultIncrement(u types.UnitType) float64 {
	if u == types.UnitMinutes {
		return 15
	}
	return 1
}

var systemIncrements = map[string]float64{
	IDExercise:  5,
	IDDrinks:    1,
	IDStreaming: 15,
}

// GoldenHoursIncrement is the stepper increment for the three Golden Hours
// categories, in minutes.
const GoldenHoursIncrement = 15

// Increment is the stepper increment for a metric. System metrics have
// fixed increments; everything else falls back to its unit.
func Increment(m types.CustomMetric) float64 {
	if m.IsSystemMetric {
		if inc, ok := systemIncrements[m.ID]; ok {
			return inc
		}
	}
	return DefaultIncrement(m.UnitType)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
