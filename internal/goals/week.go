package goals

import (
	"github.com/hyperengineering/loopz/internal/aggregate"
	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/types"
)

// MinutesPerHour converts Golden Hours goals (hours) to logged minutes.
const MinutesPerHour = 60

// GoldenProgress is one Golden Hours category measured against its goal.
type GoldenProgress struct {
	ActualMinutes   int     `json:"actualMinutes"`
	GoalMinutes     float64 `json:"goalMinutes"`
	AdjustedMinutes float64 `json:"adjustedMinutes"`
	Progress        float64 `json:"progress"`
}

// Met reports whether the category reached its pro-rated goal.
func (g GoldenProgress) Met() bool {
	return IsGoalMet(g.Progress, 1)
}

// MetricProgress is one active metric measured against its weekly goal.
type MetricProgress struct {
	MetricID string  `json:"metricId"`
	Actual   float64 `json:"actual"`
	Goal     float64 `json:"goal"`
	Adjusted float64 `json:"adjusted"`
	// Progress is clamped to [0, 1] for positive metrics. For limits it is
	// the raw ratio and may exceed 1.
	Progress float64      `json:"progress"`
	Limit    *LimitStatus `json:"limit,omitempty"`
	Met      bool         `json:"met"`
}

// WeekProgress is everything the weekly rings, the calendar heatmap and the
// metric cards show for one week.
type WeekProgress struct {
	VacationDays     int  `json:"vacationDays"`
	DaysLogged       int  `json:"daysLogged"`
	FullVacationWeek bool `json:"fullVacationWeek"`
	// IsVacationWeek marks a heatmap cell as vacation: at least one vacation
	// day and no non-vacation day logged.
	IsVacationWeek bool `json:"isVacationWeek"`

	Building   GoldenProgress `json:"building"`
	Marketing  GoldenProgress `json:"marketing"`
	LevelingUp GoldenProgress `json:"levelingUp"`

	AllGoldenHoursMet bool             `json:"allGoldenHoursMet"`
	AnyGoldenProgress bool             `json:"anyGoldenProgress"`
	Metrics           []MetricProgress `json:"metrics"`
	AverageMood       float64          `json:"averageMood"`
	MoodLevel         int              `json:"moodLevel"`
}

// Week measures a week's totals against the weekly goals and the given
// metric definitions. Inactive metrics are skipped.
func Week(totals aggregate.Totals, g types.WeeklyGoals, defs []types.CustomMetric) WeekProgress {
	vac := totals.VacationDays
	full := IsFullVacationWeek(vac, totals.DaysLogged)

	wp := WeekProgress{
		VacationDays:     vac,
		DaysLogged:       totals.DaysLogged,
		FullVacationWeek: full,
		IsVacationWeek:   vac > 0 && vac >= totals.DaysLogged,
		Building:         golden(totals.BuildingMinutes, g.BuildingHours, vac, full),
		Marketing:        golden(totals.MarketingMinutes, g.MarketingHours, vac, full),
		LevelingUp:       golden(totals.LevelingUpMinutes, g.LevelingUpHours, vac, full),
		Metrics:          make([]MetricProgress, 0, len(defs)),
		AverageMood:      totals.AverageMood,
	}
	wp.AllGoldenHoursMet = wp.Building.Met() && wp.Marketing.Met() && wp.LevelingUp.Met()
	wp.AnyGoldenProgress = wp.Building.Progress > 0 || wp.Marketing.Progress > 0 || wp.LevelingUp.Progress > 0
	if totals.DaysLogged > 0 {
		wp.MoodLevel = types.MoodLevel(totals.AverageMood)
	}

	for _, m := range defs {
		if !m.IsActive {
			continue
		}
		wp.Metrics = append(wp.Metrics, metricProgress(m, metrics.Total(m, totals), vac, full))
	}
	return wp
}

func golden(actual int, goalHours float64, vac int, full bool) GoldenProgress {
	gp := GoldenProgress{
		ActualMinutes:   actual,
		GoalMinutes:     goalHours * MinutesPerHour,
		AdjustedMinutes: ProRateGoal(goalHours*MinutesPerHour, vac),
	}
	if full {
		gp.Progress = 1
		return gp
	}
	gp.Progress = ResolvedProgress(float64(actual), gp.GoalMinutes, vac)
	return gp
}

func metricProgress(m types.CustomMetric, actual float64, vac int, full bool) MetricProgress {
	mp := MetricProgress{
		MetricID: m.ID,
		Actual:   actual,
		Goal:     m.WeeklyGoal,
		Adjusted: ProRateGoal(m.WeeklyGoal, vac),
	}

	switch {
	case full:
		mp.Progress = 1
		mp.Met = true
	case m.WeeklyGoal > 0 && m.IsLimit():
		ls := EvaluateLimit(actual, m.WeeklyGoal, vac)
		mp.Limit = &ls
		mp.Progress = ls.Ratio
		mp.Met = !ls.Breached
	case m.WeeklyGoal > 0:
		mp.Progress = ResolvedProgress(actual, m.WeeklyGoal, vac)
		mp.Met = IsGoalMet(mp.Progress, 1)
	case actual > 0:
		// No goal but something was logged.
		mp.Progress = 1
		mp.Met = !m.IsLimit()
	default:
		mp.Met = m.IsLimit()
	}
	return mp
}
