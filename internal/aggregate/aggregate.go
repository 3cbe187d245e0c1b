// Package aggregate turns a set of daily logs into totals. Every function is
// pure and window-agnostic: callers choose which logs to pass in.
package aggregate

import (
	"math"

	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/types"
)

// Totals summarizes a set of logs.
type Totals struct {
	BuildingMinutes   int     `json:"buildingMinutes"`
	MarketingMinutes  int     `json:"marketingMinutes"`
	LevelingUpMinutes int     `json:"levelingUpMinutes"`
	WorkoutMinutes    int     `json:"workoutMinutes"`
	Drinks            float64 `json:"drinks"`
	TVMinutes         int     `json:"tvMinutes"`

	DaysLogged   int     `json:"daysLogged"`
	WorkoutDays  int     `json:"workoutDays"`
	VacationDays int     `json:"vacationDays"`
	AverageMood  float64 `json:"averageMood"`

	// CustomMetricTotals only holds ids seen in at least one log.
	CustomMetricTotals map[string]float64 `json:"customMetricTotals"`
}

// GoldenMinutes is the sum of the three Golden Hours categories.
func (t Totals) GoldenMinutes() int {
	return t.BuildingMinutes + t.MarketingMinutes + t.LevelingUpMinutes
}

// CustomTotal returns the summed value of a custom metric, 0 when absent.
func (t Totals) CustomTotal(id string) float64 {
	return t.CustomMetricTotals[id]
}

// Aggregate sums logs. An empty input yields all-zero totals.
func Aggregate(logs []types.DailyLog) Totals {
	t := Totals{CustomMetricTotals: make(map[string]float64)}
	var moodSum int

	for _, log := range logs {
		t.BuildingMinutes += log.BuildingMinutes
		t.MarketingMinutes += log.MarketingMinutes
		t.LevelingUpMinutes += log.LevelingUpMinutes
		t.WorkoutMinutes += log.WorkoutMinutes
		t.Drinks += log.Drinks
		t.TVMinutes += log.TVMinutes

		if log.WorkoutMinutes > 0 {
			t.WorkoutDays++
		}
		if log.IsVacation {
			t.VacationDays++
		}
		moodSum += log.MoodScore

		for id, v := range log.CustomMetrics {
			t.CustomMetricTotals[id] += v
		}
	}

	t.DaysLogged = len(logs)
	if t.DaysLogged > 0 {
		t.AverageMood = float64(moodSum) / float64(t.DaysLogged)
	}
	return t
}

// YearSummary is a year's totals plus the number of days elapsed in it.
type YearSummary struct {
	Totals
	Year      int `json:"year"`
	TotalDays int `json:"totalDays"`
}

// YearTotals aggregates logs for year. TotalDays counts the days of year
// up to and including today, the whole year when it is over, and 0 when it
// has not started.
func YearTotals(year int, logs []types.DailyLog, today types.Date) YearSummary {
	return YearSummary{
		Totals:    Aggregate(logs),
		Year:      year,
		TotalDays: ElapsedDays(year, today),
	}
}

// ElapsedDays returns how many days of year have begun by today.
func ElapsedDays(year int, today types.Date) int {
	switch {
	case today.Year < year:
		return 0
	case today.Year > year:
		return calendar.DaysInYear(year)
	default:
		return calendar.DaysBetween(calendar.YearStart(today), today) + 1
	}
}

// EffectiveWeeks is the number of non-vacation weeks in a span of totalDays,
// never less than one so it can be used as a divisor.
func EffectiveWeeks(totalDays, vacationDays int) int {
	effectiveDays := totalDays - vacationDays
	if effectiveDays < 1 {
		effectiveDays = 1
	}
	weeks := int(math.Ceil(float64(effectiveDays) / calendar.DaysPerWeek))
	if weeks < 1 {
		return 1
	}
	return weeks
}

// WeeklyAverages is Golden Hours minutes per effective week.
type WeeklyAverages struct {
	EffectiveWeeks int     `json:"effectiveWeeks"`
	Golden         float64 `json:"golden"`
	Building       float64 `json:"building"`
	Marketing      float64 `json:"marketing"`
	LevelingUp     float64 `json:"levelingUp"`
}

// Averages divides a year summary by its effective (non-vacation) weeks.
func Averages(s YearSummary) WeeklyAverages {
	totalDays := s.TotalDays
	if totalDays < 1 {
		totalDays = 1
	}
	weeks := EffectiveWeeks(totalDays, s.VacationDays)
	w := float64(weeks)
	return WeeklyAverages{
		EffectiveWeeks: weeks,
		Golden:         float64(s.GoldenMinutes()) / w,
		Building:       float64(s.BuildingMinutes) / w,
		Marketing:      float64(s.MarketingMinutes) / w,
		LevelingUp:     float64(s.LevelingUpMinutes) / w,
	}
}
