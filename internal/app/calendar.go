package app

import (
	"context"
	"math"
	"time"

	"github.com/hyperengineering/loopz/internal/aggregate"
	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/goals"
	"github.com/hyperengineering/loopz/internal/types"
)

// CalendarMetric is one metric's cell in a heatmap week.
type CalendarMetric struct {
	Progress float64 `json:"progress"`
	// Excess is how far a limit was overrun. Minute metrics report whole hours.
	Excess float64 `json:"excess"`
}

// CalendarWeek is one heatmap cell: a Monday week and its progress.
type CalendarWeek struct {
	WeekStart         types.Date                `json:"weekStart"`
	WeekNumber        int                       `json:"weekNumber"`
	BuildingProgress  float64                   `json:"buildingProgress"`
	MarketingProgress float64                   `json:"marketingProgress"`
	LearningProgress  float64                   `json:"learningProgress"`
	Metrics           map[string]CalendarMetric `json:"metrics"`
	MoodScore         float64                   `json:"moodScore"`
	MoodLevel         int                       `json:"moodLevel"`
	IsVacation        bool                      `json:"isVacation"`
	HasData           bool                      `json:"hasData"`
	IsFuture          bool                      `json:"isFuture"`
}

// CalendarMonth holds the weeks whose Monday falls in Month.
type CalendarMonth struct {
	Month time.Month     `json:"month"`
	Name  string         `json:"name"`
	Weeks []CalendarWeek `json:"weeks"`
}

// YearCalendar is the heatmap for one year, January first.
type YearCalendar struct {
	Year             int             `json:"year"`
	MaxWeeksPerMonth int             `json:"maxWeeksPerMonth"`
	Months           []CalendarMonth `json:"months"`
}

// YearCalendar measures every Monday week of year against the current goals
// and active metrics. A week belongs to the month of its Monday, so the
// last week of December may run into the next year.
func (a *App) YearCalendar(ctx context.Context, year int) (YearCalendar, error) {
	logs, g, reg, _ := a.parts()
	today := a.Today()

	cal := YearCalendar{Year: year, Months: make([]CalendarMonth, 12)}
	for i, n := range calendar.WeeksPerMonth(year) {
		m := time.Month(i + 1)
		cal.Months[i] = CalendarMonth{Month: m, Name: m.String(), Weeks: make([]CalendarWeek, 0, n)}
		if n > cal.MaxWeeksPerMonth {
			cal.MaxWeeksPerMonth = n
		}
	}

	mondays := calendar.WeekStartsInYear(year)
	if len(mondays) == 0 {
		return cal, nil
	}
	stored, err := logs.QueryRange(ctx, mondays[0], calendar.WeekEnd(mondays[len(mondays)-1]))
	if err != nil {
		return YearCalendar{}, err
	}
	byWeek := make(map[types.Date][]types.DailyLog, len(mondays))
	for _, l := range stored {
		start := calendar.WeekStart(l.Date)
		byWeek[start] = append(byWeek[start], l)
	}

	weeklyGoals := g.Goals()
	defs := reg.Active()
	units := make(map[string]types.UnitType, len(defs))
	for _, m := range defs {
		units[m.ID] = m.UnitType
	}
	for _, monday := range mondays {
		totals := aggregate.Aggregate(byWeek[monday])
		wp := goals.Week(totals, weeklyGoals, defs)

		week := CalendarWeek{
			WeekStart:         monday,
			WeekNumber:        calendar.ISOWeek(monday),
			BuildingProgress:  wp.Building.Progress,
			MarketingProgress: wp.Marketing.Progress,
			LearningProgress:  wp.LevelingUp.Progress,
			Metrics:           make(map[string]CalendarMetric, len(wp.Metrics)),
			MoodScore:         wp.AverageMood,
			MoodLevel:         wp.MoodLevel,
			IsVacation:        wp.IsVacationWeek,
			HasData:           wp.DaysLogged > 0,
			IsFuture:          today.Before(monday),
		}
		for _, mp := range wp.Metrics {
			cell := CalendarMetric{Progress: mp.Progress}
			if mp.Limit != nil {
				cell.Excess = mp.Limit.Excess
				if units[mp.MetricID] == types.UnitMinutes {
					cell.Excess = math.Round(cell.Excess / 60)
				}
			}
			week.Metrics[mp.MetricID] = cell
		}

		idx := monday.Month - 1
		cal.Months[idx].Weeks = append(cal.Months[idx].Weeks, week)
	}
	return cal, nil
}
