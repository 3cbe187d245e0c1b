package app

import (
	"context"
	"fmt"

	"github.com/hyperengineering/loopz/internal/aggregate"
	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/goals"
	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/types"
)

// WeekReport is one Monday-Sunday week with its progress.
type WeekReport struct {
	WeekStart types.Date         `json:"weekStart"`
	WeekEnd   types.Date         `json:"weekEnd"`
	ISOWeek   int                `json:"isoWeek"`
	Totals    aggregate.Totals   `json:"totals"`
	Progress  goals.WeekProgress `json:"progress"`
}

// WeekProgress measures the week containing date against the current goals
// and active metrics.
func (a *App) WeekProgress(ctx context.Context, date types.Date) (WeekReport, error) {
	logs, g, reg, _ := a.parts()
	weekLogs, err := logs.QueryWeek(ctx, date)
	if err != nil {
		return WeekReport{}, err
	}
	totals := aggregate.Aggregate(weekLogs)
	return WeekReport{
		WeekStart: calendar.WeekStart(date),
		WeekEnd:   calendar.WeekEnd(date),
		ISOWeek:   calendar.ISOWeek(date),
		Totals:    totals,
		Progress:  goals.Week(totals, g.Goals(), reg.Active()),
	}, nil
}

// YearReport is a year's totals with weekly averages over non-vacation weeks.
type YearReport struct {
	aggregate.YearSummary
	Averages aggregate.WeeklyAverages `json:"weeklyAverages"`
}

// YearSummary aggregates year, counting elapsed days up to today.
func (a *App) YearSummary(ctx context.Context, year int) (YearReport, error) {
	logs, _, _, _ := a.parts()
	yearLogs, err := logs.QueryYear(ctx, year)
	if err != nil {
		return YearReport{}, err
	}
	s := aggregate.YearTotals(year, yearLogs, a.Today())
	return YearReport{YearSummary: s, Averages: aggregate.Averages(s)}, nil
}

// ChartMetric is a chartable series source.
type ChartMetric struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	UnitType types.UnitType `json:"unitType"`
	value    func(types.DailyLog) float64
}

// Golden Hours chart ids.
const (
	ChartBuilding   = "buildingMinutes"
	ChartMarketing  = "marketingMinutes"
	ChartLevelingUp = "levelingUpMinutes"
)

var goldenCharts = []ChartMetric{
	{ID: ChartBuilding, Name: "Building", UnitType: types.UnitMinutes,
		value: func(l types.DailyLog) float64 { return float64(l.BuildingMinutes) }},
	{ID: ChartMarketing, Name: "Marketing", UnitType: types.UnitMinutes,
		value: func(l types.DailyLog) float64 { return float64(l.MarketingMinutes) }},
	{ID: ChartLevelingUp, Name: "Learning", UnitType: types.UnitMinutes,
		value: func(l types.DailyLog) float64 { return float64(l.LevelingUpMinutes) }},
}

// ChartMetrics lists the Golden Hours categories followed by active metrics.
func (a *App) ChartMetrics() []ChartMetric {
	_, _, reg, _ := a.parts()
	out := make([]ChartMetric, 0, len(goldenCharts)+reg.Count())
	out = append(out, goldenCharts...)
	for _, m := range reg.Active() {
		m := m
		out = append(out, ChartMetric{
			ID:       m.ID,
			Name:     m.Name,
			UnitType: m.UnitType,
			value:    func(l types.DailyLog) float64 { return metrics.Value(m, l) },
		})
	}
	return out
}

// ChartReport is one metric charted over a range ending today.
type ChartReport struct {
	Metric     ChartMetric     `json:"metric"`
	Range      aggregate.Range `json:"range"`
	RangeLabel string          `json:"rangeLabel"`
	aggregate.Series
}

// Chart buckets metricID over rng. Days without a log contribute nothing.
func (a *App) Chart(ctx context.Context, rng aggregate.Range, metricID string) (ChartReport, error) {
	var cm *ChartMetric
	for _, c := range a.ChartMetrics() {
		if c.ID == metricID {
			c := c
			cm = &c
			break
		}
	}
	if cm == nil {
		return ChartReport{}, fmt.Errorf("%w: %s", metrics.ErrMetricNotFound, metricID)
	}

	buckets := aggregate.Buckets(rng, a.Today())
	if len(buckets) == 0 {
		return ChartReport{Metric: *cm, Range: rng, RangeLabel: rng.Label()}, nil
	}
	first := buckets[0].Dates[0]
	last := buckets[len(buckets)-1].Dates
	logs, _, _, _ := a.parts()
	stored, err := logs.QueryRange(ctx, first, last[len(last)-1])
	if err != nil {
		return ChartReport{}, err
	}
	byDate := make(map[types.Date]types.DailyLog, len(stored))
	for _, l := range stored {
		byDate[l.Date] = l
	}
	lookup := func(d types.Date) types.DailyLog { return byDate[d] }

	return ChartReport{
		Metric:     *cm,
		Range:      rng,
		RangeLabel: rng.Label(),
		Series:     aggregate.Chart(buckets, lookup, cm.value),
	}, nil
}
