package aggregate

import (
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/loopz/internal/calendar"
	"github.com/hyperengineering/loopz/internal/types"
)

// Range selects how chart buckets are laid out.
type Range string

const (
	// RangeDays is the last 14 days, one bucket per day.
	RangeDays Range = "14d"
	// RangeWeeks is the last 12 Monday weeks, one bucket per week.
	RangeWeeks Range = "3m"
	// RangeMonths is the last 12 calendar months, one bucket per month.
	RangeMonths Range = "1y"
)

// ErrUnknownRange is returned by ParseRange for anything but 14d, 3m or 1y.
var ErrUnknownRange = errors.New("unknown chart range")

// ParseRange accepts the chart range identifiers.
func ParseRange(s string) (Range, error) {
	switch r := Range(s); r {
	case RangeDays, RangeWeeks, RangeMonths:
		return r, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownRange, s)
	}
}

// Label is the caption shown under a chart.
func (r Range) Label() string {
	switch r {
	case RangeWeeks:
		return "Last 3 months"
	case RangeMonths:
		return "Last year"
	default:
		return "Last 14 days"
	}
}

// Bucket is a labelled, contiguous run of dates.
type Bucket struct {
	Label string       `json:"label"`
	Dates []types.Date `json:"-"`
}

// Buckets lays out the chart buckets for r ending at today.
func Buckets(r Range, today types.Date) []Bucket {
	switch r {
	case RangeWeeks:
		return weekBuckets(12, today)
	case RangeMonths:
		return monthBuckets(12, today)
	default:
		return dayBuckets(14, today)
	}
}

func dayBuckets(n int, today types.Date) []Bucket {
	buckets := make([]Bucket, n)
	for i := 0; i < n; i++ {
		day := today.AddDays(i - (n - 1))
		buckets[i] = Bucket{Label: shortLabel(day), Dates: []types.Date{day}}
	}
	return buckets
}

func weekBuckets(n int, today types.Date) []Bucket {
	start := calendar.WeekStart(today).AddDays(-7 * (n - 1))
	buckets := make([]Bucket, n)
	for i := 0; i < n; i++ {
		dates := calendar.WeekDates(start.AddDays(7 * i))
		buckets[i] = Bucket{
			Label: shortLabel(dates[0]) + "–" + shortLabel(dates[len(dates)-1]),
			Dates: dates,
		}
	}
	return buckets
}

func monthBuckets(n int, today types.Date) []Bucket {
	first := types.NewDate(today.Year, today.Month, 1)
	buckets := make([]Bucket, n)
	for i := 0; i < n; i++ {
		m := types.NewDate(first.Year, first.Month+time.Month(i-(n-1)), 1)
		buckets[i] = Bucket{
			Label: m.Month.String()[:3],
			Dates: calendar.MonthDates(m.Year, m.Month),
		}
	}
	return buckets
}

func shortLabel(d types.Date) string {
	return fmt.Sprintf("%s %d", d.Month.String()[:3], d.Day)
}

// Series is one metric charted over buckets.
type Series struct {
	Labels        []string  `json:"labels"`
	Values        []float64 `json:"values"`
	Total         float64   `json:"total"`
	TotalDays     int       `json:"totalDays"`
	AveragePerDay float64   `json:"averagePerDay"`
}

// Chart sums value over each bucket. lookup resolves a date to its log;
// missing dates should resolve to a zero log.
func Chart(buckets []Bucket, lookup func(types.Date) types.DailyLog, value func(types.DailyLog) float64) Series {
	s := Series{
		Labels: make([]string, len(buckets)),
		Values: make([]float64, len(buckets)),
	}
	for i, b := range buckets {
		s.Labels[i] = b.Label
		for _, date := range b.Dates {
			s.Values[i] += value(lookup(date))
		}
		s.Total += s.Values[i]
		s.TotalDays += len(b.Dates)
	}
	days := s.TotalDays
	if days < 1 {
		days = 1
	}
	s.AveragePerDay = s.Total / float64(days)
	return s
}
