// Package calendar holds the week, month and year arithmetic shared by the
// log repository, the aggregation engine and the streak tracker.
// Weeks run Monday through Sunday.
package calendar

import (
	"time"

	"github.com/hyperengineering/loopz/internal/types"
)

// DaysPerWeek is the denominator of every weekly pro-ration.
const DaysPerWeek = 7

// Clock supplies "today". Inject a fixed clock in tests.
type Clock interface {
	Today() types.Date
}

// SystemClock reads today's date from the wall clock in Location.
type SystemClock struct {
	Location *time.Location
}

// Today returns the current calendar date.
func (c SystemClock) Today() types.Date {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return types.DateOf(time.Now().In(loc))
}

// FixedClock always returns the same day.
type FixedClock types.Date

// Today returns the fixed date.
func (c FixedClock) Today() types.Date {
	return types.Date(c)
}

// WeekStart returns the Monday on or before d.
func WeekStart(d types.Date) types.Date {
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDays(-offset)
}

// WeekEnd returns the Sunday on or after d.
func WeekEnd(d types.Date) types.Date {
	return WeekStart(d).AddDays(6)
}

// WeekDates returns the seven dates of d's week, Monday first.
func WeekDates(d types.Date) []types.Date {
	start := WeekStart(d)
	dates := make([]types.Date, DaysPerWeek)
	for i := range dates {
		dates[i] = start.AddDays(i)
	}
	return dates
}

// MonthDates returns every date of the given month.
func MonthDates(year int, month time.Month) []types.Date {
	first := types.NewDate(year, month, 1)
	n := DaysInMonth(year, month)
	dates := make([]types.Date, n)
	for i := range dates {
		dates[i] = first.AddDays(i)
	}
	return dates
}

// DaysInMonth returns the length of a month.
func DaysInMonth(year int, month time.Month) int {
	return types.NewDate(year, month+1, 0).Day
}

// YearStart returns January 1st of d's year.
func YearStart(d types.Date) types.Date {
	return types.NewDate(d.Year, time.January, 1)
}

// DaysInYear returns 365 or 366.
func DaysInYear(year int) int {
	return types.NewDate(year, time.December, 31).Time().YearDay()
}

// IsYesterday reports whether d is the day before today.
func IsYesterday(d, today types.Date) bool {
	return d == today.AddDays(-1)
}

// DaysBetween returns the absolute number of days separating a and b.
func DaysBetween(a, b types.Date) int {
	diff := int(b.Time().Sub(a.Time()).Hours() / 24)
	if diff < 0 {
		return -diff
	}
	return diff
}

// ISOWeek returns the ISO-8601 week number of d.
func ISOWeek(d types.Date) int {
	_, w := d.Time().ISOWeek()
	return w
}

// FirstMonday returns the first Monday falling in year.
func FirstMonday(year int) types.Date {
	jan1 := types.NewDate(year, time.January, 1)
	offset := (int(time.Monday) - int(jan1.Weekday()) + 7) % 7
	return jan1.AddDays(offset)
}

// WeekStartsInYear returns the Monday of every week whose Monday lies in year.
func WeekStartsInYear(year int) []types.Date {
	var starts []types.Date
	for d := FirstMonday(year); d.Year == year; d = d.AddDays(7) {
		starts = append(starts, d)
	}
	return starts
}

// WeeksPerMonth counts, for each month of year, the weeks whose Monday falls
// in that month. Index 0 is January.
func WeeksPerMonth(year int) [12]int {
	var counts [12]int
	for _, monday := range WeekStartsInYear(year) {
		counts[monday.Month-1]++
	}
	return counts
}
