package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/app"
)

const (
	calendarGolden = "golden"
	calendarMood   = "mood"
)

func newCalendarCmd(c *cli) *cobra.Command {
	var show string
	cmd := &cobra.Command{
		Use:   "calendar [year]",
		Short: "Show a weekly heatmap for a year (default this year)",
		Long: `Show one cell per Monday week, grouped by the month of its Monday.

  █ goal met   ▓ half way   ░ started   · nothing logged   v vacation   ! over limit

--show picks what the cells measure: golden (the three Golden Hours
categories together), mood (average level 1-9, + for 10), or a metric id
from "loopz metrics list".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			year := a.Today().Year
			if len(args) == 1 {
				year, err = strconv.Atoi(args[0])
				if err != nil || year < 1 || year > 9999 {
					return fmt.Errorf("invalid year %q", args[0])
				}
			}
			var limit bool
			if show != calendarGolden && show != calendarMood {
				m, err := a.Metric(show)
				if err != nil {
					return fmt.Errorf("--show %q: %w", show, err)
				}
				limit = m.IsLimit()
			}

			cal, err := a.YearCalendar(cmd.Context(), year)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), cal)
			}
			printCalendar(cmd.OutOrStdout(), cal, func(w app.CalendarWeek) string {
				return calendarCell(w, show, limit)
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&show, "show", calendarGolden, "What the cells measure: golden, mood or a metric id")
	return cmd
}

func printCalendar(out io.Writer, cal app.YearCalendar, cell func(app.CalendarWeek) string) {
	fmt.Fprintf(out, "%d\n", cal.Year)
	for _, m := range cal.Months {
		cells := make([]string, 0, cal.MaxWeeksPerMonth)
		for _, w := range m.Weeks {
			cells = append(cells, cell(w))
		}
		for len(cells) < cal.MaxWeeksPerMonth {
			cells = append(cells, " ")
		}
		fmt.Fprintf(out, "%s  %s\n", m.Name[:3], strings.Join(cells, " "))
	}
}

// calendarCell renders one week for the selected measure.
func calendarCell(w app.CalendarWeek, show string, limit bool) string {
	switch {
	case w.IsFuture:
		return " "
	case !w.HasData:
		return "·"
	case w.IsVacation:
		return "v"
	}

	switch show {
	case calendarMood:
		if w.MoodLevel >= 10 {
			return "+"
		}
		return strconv.Itoa(w.MoodLevel)
	case calendarGolden:
		return level((w.BuildingProgress + w.MarketingProgress + w.LearningProgress) / 3)
	}
	mc := w.Metrics[show]
	if limit {
		if mc.Progress > 1 {
			return "!"
		}
		return "█"
	}
	return level(mc.Progress)
}

func level(progress float64) string {
	switch {
	case progress >= 1:
		return "█"
	case progress >= 0.5:
		return "▓"
	case progress > 0:
		return "░"
	default:
		return "·"
	}
}
