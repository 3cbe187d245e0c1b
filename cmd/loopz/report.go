package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/app"
	"github.com/hyperengineering/loopz/internal/goals"
	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/types"
)

func newWeekCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "week [date]",
		Short: "Show progress for the week containing date (default this week)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			date, err := parseDateArg(args, a.Today())
			if err != nil {
				return err
			}
			report, err := a.WeekProgress(cmd.Context(), date)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printWeek(cmd.OutOrStdout(), report, a)
			return nil
		},
	}
}

func printWeek(out io.Writer, r app.WeekReport, a *app.App) {
	p := r.Progress
	fmt.Fprintf(out, "Week %d: %s to %s\n", r.ISOWeek, r.WeekStart, r.WeekEnd)
	fmt.Fprintf(out, "Days logged: %d, vacation days: %d\n", p.DaysLogged, p.VacationDays)
	if p.FullVacationWeek {
		fmt.Fprintln(out, "Full vacation week: goals are paused.")
		return
	}
	fmt.Fprintln(out)

	w := newTabWriter(out)
	fmt.Fprintln(w, "CATEGORY\tACTUAL\tGOAL\tLEFT\tPROGRESS")
	golden := []struct {
		name string
		g    goals.GoldenProgress
	}{
		{"Building", p.Building},
		{"Marketing", p.Marketing},
		{"Learning", p.LevelingUp},
	}
	for _, row := range golden {
		left := goals.Remaining(float64(row.g.ActualMinutes), row.g.AdjustedMinutes)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\n",
			row.name,
			metrics.FormatMinutes(row.g.ActualMinutes),
			metrics.FormatMinutes(int(row.g.AdjustedMinutes)),
			metrics.FormatMinutes(int(left)),
			goals.Percent(row.g.Progress, 1),
		)
	}
	for _, mp := range p.Metrics {
		m, err := a.Metric(mp.MetricID)
		if err != nil {
			continue
		}
		status := fmt.Sprintf("%d%%", goals.Percent(mp.Progress, 1))
		if mp.Limit != nil && mp.Limit.Breached {
			status += " (over limit)"
		} else if mp.Met {
			status += " (met)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			m.Name,
			metrics.FormatValue(mp.Actual, m.UnitType),
			metrics.FormatValue(mp.Adjusted, m.UnitType),
			metrics.FormatValue(goals.Remaining(mp.Actual, mp.Adjusted), m.UnitType),
			status,
		)
	}
	w.Flush()

	if p.DaysLogged > 0 {
		fmt.Fprintf(out, "\nAverage mood: %d/10\n", p.MoodLevel)
	}
	if p.AllGoldenHoursMet {
		fmt.Fprintln(out, "All Golden Hours goals met.")
	}
}

func newYearCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "year [year]",
		Short: "Show totals and weekly averages for a year (default this year)",
		Args:  cobra.MaximumNArgs(1),
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
			report, err := a.YearSummary(cmd.Context(), year)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), report)
			}
			printYear(cmd.OutOrStdout(), report)
			return nil
		},
	}
}

func printYear(out io.Writer, r app.YearReport) {
	t := r.Totals
	fmt.Fprintf(out, "%d: %s of %s days logged, %d vacation days\n",
		r.Year, humanize.Comma(int64(t.DaysLogged)), humanize.Comma(int64(r.TotalDays)), t.VacationDays)
	fmt.Fprintln(out)

	w := newTabWriter(out)
	fmt.Fprintln(w, "CATEGORY\tTOTAL\tPER WEEK")
	fmt.Fprintf(w, "Golden Hours\t%s\t%s\n", hours(t.GoldenMinutes()), metrics.FormatMinutes(int(r.Averages.Golden)))
	fmt.Fprintf(w, "Building\t%s\t%s\n", hours(t.BuildingMinutes), metrics.FormatMinutes(int(r.Averages.Building)))
	fmt.Fprintf(w, "Marketing\t%s\t%s\n", hours(t.MarketingMinutes), metrics.FormatMinutes(int(r.Averages.Marketing)))
	fmt.Fprintf(w, "Learning\t%s\t%s\n", hours(t.LevelingUpMinutes), metrics.FormatMinutes(int(r.Averages.LevelingUp)))
	w.Flush()

	fmt.Fprintf(out, "\nWorkout days: %d, drinks: %s", t.WorkoutDays, humanize.Ftoa(t.Drinks))
	if t.DaysLogged > 0 {
		fmt.Fprintf(out, ", average mood: %d/10", types.MoodLevel(t.AverageMood))
	}
	fmt.Fprintln(out)
}

// hours renders a large minute total as comma-grouped whole hours.
func hours(minutes int) string {
	return humanize.Comma(int64(minutes/60)) + "h"
}

func newStreakCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "streak",
		Short: "Show the logging and building streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			s, err := a.Streaks(cmd.Context())
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), s)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logging streak:  %d %s%s\n", s.CurrentLoggingStreak, days(s.CurrentLoggingStreak), lastSeen(s.LastLogDate, a.Today()))
			fmt.Fprintf(out, "Building streak: %d %s%s\n", s.CurrentBuildingStreak, days(s.CurrentBuildingStreak), lastSeen(s.LastBuildingDate, a.Today()))
			return nil
		},
	}
}

func days(n int) string {
	if n == 1 {
		return "day"
	}
	return "days"
}

// lastSeen renders the last entry date relative to today, e.g. " (last: 2 days ago)".
func lastSeen(last *types.Date, today types.Date) string {
	if last == nil {
		return ""
	}
	if *last == today {
		return " (last: today)"
	}
	return fmt.Sprintf(" (last: %s)", humanize.RelTime(last.Time(), today.Time(), "ago", "from now"))
}
