package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/app"
	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/types"
	"github.com/hyperengineering/loopz/internal/validation"
)

func newLogCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show or edit a day's log",
	}
	cmd.AddCommand(newLogShowCmd(c), newLogSetCmd(c))
	return cmd
}

// parseDateArg resolves "today", "yesterday" or YYYY-MM-DD. No argument means today.
func parseDateArg(args []string, today types.Date) (types.Date, error) {
	if len(args) == 0 {
		return today, nil
	}
	switch strings.ToLower(args[0]) {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	return types.ParseDate(args[0])
}

func newLogShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Show the log for a date (default today)",
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
			view, err := a.Log(cmd.Context(), date)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), view)
			}
			printLog(cmd.OutOrStdout(), view, a)
			return nil
		},
	}
}

func printLog(out io.Writer, view types.LogView, a *app.App) {
	l := view.DailyLog
	fmt.Fprintf(out, "Date:          %s (%s)\n", l.Date, l.Date.Weekday())
	if !view.Persisted {
		fmt.Fprintln(out, "               not logged yet")
	} else {
		fmt.Fprintf(out, "Updated:       %s\n", humanize.Time(l.UpdatedAt))
	}
	fmt.Fprintf(out, "Building:      %s\n", metrics.FormatMinutes(l.BuildingMinutes))
	fmt.Fprintf(out, "Marketing:     %s\n", metrics.FormatMinutes(l.MarketingMinutes))
	fmt.Fprintf(out, "Learning:      %s\n", metrics.FormatMinutes(l.LevelingUpMinutes))
	fmt.Fprintf(out, "Golden Hours:  %s\n", metrics.FormatMinutes(l.GoldenMinutes()))
	fmt.Fprintf(out, "Mood:          %d/10\n", l.MoodLevel())
	if l.IsVacation {
		fmt.Fprintln(out, "Vacation:      yes")
	}

	w := newTabWriter(out)
	for _, m := range a.Metrics(true) {
		fmt.Fprintf(w, "%s:\t%s\n", m.Name, metrics.FormatValue(metrics.Value(m, l), m.UnitType))
	}
	w.Flush()

	if l.Reflection != "" {
		fmt.Fprintf(out, "\n%s\n", l.Reflection)
	}
}

// logSetFlags holds the log set flag values. Only flags the user passed are
// applied, so an unset flag never overwrites a stored value.
type logSetFlags struct {
	building, marketing, learning, workout, tv int
	drinks                                     float64
	mood                                       int
	reflection                                 string
	vacation                                   bool
	metricValues                               []string
}

func newLogSetCmd(c *cli) *cobra.Command {
	var f logSetFlags
	cmd := &cobra.Command{
		Use:   "set [date]",
		Short: "Update fields of a day's log (default today)",
		Example: `  loopz log set --building 90 --mood 8
  loopz log set 2024-03-11 --drinks 2 --metric custom_01HV...=30`,
		Args: cobra.MaximumNArgs(1),
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
			u, err := f.update(cmd, a)
			if err != nil {
				return err
			}
			if u.IsEmpty() {
				return fmt.Errorf("nothing to set: pass at least one field flag")
			}
			l, err := a.UpsertLog(cmd.Context(), date, u)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), l)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged %s.\n", l.Date)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.building, "building", 0, "Building minutes")
	fl.IntVar(&f.marketing, "marketing", 0, "Marketing minutes")
	fl.IntVar(&f.learning, "learning", 0, "Leveling-up (learning) minutes")
	fl.IntVar(&f.workout, "workout", 0, "Workout minutes")
	fl.IntVar(&f.tv, "tv", 0, "TV / streaming minutes")
	fl.Float64Var(&f.drinks, "drinks", 0, "Number of drinks")
	fl.IntVar(&f.mood, "mood", 0, "Mood level from 1 to 10")
	fl.StringVar(&f.reflection, "reflection", "", "Free-text reflection")
	fl.BoolVar(&f.vacation, "vacation", false, "Mark the day as a vacation day")
	fl.StringArrayVar(&f.metricValues, "metric", nil, "Metric value as id=value (repeatable)")
	return cmd
}

func (f *logSetFlags) update(cmd *cobra.Command, a *app.App) (types.LogUpdate, error) {
	var u types.LogUpdate
	changed := cmd.Flags().Changed
	intField := func(name string, v int) *int {
		if !changed(name) {
			return nil
		}
		return &v
	}
	u.BuildingMinutes = intField("building", f.building)
	u.MarketingMinutes = intField("marketing", f.marketing)
	u.LevelingUpMinutes = intField("learning", f.learning)
	u.WorkoutMinutes = intField("workout", f.workout)
	u.TVMinutes = intField("tv", f.tv)
	if changed("drinks") {
		u.Drinks = &f.drinks
	}
	if changed("mood") {
		if f.mood < 1 || f.mood > 10 {
			return u, fmt.Errorf("--mood must be between 1 and 10, got %d", f.mood)
		}
		score := types.MoodScoreForLevel(f.mood)
		u.MoodScore = &score
	}
	if changed("reflection") {
		u.Reflection = &f.reflection
	}
	if changed("vacation") {
		u.IsVacation = &f.vacation
	}

	for _, kv := range f.metricValues {
		id, raw, ok := strings.Cut(kv, "=")
		if !ok {
			return u, fmt.Errorf("--metric %q: want id=value", kv)
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return u, fmt.Errorf("--metric %q: %w", kv, err)
		}
		m, err := a.Metric(id)
		if err != nil {
			return u, err
		}
		if err := validation.AsError(validation.ValidateMetricValue(m, v)); err != nil {
			return u, fmt.Errorf("--metric %q: %w", kv, err)
		}
		u = mergeUpdate(u, metrics.SetValue(m, v))
	}
	return u, nil
}

// mergeUpdate overlays the fields set in next onto u.
func mergeUpdate(u, next types.LogUpdate) types.LogUpdate {
	if next.WorkoutMinutes != nil {
		u.WorkoutMinutes = next.WorkoutMinutes
	}
	if next.Drinks != nil {
		u.Drinks = next.Drinks
	}
	if next.TVMinutes != nil {
		u.TVMinutes = next.TVMinutes
	}
	for id, v := range next.CustomMetrics {
		if u.CustomMetrics == nil {
			u.CustomMetrics = make(map[string]float64)
		}
		u.CustomMetrics[id] = v
	}
	return u
}
