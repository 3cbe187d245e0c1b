package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/types"
)

func newGoalsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Show or change the weekly goals and vacation mode",
	}
	cmd.AddCommand(newGoalsShowCmd(c), newGoalsSetCmd(c), newGoalsResetCmd(c), newVacationCmd(c))
	return cmd
}

func newGoalsShowCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the weekly goals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			g, vm := a.Goals(), a.VacationMode()
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"goals":        g,
					"vacationMode": vm,
				})
			}
			printGoals(cmd.OutOrStdout(), g, vm)
			return nil
		},
	}
}

func printGoals(out io.Writer, g types.WeeklyGoals, vm types.VacationMode) {
	w := newTabWriter(out)
	fmt.Fprintf(w, "Building:\t%sh / week\n", humanize.Ftoa(g.BuildingHours))
	fmt.Fprintf(w, "Marketing:\t%sh / week\n", humanize.Ftoa(g.MarketingHours))
	fmt.Fprintf(w, "Learning:\t%sh / week\n", humanize.Ftoa(g.LevelingUpHours))
	fmt.Fprintf(w, "Workouts:\t%d / week\n", g.WorkoutCount)
	if g.MaxDrinks != nil {
		fmt.Fprintf(w, "Max drinks:\t%s / week\n", humanize.Ftoa(*g.MaxDrinks))
	}
	if g.MaxTVHours != nil {
		fmt.Fprintf(w, "Max TV:\t%sh / week\n", humanize.Ftoa(*g.MaxTVHours))
	}
	w.Flush()

	switch {
	case vm.IsActive && vm.StartDate != nil:
		fmt.Fprintf(out, "\nVacation mode is on since %s.\n", vm.StartDate)
	case vm.IsActive:
		fmt.Fprintln(out, "\nVacation mode is on.")
	}
}

type goalsSetFlags struct {
	building, marketing, learning float64
	workouts                      int
	maxDrinks, maxTV              float64
}

func newGoalsSetCmd(c *cli) *cobra.Command {
	var f goalsSetFlags
	cmd := &cobra.Command{
		Use:     "set",
		Short:   "Change weekly goals; unset flags keep their value",
		Example: "  loopz goals set --building 10 --max-drinks 5",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			var u types.GoalsUpdate
			changed := cmd.Flags().Changed
			if changed("building") {
				u.BuildingHours = &f.building
			}
			if changed("marketing") {
				u.MarketingHours = &f.marketing
			}
			if changed("learning") {
				u.LevelingUpHours = &f.learning
			}
			if changed("workouts") {
				u.WorkoutCount = &f.workouts
			}
			if changed("max-drinks") {
				u.MaxDrinks = &f.maxDrinks
			}
			if changed("max-tv") {
				u.MaxTVHours = &f.maxTV
			}

			g, err := a.UpdateGoals(cmd.Context(), u)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), g)
			}
			printGoals(cmd.OutOrStdout(), g, a.VacationMode())
			return nil
		},
	}

	fl := cmd.Flags()
	fl.Float64Var(&f.building, "building", 0, "Building hours per week")
	fl.Float64Var(&f.marketing, "marketing", 0, "Marketing hours per week")
	fl.Float64Var(&f.learning, "learning", 0, "Learning hours per week")
	fl.IntVar(&f.workouts, "workouts", 0, "Workouts per week (0-7)")
	fl.Float64Var(&f.maxDrinks, "max-drinks", 0, "Drink ceiling per week")
	fl.Float64Var(&f.maxTV, "max-tv", 0, "TV ceiling in hours per week")
	return cmd
}

func newGoalsResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default goals (vacation mode is kept)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			if err := a.ResetGoals(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Goals reset.")
			return nil
		},
	}
}

func newVacationCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:       "vacation [on|off]",
		Short:     "Switch vacation mode; without an argument it is toggled",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			var vm types.VacationMode
			if len(args) == 0 {
				vm, err = a.ToggleVacationMode(cmd.Context())
			} else {
				switch strings.ToLower(args[0]) {
				case "on":
					vm, err = a.SetVacationMode(cmd.Context(), true)
				case "off":
					vm, err = a.SetVacationMode(cmd.Context(), false)
				default:
					return fmt.Errorf("vacation: want on or off, got %q", args[0])
				}
			}
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), vm)
			}
			state := "off"
			if vm.IsActive {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Vacation mode %s.\n", state)
			return nil
		},
	}
}
