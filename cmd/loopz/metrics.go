package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hyperengineering/loopz/internal/metrics"
	"github.com/hyperengineering/loopz/internal/types"
)

func newMetricsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Manage tracked metrics",
		Long:  "List, add, toggle and delete metrics. The three system metrics can be deactivated but never removed.",
	}
	cmd.AddCommand(newMetricsListCmd(c), newMetricsAddCmd(c), newMetricsDeleteCmd(c), newMetricsToggleCmd(c))
	return cmd
}

func newMetricsListCmd(c *cli) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List metric definitions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			defs := a.Metrics(activeOnly)
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"metrics": defs,
					"total":   len(defs),
				})
			}
			if len(defs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No metrics found.")
				return nil
			}

			w := newTabWriter(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tNAME\tUNIT\tGOAL\tSTEP\tACTIVE\tCREATED")
			for _, m := range defs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
					m.ID,
					m.Name,
					metrics.UnitDisplayLabel(m.UnitType),
					goalLabel(m),
					humanize.Ftoa(metrics.Increment(m)),
					m.IsActive,
					humanize.Time(m.CreatedAt),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only list active metrics")
	return cmd
}

func newMetricsAddCmd(c *cli) *cobra.Command {
	var n types.NewCustomMetric
	var unit, category string
	cmd := &cobra.Command{
		Use:     "add <name>",
		Short:   "Add a custom metric",
		Example: "  loopz metrics add Meditation --unit minutes --goal 70",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			n.Name = args[0]
			n.UnitType = types.UnitType(unit)
			n.Category = types.MetricCategory(category)
			m, err := a.AddMetric(cmd.Context(), n)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), m)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Metric %q added with id %s.\n", m.Name, m.ID)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&unit, "unit", string(types.UnitCount), "Unit: minutes, hours, count or boolean")
	fl.StringVar(&category, "category", string(types.CategoryPositive), "positive (a target) or negative (a limit)")
	fl.Float64Var(&n.WeeklyGoal, "goal", 0, "Weekly goal; days per week for boolean metrics")
	fl.StringVar(&n.Description, "description", "", "Description")
	fl.StringVar(&n.Color, "color", "", "Hex color (default: next free palette color)")
	fl.StringVar(&n.Icon, "icon", "", "Icon name")
	return cmd
}

func newMetricsDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a custom metric or deactivate a system metric",
		Long:  "Delete a custom metric or deactivate a system metric. Logged values are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			m, err := a.Metric(args[0])
			if err != nil {
				return err
			}
			if err := a.DeleteMetric(cmd.Context(), m.ID); err != nil {
				return err
			}
			if m.IsSystemMetric {
				fmt.Fprintf(cmd.OutOrStdout(), "System metric %q deactivated.\n", m.Name)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Metric %q deleted.\n", m.Name)
			return nil
		},
	}
}

func newMetricsToggleCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Activate or deactivate a metric",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, done, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			m, err := a.ToggleMetric(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return printJSON(cmd.OutOrStdout(), m)
			}
			state := "inactive"
			if m.IsActive {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Metric %q is now %s.\n", m.Name, state)
			return nil
		},
	}
}

// goalLabel renders a weekly goal with its unit, e.g. "70 min/week" or
// "max 7/week" for limits.
func goalLabel(m types.CustomMetric) string {
	goal := humanize.Ftoa(m.WeeklyGoal)
	if unit := metrics.UnitLabel(m.UnitType); strings.HasPrefix(unit, "/") {
		goal += unit
	} else if unit != "" {
		goal += " " + unit
	}
	if m.IsLimit() {
		goal = "max " + goal
	}
	return goal
}
