package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thebtf/zenplan/internal/activity"
	"github.com/thebtf/zenplan/internal/catalog"
	"github.com/thebtf/zenplan/internal/config"
	"github.com/thebtf/zenplan/internal/ui"
	"github.com/thebtf/zenplan/pkg/models"
)

const barWidth = 30

func (a *app) activityLog(cmd *cobra.Command) ([]models.ActivityPoint, error) {
	g, err := a.gateway()
	if err != nil {
		return nil, err
	}
	return activity.NewAggregator(g.Dir()).ActivityLog(cmd.Context())
}

func newActivityCmd(a *app) *cobra.Command {
	var sorted bool

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show solved tasks per day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			points, err := a.activityLog(cmd)
			if err != nil {
				return err
			}
			if sorted {
				activity.SortByDate(points)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCal, "Активность"))
			if len(points) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Пока ничего не решено"))
				return nil
			}
			peak := 0
			for _, p := range points {
				peak = max(peak, p.Count)
			}
			for _, p := range points {
				fmt.Fprintf(out, "%-12s %s %d\n", p.Date, ui.Bar(p.Count, peak, barWidth), p.Count)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sorted, "sorted", false, "Sort by date")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [date]",
		Short: "Show totals and breakdowns for a day (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gateway()
			if err != nil {
				return err
			}
			date := a.dateArg(args, 0)
			records, err := g.LoadRecords(date)
			if err != nil {
				return err
			}
			report := activity.Report(date, records)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconChart, "Статистика за "+report.Date))
			fmt.Fprintln(out, ui.LabelValue("Решено", report.Total.Solved))
			fmt.Fprintln(out, ui.LabelValue("Верно", report.Total.Correct))
			fmt.Fprintln(out, ui.LabelValue("Точность", ui.Accuracy(report.Total.Accuracy)))
			printGroups(cmd, ui.IconBook+" По предметам", report.BySubject)
			printGroups(cmd, ui.IconTask+" По типам", report.ByTaskType)
			return nil
		},
	}
}

func printGroups(cmd *cobra.Command, title string, groups []models.GroupStats) {
	if len(groups) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, ui.H2.Render(title))
	for _, g := range groups {
		fmt.Fprintf(out, "- %s %d/%d %s\n", ui.Key.Render(g.Name), g.Correct, g.Solved, ui.Accuracy(g.Accuracy))
	}
}

func newHeatmapCmd(a *app) *cobra.Command {
	var weeks int

	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Draw the activity grid ending with the current week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if weeks <= 0 {
				weeks = a.cfg.HeatmapWeeks
			}
			points, err := a.activityLog(cmd)
			if err != nil {
				return err
			}
			today := a.now()
			hm := activity.BuildHeatmap(points, today, weeks)

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCal, fmt.Sprintf("Активность %s – %s", hm.Start, hm.End)))
			fmt.Fprintln(out, ui.Panel.Render(ui.Heatmap(hm)))
			fmt.Fprintln(out, ui.LabelValue("Решено", hm.Total))
			fmt.Fprintln(out, ui.LabelValue("Активных дней", hm.Active))
			fmt.Fprintln(out, ui.LabelValue(ui.IconFire+" Серия", activity.Streak(points, today)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&weeks, "weeks", "w", 0, fmt.Sprintf("Weeks to show (default %d)", config.DefaultHeatmapWeeks))
	return cmd
}

func newSubjectsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List known subjects and task types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(config.CatalogPath())
			if err != nil {
				return fmt.Errorf("load %s: %w", config.CatalogPath(), err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconBook, "Предметы"))
			for _, s := range c.All() {
				fmt.Fprintf(out, "- %s %s\n", ui.Key.Render(s.Name), ui.Muted.Render(fmt.Sprint(s.TaskTypes)))
			}
			return nil
		},
	}
}
