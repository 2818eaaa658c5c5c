package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thebtf/zenplan/internal/activity"
	"github.com/thebtf/zenplan/internal/ui"
	"github.com/thebtf/zenplan/pkg/models"
)

func newRecordsCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List, add or remove solved-task records of a day",
	}
	cmd.PersistentFlags().StringVarP(&date, "date", "d", "", "Day to operate on (default: today)")

	day := func() string {
		if date != "" {
			return date
		}
		return a.today()
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gateway()
			if err != nil {
				return err
			}
			d := day()
			records, err := g.LoadRecords(d)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTask, "Записи за "+d))
			if len(records) == 0 {
				fmt.Fprintln(out, ui.Muted.Render("Нет записей"))
				return nil
			}
			for _, r := range records {
				fmt.Fprintf(out, "- %s %s %s %s\n",
					ui.Key.Render(r.Subject),
					r.TaskType,
					fmt.Sprintf("%d/%d", r.Correct, r.Solved),
					ui.Muted.Render(r.ID))
			}
			total := activity.Summarize(records)
			fmt.Fprintln(out, ui.LabelValue("Итого", fmt.Sprintf("%d решено, точность %s", total.Solved, ui.Accuracy(total.Accuracy))))
			return nil
		},
	})

	var subject, taskType string
	var solved, correct uint32
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if subject == "" || taskType == "" {
				return errors.New("--subject and --type are required")
			}
			g, err := a.gateway()
			if err != nil {
				return err
			}
			saved, err := g.AppendRecord(day(), models.NewTaskRecord(subject, taskType, solved, correct))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Добавлено")+" "+ui.Muted.Render(saved.ID))
			return nil
		},
	}
	add.Flags().StringVarP(&subject, "subject", "s", "", "Subject")
	add.Flags().StringVarP(&taskType, "type", "t", "", "Task type")
	add.Flags().Uint32Var(&solved, "solved", 0, "Tasks solved")
	add.Flags().Uint32Var(&correct, "correct", 0, "Tasks solved correctly")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a record by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gateway()
			if err != nil {
				return err
			}
			if err := g.RemoveRecord(day(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconDone+" Удалено"))
			return nil
		},
	})

	return cmd
}
