package root

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Read or write the note of a day",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [date]",
		Short: "Print the note of a day (default: today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.gateway()
			if err != nil {
				return err
			}
			content, err := g.LoadNote(a.dateArg(args, 0))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), content)
			if content != "" && !strings.HasSuffix(content, "\n") {
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [date] [text]",
		Short: "Replace the note of a day; text is read from stdin when omitted",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date := a.dateArg(args, 0)
			var content string
			if len(args) == 2 {
				content = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read note from stdin: %w", err)
				}
				content = string(data)
			}

			g, err := a.gateway()
			if err != nil {
				return err
			}
			return g.SaveNote(date, content)
		},
	})

	return cmd
}
