package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
)

// CandidatesCmd creates the candidates command
func CandidatesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <role-id> <date>",
		Short: "List eligible candidates for a role on a date, with rejection reasons",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := calendar.ParseDate(args[1])
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", args[1], err)
			}

			eval, err := app.Engine.SelectCandidates(app.Ctx, args[0], date)
			if err != nil {
				return err
			}

			fmt.Printf("Eligible (%d):\n", len(eval.Candidates))
			for _, c := range eval.Candidates {
				switch {
				case c.Person != nil:
					fmt.Printf("  person %s (%s)\n", c.Person.ID, c.Person.Name)
				case c.Group != nil:
					fmt.Printf("  group %s (%s), %d member(s) available\n",
						c.Group.ID, c.Group.Name, len(c.AvailableMembers))
				}
			}

			if len(eval.Rejections) > 0 {
				fmt.Printf("\nRejected (%d):\n", len(eval.Rejections))
				for _, r := range eval.Rejections {
					fmt.Printf("  %s %s: %s\n", r.Assignee.Kind, r.Assignee.ID, r.Reason)
				}
			}
			return nil
		},
	}
}
