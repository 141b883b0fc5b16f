package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
)

// ConflictsCmd creates the conflicts command
func ConflictsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "conflicts <start-date> <end-date>",
		Short: "Detect conflicts in the stored assignments for a date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := calendar.ParseDate(args[0])
			if err != nil {
				return fmt.Errorf("invalid start date %q: %w", args[0], err)
			}
			end, err := calendar.ParseDate(args[1])
			if err != nil {
				return fmt.Errorf("invalid end date %q: %w", args[1], err)
			}

			assignments, err := app.Store.GetAssignmentsByRange(app.Ctx, start, end)
			if err != nil {
				return err
			}

			conflicts, err := app.Engine.DetectConflicts(app.Ctx, assignments)
			if err != nil {
				return err
			}

			if len(conflicts) == 0 {
				fmt.Printf("No conflicts in %d assignments.\n", len(assignments))
				return nil
			}

			fmt.Printf("Conflicts (%d):\n", len(conflicts))
			for _, c := range conflicts {
				fmt.Printf("  [%s/%s] %s\n", c.Kind, c.Severity, c.Description)
				for _, s := range c.Suggestions {
					fmt.Printf("      suggestion: %s\n", s)
				}
			}
			return nil
		},
	}
}
