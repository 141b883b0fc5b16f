package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
)

// RotationStatsCmd creates the rotationStats command
func RotationStatsCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rotationStats <rule-or-role-id>",
		Short: "Show rotation cursor positions and per-assignee counts for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Engine.RotationStatistics(args[0])
			if err != nil {
				return err
			}

			fmt.Printf("Key: %s\n", stats.Key)
			if !stats.LastAssignment.IsZero() {
				fmt.Printf("Last assignment: %s\n", calendar.DateKey(stats.LastAssignment))
			}
			fmt.Printf("History length: %d\n", stats.HistoryLength)

			if len(stats.RoleIndex) > 0 {
				fmt.Println("Rotation index per role:")
				for role, idx := range stats.RoleIndex {
					fmt.Printf("  %s: %d\n", role, idx)
				}
			}

			if len(stats.AssignmentCounts) > 0 {
				fmt.Println("Assignments per assignee:")
				for id, count := range stats.AssignmentCounts {
					fmt.Printf("  %s: %d\n", id, count)
				}
			}
			return nil
		},
	}
}
