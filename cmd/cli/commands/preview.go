package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// PreviewCmd creates the preview command
func PreviewCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview <rule-id> <start-date> <end-date>",
		Short: "Show what generate would produce without persisting anything",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			consecutiveRole, _ := cmd.Flags().GetString("consecutive-role")

			req, err := buildGenerateRequest(args, true, consecutiveRole)
			if err != nil {
				return err
			}

			result, err := app.Engine.Preview(app.Ctx, req)
			if err != nil {
				return err
			}

			fmt.Println("Preview only; nothing was saved.")
			printResult(result)
			return nil
		},
	}

	cmd.Flags().String("consecutive-role", "", "Use the consecutive-duty pattern for this role")

	return cmd
}
