package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weixin008/dutyroster/pkg/core/calendar"
	"github.com/weixin008/dutyroster/pkg/core/engine"
)

// GenerateCmd creates the generate command
func GenerateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <rule-id> <start-date> <end-date>",
		Short: "Generate and persist the duty roster for a date range",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			consecutiveRole, _ := cmd.Flags().GetString("consecutive-role")

			req, err := buildGenerateRequest(args, force, consecutiveRole)
			if err != nil {
				return err
			}

			result, err := app.Engine.Generate(app.Ctx, req)
			if err != nil {
				return err
			}

			printResult(result)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Regenerate even when assignments already exist in range")
	cmd.Flags().String("consecutive-role", "", "Use the consecutive-duty pattern for this role")

	return cmd
}

func buildGenerateRequest(args []string, force bool, consecutiveRole string) (*engine.GenerateRequest, error) {
	start, err := calendar.ParseDate(args[1])
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", args[1], err)
	}
	end, err := calendar.ParseDate(args[2])
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", args[2], err)
	}

	return &engine.GenerateRequest{
		RuleID:            args[0],
		StartDate:         start,
		EndDate:           end,
		ForceRegenerate:   force,
		ConsecutiveRoleID: consecutiveRole,
	}, nil
}

func printResult(result *engine.GenerateResult) {
	fmt.Printf("\nAssignments (%d):\n", len(result.Assignments))
	for _, a := range result.Assignments {
		who := "(empty)"
		if !a.Assignee.IsZero() {
			who = fmt.Sprintf("%s %s", a.Assignee.Kind, a.Assignee.ID)
		}
		fmt.Printf("  %s  shift=%s role=%s  %s  [%s]\n",
			calendar.DateKey(a.Date), a.ShiftID, a.RoleID, who, a.Status)
		if a.Note != "" {
			fmt.Printf("      note: %s\n", a.Note)
		}
	}

	if len(result.Conflicts) > 0 {
		fmt.Printf("\nConflicts (%d):\n", len(result.Conflicts))
		for _, c := range result.Conflicts {
			fmt.Printf("  [%s/%s] %s\n", c.Kind, c.Severity, c.Description)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}

	for dateKey, report := range result.Compliance {
		if len(report.Violations) == 0 {
			continue
		}
		fmt.Printf("\nRule violations on %s (risk %d, compliance %.0f%%):\n",
			dateKey, report.RiskScore, report.ComplianceScore)
		for _, v := range report.Violations {
			fmt.Printf("  [%s] %s: %s\n", v.Severity, v.RuleName, v.Message)
		}
	}

	stats := result.Statistics
	fmt.Printf("\nDays: %d total, %d scheduled, %d empty, %d with conflicts\n",
		stats.TotalDays, stats.ScheduledDays, stats.EmptyDays, stats.ConflictDays)
}
