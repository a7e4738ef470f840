package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/sprint"
)

// CreateCmd returns the sprint create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a sprint",
		Long: `Create a sprint in planning status. The end date must fall after
the start date.

Examples:
  backlog sprint create --name="Sprint 12" --start=2026-09-01 --end=2026-09-12 --project=atlas
  backlog sprint create --name="Sprint 12" --start=2026-09-01 --end=2026-09-12 --capacity=40 --goal="Ship search" --project=atlas
`,
		RunE: runCreate,
	}

	cmd.Flags().String("name", "", "Sprint name (required)")
	cmd.Flags().String("goal", "", "Sprint goal")
	cmd.Flags().String("start", "", "Start date YYYY-MM-DD (required)")
	cmd.Flags().String("end", "", "End date YYYY-MM-DD (required)")
	cmd.Flags().Int64("capacity", 0, "Planned capacity in points")

	for _, name := range []string{"name", "start", "end"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			log.Printf("Error marking flag as required: %v", err)
		}
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	name, _ := cmd.Flags().GetString("name")
	goal, _ := cmd.Flags().GetString("goal")
	startFlag, _ := cmd.Flags().GetString("start")
	endFlag, _ := cmd.Flags().GetString("end")

	start, err := cli.ParseDate(startFlag)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_DATE", err, "Dates use the YYYY-MM-DD layout")
	}
	end, err := cli.ParseDate(endFlag)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_DATE", err, "Dates use the YYYY-MM-DD layout")
	}

	req := sprint.CreateSprintRequest{
		Name:           name,
		Goal:           goal,
		StartDate:      start,
		EndDate:        end,
		CapacityPoints: cli.Int64Flag(cmd, "capacity"),
	}

	c, err := cli.NewCLI(ctx)
	if err != nil {
		cli.Fail(formatter, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	pctx, err := c.Scope(ctx, cmd)
	if err != nil {
		cli.Fail(formatter, err)
	}

	created, err := c.App.Sprints.CreateSprint(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", created.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(sprintJSON(created))
	}

	fmt.Printf("✓ Sprint '%s' created (ID: %d)\n", created.Name, created.ID)
	fmt.Printf("  Window: %s → %s (%d days)\n", created.StartDate.Format("2006-01-02"), created.EndDate.Format("2006-01-02"), created.TotalDays())
	fmt.Printf("  Status: %s\n", created.Status)
	return nil
}
