package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/sprint"
)

// UpdateCmd returns the sprint update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a sprint",
		Long: `Update a sprint's name, goal, window, or capacity. Lifecycle
status only moves through start, complete, and cancel.

Examples:
  backlog sprint update 2 --goal="Ship search and filters" --project=atlas
  backlog sprint update 2 --capacity=none --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("goal", "", "New goal")
	cmd.Flags().String("start", "", "New start date YYYY-MM-DD")
	cmd.Flags().String("end", "", "New end date YYYY-MM-DD")
	cmd.Flags().String("capacity", "", "New capacity in points, or 'none' to drop it")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	sprintID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
	}

	req := sprint.UpdateSprintRequest{
		SprintID: sprintID,
		Name:     cli.StringFlag(cmd, "name"),
		Goal:     cli.StringFlag(cmd, "goal"),
	}

	if startFlag := cli.StringFlag(cmd, "start"); startFlag != nil {
		start, err := cli.ParseDate(*startFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_DATE", err, "Dates use the YYYY-MM-DD layout")
		}
		req.StartDate = &start
	}
	if endFlag := cli.StringFlag(cmd, "end"); endFlag != nil {
		end, err := cli.ParseDate(*endFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_DATE", err, "Dates use the YYYY-MM-DD layout")
		}
		req.EndDate = &end
	}
	if capacityFlag := cli.StringFlag(cmd, "capacity"); capacityFlag != nil {
		capacity, err := cli.ParsePoints(*capacityFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_CAPACITY", err, "")
		}
		req.CapacityPoints = capacity
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

	updated, err := c.App.Sprints.UpdateSprint(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", updated.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(sprintJSON(updated))
	}

	fmt.Printf("✓ Sprint #%d updated\n", updated.ID)
	return nil
}
