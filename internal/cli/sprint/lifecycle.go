package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/access"
)

// StartCmd returns the sprint start subcommand
func StartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Start a sprint",
		Long: `Move a sprint from planning to active. An initial snapshot of
the committed scope is taken first, so scope drift during the sprint is
measured against it.

Examples:
  backlog sprint start 2 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runStart,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runStart(cmd *cobra.Command, args []string) error {
	return runTransition(cmd, args, "started", models.SprintActive,
		func(ctx context.Context, c *cli.CLI, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error) {
			return c.App.Sprints.StartSprint(ctx, pctx, sprintID)
		})
}

// CompleteCmd returns the sprint complete subcommand
func CompleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete a sprint",
		Long: `Move a sprint from active to completed. A final snapshot is
taken first; it is what velocity reads later.

Examples:
  backlog sprint complete 2 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runComplete,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runComplete(cmd *cobra.Command, args []string) error {
	return runTransition(cmd, args, "completed", models.SprintCompleted,
		func(ctx context.Context, c *cli.CLI, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error) {
			return c.App.Sprints.CompleteSprint(ctx, pctx, sprintID)
		})
}

// CancelCmd returns the sprint cancel subcommand
func CancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a sprint still in planning",
		Long: `Move a sprint from planning to cancelled. Active sprints cannot
be cancelled; complete them instead.

Examples:
  backlog sprint cancel 2 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runCancel,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	sprintID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
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

	if err := c.App.Sprints.CancelSprint(ctx, pctx, sprintID); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", sprintID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{"id": sprintID, "status": models.SprintCancelled})
	}

	fmt.Printf("✓ Sprint #%d cancelled\n", sprintID)
	return nil
}

// runTransition is the shared body of start and complete: both flip the
// status and hand back the snapshot taken on the way.
func runTransition(cmd *cobra.Command, args []string, verb string, newStatus models.SprintStatus, transition func(context.Context, *cli.CLI, *access.Context, int64) (*models.SprintSnapshot, error)) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	sprintID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
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

	snap, err := transition(ctx, c, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", sprintID)
		return nil
	}
	if formatter.JSON {
		payload := snapshotJSON(snap)
		payload["sprint_status"] = newStatus
		return formatter.Success(payload)
	}

	fmt.Printf("✓ Sprint #%d %s\n", sprintID, verb)
	fmt.Printf("  Committed: %d points\n", snap.CommittedPoints())
	fmt.Printf("  Completed: %d points\n", snap.CompletedPoints)
	fmt.Printf("  Remaining: %d points\n", snap.RemainingPoints)
	return nil
}
