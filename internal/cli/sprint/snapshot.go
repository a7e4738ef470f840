package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// SnapshotCmd returns the sprint snapshot subcommand
func SnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot <id>",
		Short: "Record a point-in-time snapshot of a sprint",
		Long: `Record the sprint's current totals as an immutable snapshot.
Added and removed points are measured against the previous snapshot, so
mid-sprint scope drift shows up in the history.

Examples:
  backlog sprint snapshot 2 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runSnapshot,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
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

	snap, err := c.App.Sprints.TakeSnapshot(ctx, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", snap.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(snapshotJSON(snap))
	}

	fmt.Printf("✓ Snapshot #%d recorded for sprint #%d\n", snap.ID, snap.SprintID)
	fmt.Printf("  Committed: %d points\n", snap.CommittedPoints())
	fmt.Printf("  Remaining: %d points\n", snap.RemainingPoints)
	if snap.AddedPoints != 0 || snap.RemovedPoints != 0 {
		fmt.Printf("  Scope drift: +%d / -%d points since last snapshot\n", snap.AddedPoints, snap.RemovedPoints)
	}
	return nil
}
