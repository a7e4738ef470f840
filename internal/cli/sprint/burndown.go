package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// BurndownCmd returns the sprint burndown subcommand
func BurndownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "burndown <id>",
		Short: "Show a sprint's ideal burndown and recorded snapshots",
		Long: `Show the ideal burndown line for a sprint, one value per day from
start to end, next to the snapshots actually recorded. The ideal line
descends linearly from the committed total to zero.

Examples:
  backlog sprint burndown 2 --project=atlas
  backlog sprint burndown 2 --project=atlas --json
`,
		Args: cobra.ExactArgs(1),
		RunE: runBurndown,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runBurndown(cmd *cobra.Command, args []string) error {
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

	ideal, err := c.App.Sprints.IdealBurndown(ctx, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}
	snapshots, err := c.App.Sprints.ListSnapshots(ctx, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, v := range ideal {
			fmt.Printf("%.1f\n", v)
		}
		return nil
	}
	if formatter.JSON {
		recorded := make([]map[string]interface{}, 0, len(snapshots))
		for _, snap := range snapshots {
			recorded = append(recorded, snapshotJSON(snap))
		}
		return formatter.Success(map[string]interface{}{
			"ideal":     ideal,
			"snapshots": recorded,
		})
	}

	fmt.Println("Ideal burndown:")
	for day, v := range ideal {
		fmt.Printf("  day %-3d %.1f points\n", day, v)
	}
	if len(snapshots) == 0 {
		fmt.Println("No snapshots recorded yet.")
		return nil
	}
	fmt.Println("Recorded:")
	for _, snap := range snapshots {
		fmt.Printf("  %s  %d remaining / %d committed\n",
			snap.TakenAt.Format("2006-01-02 15:04"), snap.RemainingPoints, snap.CommittedPoints())
	}
	return nil
}
