package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// VelocityCmd returns the sprint velocity subcommand
func VelocityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "velocity",
		Short: "Show delivery velocity over recent sprints",
		Long: `Show completed points for the most recent completed sprints,
newest first, with their average. The window defaults to the configured
velocity_window.

Examples:
  backlog sprint velocity --project=atlas
  backlog sprint velocity --window=5 --project=atlas --json
`,
		RunE: runVelocity,
	}

	cmd.Flags().Int("window", 0, "How many completed sprints to average (default from config)")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runVelocity(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	c, err := cli.NewCLI(ctx)
	if err != nil {
		cli.Fail(formatter, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	window, _ := cmd.Flags().GetInt("window")
	if window <= 0 {
		window = c.Config.VelocityWindow
	}

	pctx, err := c.Scope(ctx, cmd)
	if err != nil {
		cli.Fail(formatter, err)
	}

	report, err := c.App.Sprints.Velocity(ctx, pctx, window)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%.1f\n", report.AveragePoints)
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(report.Sprints))
		for _, sv := range report.Sprints {
			rows = append(rows, map[string]interface{}{
				"sprint_id":        sv.SprintID,
				"name":             sv.Name,
				"end_date":         sv.EndDate.Format("2006-01-02"),
				"completed_points": sv.CompletedPoints,
			})
		}
		return formatter.Success(map[string]interface{}{
			"window":  window,
			"sprints": rows,
			"average": report.AveragePoints,
		})
	}

	if len(report.Sprints) == 0 {
		fmt.Println("No completed sprints yet.")
		return nil
	}
	fmt.Printf("Velocity over the last %d sprint(s):\n", len(report.Sprints))
	for _, sv := range report.Sprints {
		fmt.Printf("  %-24s ended %s  %d points\n", sv.Name, sv.EndDate.Format("2006-01-02"), sv.CompletedPoints)
	}
	fmt.Printf("Average: %.1f points per sprint\n", report.AveragePoints)
	return nil
}
