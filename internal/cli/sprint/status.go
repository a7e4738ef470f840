package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// StatusCmd returns the sprint status subcommand
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <id>",
		Short: "Show a sprint's point totals",
		Long: `Show a sprint's current capacity picture: committed, completed,
and remaining points over its member stories and bugs. Items without an
estimate count as zero.

Examples:
  backlog sprint status 2 --project=atlas
  backlog sprint status 2 --project=atlas --json
`,
		Args: cobra.ExactArgs(1),
		RunE: runStatus,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	s, err := c.App.Sprints.GetSprint(ctx, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}
	capacity, err := c.App.Sprints.Capacity(ctx, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}
	members, err := c.App.Sprints.ListMembers(ctx, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", capacity.Remaining)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{
			"sprint":    sprintJSON(s),
			"committed": capacity.Committed,
			"completed": capacity.Completed,
			"remaining": capacity.Remaining,
			"items":     len(members),
		})
	}

	fmt.Printf("Sprint #%d: %s [%s]\n", s.ID, s.Name, s.Status)
	fmt.Printf("  Window: %s → %s\n", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
	if s.CapacityPoints != nil {
		fmt.Printf("  Planned capacity: %d points\n", *s.CapacityPoints)
	}
	fmt.Printf("  Items: %d\n", len(members))
	fmt.Printf("  Committed: %d points\n", capacity.Committed)
	fmt.Printf("  Completed: %d points\n", capacity.Completed)
	fmt.Printf("  Remaining: %d points\n", capacity.Remaining)
	return nil
}
