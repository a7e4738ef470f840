package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ShowCmd returns the sprint show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a sprint",
		Long: `Show a single sprint's fields. For point totals see
'sprint status'.

Examples:
  backlog sprint show 2 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	if formatter.Quiet {
		fmt.Printf("%d\n", s.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(sprintJSON(s))
	}

	fmt.Printf("Sprint #%d: %s\n", s.ID, s.Name)
	if s.Goal != "" {
		fmt.Printf("  Goal: %s\n", s.Goal)
	}
	fmt.Printf("  Window: %s → %s (%d days)\n", s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"), s.TotalDays())
	if s.CapacityPoints != nil {
		fmt.Printf("  Capacity: %d points\n", *s.CapacityPoints)
	}
	fmt.Printf("  Status: %s\n", s.Status)
	return nil
}
