package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/sprint"
)

// ListCmd returns the sprint list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sprints in the project",
		Long: `List sprints, optionally narrowed by lifecycle status.

Examples:
  backlog sprint list --project=atlas
  backlog sprint list --status=active --project=atlas --json
`,
		RunE: runList,
	}

	cmd.Flags().String("status", "", "Only sprints in this status")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	req := sprint.ListSprintsRequest{}
	if statusFlag := cli.StringFlag(cmd, "status"); statusFlag != nil {
		status := models.SprintStatus(*statusFlag)
		if !status.IsValid() {
			cli.FailValidation(formatter, "INVALID_STATUS",
				fmt.Errorf("invalid sprint status '%s'", *statusFlag),
				"Valid sprint statuses are: planning, active, completed, cancelled")
		}
		req.Status = status
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

	sprints, err := c.App.Sprints.ListSprints(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, s := range sprints {
			fmt.Printf("%d\n", s.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(sprints))
		for _, s := range sprints {
			rows = append(rows, sprintJSON(s))
		}
		return formatter.Success(rows)
	}

	if len(sprints) == 0 {
		fmt.Println("No sprints found.")
		return nil
	}
	for _, s := range sprints {
		fmt.Printf("%-4d [%-9s] %-24s %s → %s\n", s.ID, s.Status, s.Name,
			s.StartDate.Format("2006-01-02"), s.EndDate.Format("2006-01-02"))
	}
	return nil
}
