package epic

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// ListCmd returns the epic list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List epics in the project",
		Long: `List the project's epics, optionally narrowed by status or assignee.

Examples:
  backlog epic list --project=atlas
  backlog epic list --project=atlas --status=in_progress --json
`,
		RunE: runList,
	}

	cmd.Flags().String("status", "", "Filter by status: todo, in_progress, review, done, blocked")
	cmd.Flags().String("assignee", "", "Filter by assigned identity")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	statusFlag, _ := cmd.Flags().GetString("status")
	assignee, _ := cmd.Flags().GetString("assignee")

	var status models.Status
	if statusFlag != "" {
		parsed, err := cli.ParseStatus(statusFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_STATUS", err,
				"Valid statuses are: todo, in_progress, review, done, blocked")
		}
		status = parsed
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

	epics, err := c.App.Backlog.ListEpics(ctx, pctx, backlog.ListEpicsRequest{
		Status:     status,
		AssignedTo: assignee,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, e := range epics {
			fmt.Printf("%d\n", e.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(epics))
		for _, e := range epics {
			rows = append(rows, epicJSON(e))
		}
		return formatter.Success(rows)
	}

	if len(epics) == 0 {
		fmt.Println("No epics found.")
		return nil
	}
	for _, e := range epics {
		fmt.Printf("%-4d [%-11s] %s\n", e.ID, e.Status, e.Name)
	}
	return nil
}
