package bug

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// ListCmd returns the bug list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bugs in the project",
		Long: `List the project's bugs.

Examples:
  backlog bug list --project=atlas
  backlog bug list --project=atlas --status=todo --priority=critical
`,
		RunE: runList,
	}

	cmd.Flags().Int64("story", 0, "Filter by linked story ID")
	cmd.Flags().String("status", "", "Filter by status")
	cmd.Flags().String("priority", "", "Filter by priority")
	cmd.Flags().String("assignee", "", "Filter by assigned identity")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	assignee, _ := cmd.Flags().GetString("assignee")

	var status models.Status
	if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" {
		parsed, err := cli.ParseStatus(statusFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_STATUS", err,
				"Valid statuses are: todo, in_progress, review, done, blocked")
		}
		status = parsed
	}
	var priority models.Priority
	if priorityFlag, _ := cmd.Flags().GetString("priority"); priorityFlag != "" {
		parsed, err := cli.ParsePriority(priorityFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_PRIORITY", err,
				"Valid priorities are: low, medium, high, critical")
		}
		priority = parsed
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

	bugs, err := c.App.Backlog.ListBugs(ctx, pctx, backlog.ListBugsRequest{
		StoryID:    cli.Int64Flag(cmd, "story"),
		Status:     status,
		Priority:   priority,
		AssignedTo: assignee,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, b := range bugs {
			fmt.Printf("%d\n", b.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(bugs))
		for _, b := range bugs {
			rows = append(rows, bugJSON(b))
		}
		return formatter.Success(rows)
	}

	if len(bugs) == 0 {
		fmt.Println("No bugs found.")
		return nil
	}
	for _, b := range bugs {
		story := "unlinked"
		if b.StoryID != nil {
			story = fmt.Sprintf("story #%d", *b.StoryID)
		}
		fmt.Printf("%-4d [%-11s] %-8s %s (%s)\n", b.ID, b.Status, b.Priority, b.Title, story)
	}
	return nil
}
