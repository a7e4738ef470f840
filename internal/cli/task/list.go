package task

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// ListCmd returns the task list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in the project",
		Long: `List the project's tasks, optionally narrowed to one story.

Examples:
  backlog task list --project=atlas
  backlog task list --project=atlas --story=12 --status=todo
`,
		RunE: runList,
	}

	cmd.Flags().Int64("story", 0, "Filter by owning story ID")
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

	tasks, err := c.App.Backlog.ListTasks(ctx, pctx, backlog.ListTasksRequest{
		StoryID:    cli.Int64Flag(cmd, "story"),
		Status:     status,
		Priority:   priority,
		AssignedTo: assignee,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, item := range tasks {
			fmt.Printf("%d\n", item.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(tasks))
		for _, item := range tasks {
			rows = append(rows, taskJSON(item))
		}
		return formatter.Success(rows)
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}
	for _, item := range tasks {
		fmt.Printf("%-4d [%-11s] %-13s %s (story #%d)\n",
			item.ID, item.Status, item.TaskType, item.Title, item.StoryID)
	}
	return nil
}
