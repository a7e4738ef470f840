package task

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ShowCmd returns the task show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single task",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	taskID, err := cli.ParseID(args[0])
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

	task, err := c.App.Backlog.GetTask(ctx, pctx, taskID)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", task.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(taskJSON(task))
	}

	fmt.Printf("Task #%d: %s [%s/%s]\n", task.ID, task.Title, task.Status, task.TaskType)
	fmt.Printf("  Story: #%d\n", task.StoryID)
	if task.Points != nil {
		fmt.Printf("  Points: %d\n", *task.Points)
	}
	if task.Description != "" {
		fmt.Printf("  %s\n", task.Description)
	}
	if task.AssignedTo != "" {
		fmt.Printf("  Assigned to: %s\n", task.AssignedTo)
	}
	return nil
}
