package task

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// UpdateCmd returns the task update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task",
		Long: `Update fields of a task. Only the flags you pass change. Tasks never
move between stories; there is no story flag here on purpose.

Examples:
  backlog task update 7 --project=atlas --status=in_progress
  backlog task update 7 --project=atlas --type=testing --points=none
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description (use - for stdin)")
	cmd.Flags().String("status", "", "New status")
	cmd.Flags().String("priority", "", "New priority")
	cmd.Flags().String("type", "", "New task type")
	cmd.Flags().String("points", "", "New estimate, or 'none' to drop it")
	cmd.Flags().String("assignee", "", "New assigned identity (empty string unassigns)")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	taskID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
	}

	req := backlog.UpdateTaskRequest{
		TaskID:     taskID,
		Title:      cli.StringFlag(cmd, "title"),
		AssignedTo: cli.StringFlag(cmd, "assignee"),
	}

	if desc := cli.StringFlag(cmd, "description"); desc != nil {
		body, err := cli.ReadBody(*desc)
		if err != nil {
			cli.Fail(formatter, err)
		}
		req.Description = &body
	}
	if statusFlag := cli.StringFlag(cmd, "status"); statusFlag != nil {
		status, err := cli.ParseStatus(*statusFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_STATUS", err,
				"Valid statuses are: todo, in_progress, review, done, blocked")
		}
		req.Status = &status
	}
	if priorityFlag := cli.StringFlag(cmd, "priority"); priorityFlag != nil {
		priority, err := cli.ParsePriority(*priorityFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_PRIORITY", err,
				"Valid priorities are: low, medium, high, critical")
		}
		req.Priority = &priority
	}
	if typeFlag := cli.StringFlag(cmd, "type"); typeFlag != nil {
		taskType, err := cli.ParseTaskType(*typeFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_TYPE", err,
				"Valid types are: development, testing, documentation, research")
		}
		req.TaskType = &taskType
	}
	if pointsFlag := cli.StringFlag(cmd, "points"); pointsFlag != nil {
		points, err := cli.ParsePoints(*pointsFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_POINTS", err, "")
		}
		req.Points = points
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

	task, conflicted, err := c.App.Backlog.UpdateTask(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if conflicted {
		formatter.Warning(fmt.Sprintf("task %d was modified by someone else since your last read; your change was applied anyway", task.ID))
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", task.ID)
		return nil
	}
	if formatter.JSON {
		payload := taskJSON(task)
		payload["conflict"] = conflicted
		return formatter.Success(payload)
	}

	fmt.Printf("✓ Task #%d updated\n", task.ID)
	return nil
}
