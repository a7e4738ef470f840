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

// CreateCmd returns the task create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new task under a story",
		Long: `Create a new task. Every task belongs to exactly one story for its
whole life.

Examples:
  backlog task create --project=atlas --story=12 --title="Wire the button"

  # Full example
  backlog task create --project=atlas --story=12 \
    --title="Add integration coverage" --type=testing --priority=high --points=2

  # Quiet mode for bash capture
  TASK_ID=$(backlog task create --project=atlas --story=12 --title="Wire it" --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Task title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().Int64("story", 0, "Owning story ID (required)")
	if err := cmd.MarkFlagRequired("story"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("description", "", "Task description (use - for stdin)")
	cmd.Flags().String("type", "", "Task type: development, testing, documentation, research (default development)")
	cmd.Flags().String("priority", "", "Priority: low, medium, high, critical (default medium)")
	cmd.Flags().Int64("points", 0, "Point estimate")
	cmd.Flags().String("assignee", "", "Assigned identity")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	title, _ := cmd.Flags().GetString("title")
	storyID, _ := cmd.Flags().GetInt64("story")
	assignee, _ := cmd.Flags().GetString("assignee")

	description, err := cli.ReadBody(cmd.Flag("description").Value.String())
	if err != nil {
		cli.Fail(formatter, err)
	}

	var taskType models.TaskType
	if typeFlag, _ := cmd.Flags().GetString("type"); typeFlag != "" {
		parsed, err := cli.ParseTaskType(typeFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_TYPE", err,
				"Valid types are: development, testing, documentation, research")
		}
		taskType = parsed
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

	task, err := c.App.Backlog.CreateTask(ctx, pctx, backlog.CreateTaskRequest{
		StoryID:     storyID,
		Title:       title,
		Description: description,
		TaskType:    taskType,
		Priority:    priority,
		Points:      cli.Int64Flag(cmd, "points"),
		AssignedTo:  assignee,
	})
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

	fmt.Printf("✓ Task '%s' created (ID: %d)\n", task.Title, task.ID)
	fmt.Printf("  Story: #%d\n", task.StoryID)
	fmt.Printf("  Type: %s\n", task.TaskType)
	fmt.Printf("  Priority: %s\n", task.Priority)
	return nil
}
