package story

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// UpdateCmd returns the story update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a story",
		Long: `Update fields of a story. Only the flags you pass change. The epic
link and the estimate are clearable: pass --epic=none or --points=none.
Status moves must follow the workflow. A concurrent edit by someone else
surfaces as a warning, never as a failure.

Examples:
  backlog story update 12 --project=atlas --status=in_progress
  backlog story update 12 --project=atlas --epic=4
  backlog story update 12 --project=atlas --epic=none --points=none
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description (use - for stdin)")
	cmd.Flags().String("status", "", "New status")
	cmd.Flags().String("priority", "", "New priority")
	cmd.Flags().String("epic", "", "Epic ID to group under, or 'none' to orphan")
	cmd.Flags().String("points", "", "New estimate, or 'none' to drop it")
	cmd.Flags().String("criteria", "", "New acceptance criteria (use - for stdin)")
	cmd.Flags().String("assignee", "", "New assigned identity (empty string unassigns)")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	storyID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
	}

	req := backlog.UpdateStoryRequest{
		StoryID:    storyID,
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
	if criteria := cli.StringFlag(cmd, "criteria"); criteria != nil {
		body, err := cli.ReadBody(*criteria)
		if err != nil {
			cli.Fail(formatter, err)
		}
		req.AcceptanceCriteria = &body
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
	if epicFlag := cli.StringFlag(cmd, "epic"); epicFlag != nil {
		link, err := cli.ParseLink(*epicFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_EPIC", err, "")
		}
		req.EpicID = link
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

	story, conflicted, err := c.App.Backlog.UpdateStory(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if conflicted {
		formatter.Warning(fmt.Sprintf("story %d was modified by someone else since your last read; your change was applied anyway", story.ID))
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", story.ID)
		return nil
	}
	if formatter.JSON {
		payload := storyJSON(story)
		payload["conflict"] = conflicted
		return formatter.Success(payload)
	}

	fmt.Printf("✓ Story #%d updated\n", story.ID)
	return nil
}
