package bug

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// UpdateCmd returns the bug update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a bug",
		Long: `Update fields of a bug. Only the flags you pass change. The story
link is clearable: pass --story=none to unlink.

Examples:
  backlog bug update 3 --project=atlas --status=in_progress
  backlog bug update 3 --project=atlas --story=none
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("title", "", "New title")
	cmd.Flags().String("description", "", "New description (use - for stdin)")
	cmd.Flags().String("status", "", "New status")
	cmd.Flags().String("priority", "", "New priority")
	cmd.Flags().String("story", "", "Story ID to link, or 'none' to unlink")
	cmd.Flags().String("points", "", "New estimate, or 'none' to drop it")
	cmd.Flags().String("assignee", "", "New assigned identity (empty string unassigns)")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	bugID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
	}

	req := backlog.UpdateBugRequest{
		BugID:      bugID,
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
	if storyFlag := cli.StringFlag(cmd, "story"); storyFlag != nil {
		link, err := cli.ParseLink(*storyFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_STORY", err, "")
		}
		req.StoryID = link
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

	bug, conflicted, err := c.App.Backlog.UpdateBug(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if conflicted {
		formatter.Warning(fmt.Sprintf("bug %d was modified by someone else since your last read; your change was applied anyway", bug.ID))
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", bug.ID)
		return nil
	}
	if formatter.JSON {
		payload := bugJSON(bug)
		payload["conflict"] = conflicted
		return formatter.Success(payload)
	}

	fmt.Printf("✓ Bug #%d updated\n", bug.ID)
	return nil
}
