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

// CreateCmd returns the bug create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report a new bug",
		Long: `Report a bug, optionally linked to the story it was found in.

Examples:
  backlog bug create --project=atlas --title="Double charge on retry"

  # Linked to a story, with severity
  backlog bug create --project=atlas --title="Double charge on retry" \
    --story=12 --priority=critical
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Bug title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("description", "", "Bug description (use - for stdin)")
	cmd.Flags().Int64("story", 0, "Story the bug was found in (optional)")
	cmd.Flags().String("priority", "", "Priority: low, medium, high, critical (default medium)")
	cmd.Flags().Int64("points", 0, "Point estimate for the fix")
	cmd.Flags().String("assignee", "", "Assigned identity")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	title, _ := cmd.Flags().GetString("title")
	assignee, _ := cmd.Flags().GetString("assignee")

	description, err := cli.ReadBody(cmd.Flag("description").Value.String())
	if err != nil {
		cli.Fail(formatter, err)
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

	bug, err := c.App.Backlog.CreateBug(ctx, pctx, backlog.CreateBugRequest{
		StoryID:     cli.Int64Flag(cmd, "story"),
		Title:       title,
		Description: description,
		Priority:    priority,
		Points:      cli.Int64Flag(cmd, "points"),
		AssignedTo:  assignee,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", bug.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(bugJSON(bug))
	}

	fmt.Printf("✓ Bug '%s' reported (ID: %d)\n", bug.Title, bug.ID)
	if bug.StoryID != nil {
		fmt.Printf("  Story: #%d\n", *bug.StoryID)
	}
	fmt.Printf("  Priority: %s\n", bug.Priority)
	return nil
}
