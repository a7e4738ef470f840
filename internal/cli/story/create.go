package story

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// CreateCmd returns the story create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new story",
		Long: `Create a new story, optionally grouped under an epic. Stories without
an epic are orphans and remain fully addressable.

Examples:
  backlog story create --project=atlas --title="Checkout flow"

  # Under an epic, with an estimate
  backlog story create --project=atlas --title="Checkout flow" \
    --epic=4 --points=5 --priority=high

  # Quiet mode for bash capture
  STORY_ID=$(backlog story create --project=atlas --title="Checkout flow" --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("title", "", "Story title (required)")
	if err := cmd.MarkFlagRequired("title"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("description", "", "Story description (use - for stdin)")
	cmd.Flags().Int64("epic", 0, "Epic ID to group under (omit for an orphan story)")
	cmd.Flags().String("priority", "", "Priority: low, medium, high, critical (default medium)")
	cmd.Flags().Int64("points", 0, "Story point estimate")
	cmd.Flags().String("criteria", "", "Acceptance criteria (use - for stdin)")
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
	criteria, err := cli.ReadBody(cmd.Flag("criteria").Value.String())
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

	req := backlog.CreateStoryRequest{
		Title:              title,
		Description:        description,
		Priority:           priority,
		AcceptanceCriteria: criteria,
		AssignedTo:         assignee,
		EpicID:             cli.Int64Flag(cmd, "epic"),
		Points:             cli.Int64Flag(cmd, "points"),
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

	story, err := c.App.Backlog.CreateStory(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", story.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(storyJSON(story))
	}

	fmt.Printf("✓ Story '%s' created (ID: %d)\n", story.Title, story.ID)
	if story.EpicID != nil {
		fmt.Printf("  Epic: #%d\n", *story.EpicID)
	}
	if story.Points != nil {
		fmt.Printf("  Points: %d\n", *story.Points)
	}
	fmt.Printf("  Priority: %s\n", story.Priority)
	return nil
}
