package story

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ShowCmd returns the story show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single story",
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

	storyID, err := cli.ParseID(args[0])
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

	story, err := c.App.Backlog.GetStory(ctx, pctx, storyID)
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

	fmt.Printf("Story #%d: %s [%s/%s]\n", story.ID, story.Title, story.Status, story.Priority)
	if story.EpicID != nil {
		fmt.Printf("  Epic: #%d\n", *story.EpicID)
	}
	if story.Points != nil {
		fmt.Printf("  Points: %d\n", *story.Points)
	}
	if story.Description != "" {
		fmt.Printf("  %s\n", story.Description)
	}
	if story.AcceptanceCriteria != "" {
		fmt.Printf("  Acceptance: %s\n", story.AcceptanceCriteria)
	}
	if story.AssignedTo != "" {
		fmt.Printf("  Assigned to: %s\n", story.AssignedTo)
	}
	fmt.Printf("  Last modified by: %s\n", story.LastModifiedBy)
	return nil
}
