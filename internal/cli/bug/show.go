package bug

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ShowCmd returns the bug show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single bug",
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

	bugID, err := cli.ParseID(args[0])
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

	bug, err := c.App.Backlog.GetBug(ctx, pctx, bugID)
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

	fmt.Printf("Bug #%d: %s [%s/%s]\n", bug.ID, bug.Title, bug.Status, bug.Priority)
	if bug.StoryID != nil {
		fmt.Printf("  Story: #%d\n", *bug.StoryID)
	}
	if bug.Description != "" {
		fmt.Printf("  %s\n", bug.Description)
	}
	if bug.AssignedTo != "" {
		fmt.Printf("  Assigned to: %s\n", bug.AssignedTo)
	}
	fmt.Printf("  Last modified by: %s\n", bug.LastModifiedBy)
	return nil
}
