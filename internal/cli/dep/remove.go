package dep

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// RemoveCmd returns the dep rm subcommand
func RemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm",
		Aliases: []string{"remove"},
		Short:   "Remove a dependency between two stories",
		Long: `Remove the dependency edge between two stories, whatever its
direction label.

Examples:
  backlog dep rm --story=4 --on=2 --project=atlas
`,
		RunE: runRemove,
	}

	cmd.Flags().Int64("story", 0, "Story that carries the dependency (required)")
	cmd.Flags().Int64("on", 0, "Story it depends on (required)")

	if err := cmd.MarkFlagRequired("story"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	if err := cmd.MarkFlagRequired("on"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	storyID, _ := cmd.Flags().GetInt64("story")
	dependsOn, _ := cmd.Flags().GetInt64("on")

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

	if err := c.App.Graph.RemoveDependency(ctx, pctx, storyID, dependsOn); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", storyID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{
			"story_id":   storyID,
			"depends_on": dependsOn,
			"deleted":    true,
		})
	}

	fmt.Printf("✓ Dependency between story #%d and story #%d removed\n", storyID, dependsOn)
	return nil
}
