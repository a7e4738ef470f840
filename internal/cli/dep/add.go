package dep

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/graph"
)

// AddCmd returns the dep add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a dependency between two stories",
		Long: `Add a directed dependency edge between two stories in the same
project. The edge is rejected if it would close a cycle.

Examples:
  backlog dep add --story=4 --on=2 --project=atlas
  backlog dep add --story=4 --on=2 --type=blocked_by --project=atlas --json
`,
		RunE: runAdd,
	}

	cmd.Flags().Int64("story", 0, "Story that carries the dependency (required)")
	cmd.Flags().Int64("on", 0, "Story it depends on (required)")
	cmd.Flags().String("type", string(models.DependencyBlocks), "Edge direction: blocks or blocked_by")

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

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	storyID, _ := cmd.Flags().GetInt64("story")
	dependsOn, _ := cmd.Flags().GetInt64("on")
	typeFlag, _ := cmd.Flags().GetString("type")

	depType, err := cli.ParseDepType(typeFlag)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_TYPE", err,
			"Valid dependency types are: blocks, blocked_by")
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

	dep, err := c.App.Graph.AddDependency(ctx, pctx, graph.AddDependencyRequest{
		StoryID:          storyID,
		DependsOnStoryID: dependsOn,
		DepType:          depType,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", dep.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(depJSON(dep))
	}

	fmt.Printf("✓ Story #%d now %s story #%d (ID: %d)\n", dep.StoryID, dep.DepType, dep.DependsOnStoryID, dep.ID)
	return nil
}
