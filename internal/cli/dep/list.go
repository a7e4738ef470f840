package dep

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/graph"
)

// ListCmd returns the dep list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dependency edges in the project",
		Long: `List dependency edges, optionally narrowed to the ones a single
story carries.

Examples:
  backlog dep list --project=atlas
  backlog dep list --story=4 --project=atlas --json
`,
		RunE: runList,
	}

	cmd.Flags().Int64("story", 0, "Only edges carried by this story")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	req := graph.ListDependenciesRequest{
		StoryID: cli.Int64Flag(cmd, "story"),
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

	deps, err := c.App.Graph.ListDependencies(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, d := range deps {
			fmt.Printf("%d\n", d.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(deps))
		for _, d := range deps {
			rows = append(rows, depJSON(d))
		}
		return formatter.Success(rows)
	}

	if len(deps) == 0 {
		fmt.Println("No dependencies found.")
		return nil
	}
	for _, d := range deps {
		fmt.Printf("%-4d story #%d %s story #%d\n", d.ID, d.StoryID, d.DepType, d.DependsOnStoryID)
	}
	return nil
}
