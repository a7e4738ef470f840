package rel

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/graph"
)

// ListCmd returns the rel list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List relationship edges in the project",
		Long: `List relationship edges, optionally narrowed by source entity or
by label.

Examples:
  backlog rel list --project=atlas
  backlog rel list --source-kind=story --source=4 --project=atlas
  backlog rel list --type=blocks --project=atlas --json
`,
		RunE: runList,
	}

	cmd.Flags().String("source-kind", "", "Only edges from this entity kind")
	cmd.Flags().Int64("source", 0, "Only edges from this entity ID")
	cmd.Flags().String("type", "", "Only edges with this label")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	req := graph.ListRelationshipsRequest{
		SourceID: cli.Int64Flag(cmd, "source"),
	}
	if kindFlag := cli.StringFlag(cmd, "source-kind"); kindFlag != nil {
		kind, err := cli.ParseKind(*kindFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_KIND", err, "")
		}
		req.SourceKind = kind
	}
	if typeFlag := cli.StringFlag(cmd, "type"); typeFlag != nil {
		relType, err := cli.ParseRelType(*typeFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_TYPE", err, "")
		}
		req.RelType = relType
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

	rels, err := c.App.Graph.ListRelationships(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, r := range rels {
			fmt.Printf("%d\n", r.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(rels))
		for _, r := range rels {
			rows = append(rows, relJSON(r))
		}
		return formatter.Success(rows)
	}

	if len(rels) == 0 {
		fmt.Println("No relationships found.")
		return nil
	}
	for _, r := range rels {
		fmt.Printf("%-4d %s #%d %s %s #%d\n", r.ID, r.SourceKind, r.SourceID, r.RelType, r.TargetKind, r.TargetID)
	}
	return nil
}
