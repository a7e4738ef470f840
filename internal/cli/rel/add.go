package rel

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/graph"
)

// AddCmd returns the rel add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a typed relationship between two entities",
		Long: `Add a directed, typed edge between two entities in the same
project. Ordering types (blocks, blocked_by, depends_on) are rejected if
they would close a cycle; related_to and cloned_from are annotations and
skip the cycle check.

Examples:
  backlog rel add --source-kind=story --source=4 --target-kind=bug --target=2 --project=atlas
  backlog rel add --source-kind=task --source=7 --target-kind=task --target=9 --type=depends_on --project=atlas
`,
		RunE: runAdd,
	}

	cmd.Flags().String("source-kind", "", "Source entity kind (required)")
	cmd.Flags().Int64("source", 0, "Source entity ID (required)")
	cmd.Flags().String("target-kind", "", "Target entity kind (required)")
	cmd.Flags().Int64("target", 0, "Target entity ID (required)")
	cmd.Flags().String("type", string(models.RelRelatedTo), "Edge label: blocks, blocked_by, related_to, cloned_from, depends_on")

	for _, name := range []string{"source-kind", "source", "target-kind", "target"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			log.Printf("Error marking flag as required: %v", err)
		}
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	sourceKindFlag, _ := cmd.Flags().GetString("source-kind")
	sourceID, _ := cmd.Flags().GetInt64("source")
	targetKindFlag, _ := cmd.Flags().GetString("target-kind")
	targetID, _ := cmd.Flags().GetInt64("target")
	typeFlag, _ := cmd.Flags().GetString("type")

	sourceKind, err := cli.ParseKind(sourceKindFlag)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_KIND", err, "")
	}
	targetKind, err := cli.ParseKind(targetKindFlag)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_KIND", err, "")
	}
	relType, err := cli.ParseRelType(typeFlag)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_TYPE", err,
			"Valid relationship types are: blocks, blocked_by, related_to, cloned_from, depends_on")
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

	rel, err := c.App.Graph.AddRelationship(ctx, pctx, graph.AddRelationshipRequest{
		SourceKind: sourceKind,
		SourceID:   sourceID,
		TargetKind: targetKind,
		TargetID:   targetID,
		RelType:    relType,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", rel.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(relJSON(rel))
	}

	fmt.Printf("✓ %s #%d %s %s #%d (ID: %d)\n", rel.SourceKind, rel.SourceID, rel.RelType, rel.TargetKind, rel.TargetID, rel.ID)
	return nil
}
