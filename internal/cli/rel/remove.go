package rel

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// RemoveCmd returns the rel rm subcommand
func RemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Remove a relationship by ID",
		Long: `Remove a relationship edge by its ID, as printed by 'rel list'.

Examples:
  backlog rel rm 12 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runRemove,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	relationshipID, err := cli.ParseID(args[0])
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

	if err := c.App.Graph.RemoveRelationship(ctx, pctx, relationshipID); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", relationshipID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{"id": relationshipID, "deleted": true})
	}

	fmt.Printf("✓ Relationship #%d removed\n", relationshipID)
	return nil
}
