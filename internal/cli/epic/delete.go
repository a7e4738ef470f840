package epic

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// DeleteCmd returns the epic delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an epic",
		Long: `Delete an epic. Its stories survive as orphans; only the grouping
disappears.

Examples:
  backlog epic delete 4 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runDelete,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	epicID, err := cli.ParseID(args[0])
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

	if err := c.App.Backlog.DeleteEpic(ctx, pctx, epicID); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{"deleted": true, "id": epicID})
	}
	fmt.Printf("✓ Epic #%d deleted (its stories are now orphans)\n", epicID)
	return nil
}
