package bug

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// DeleteCmd returns the bug delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bug",
		Long: `Delete a bug. Its notes and relationship edges go with it.

Examples:
  backlog bug delete 3 --project=atlas
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

	if err := c.App.Backlog.DeleteBug(ctx, pctx, bugID); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", bugID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{"id": bugID, "deleted": true})
	}

	fmt.Printf("✓ Bug #%d deleted\n", bugID)
	return nil
}
