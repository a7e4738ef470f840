package project

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// DeleteCmd returns the project delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a project and everything it owns",
		Long: `Delete the project behind --project. All epics, stories, tasks, bugs,
sprints, notes, and graph edges inside it go with it. Security log rows
survive; the audit trail outlives its subjects.

Examples:
  backlog project delete --project=atlas --confirm
`,
		RunE: runDelete,
	}

	cmd.Flags().Bool("confirm", false, "Required acknowledgement for the cascade")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	confirmed, _ := cmd.Flags().GetBool("confirm")
	if !confirmed {
		cli.FailValidation(formatter, cli.CodeValidation,
			fmt.Errorf("refusing to cascade-delete without --confirm"),
			"Re-run with --confirm to delete the project and all entities it owns")
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

	if err := c.App.Projects.DeleteProject(ctx, pctx); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{
			"deleted":    true,
			"identifier": pctx.Identifier,
		})
	}
	fmt.Printf("✓ Project '%s' deleted\n", pctx.Identifier)
	return nil
}
