package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// DeleteCmd returns the sprint delete subcommand
func DeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a sprint still in planning",
		Long: `Delete a sprint. Only sprints still in planning can be deleted;
anything later has history worth keeping.

Examples:
  backlog sprint delete 2 --project=atlas
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

	sprintID, err := cli.ParseID(args[0])
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

	if err := c.App.Sprints.DeleteSprint(ctx, pctx, sprintID); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", sprintID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{"id": sprintID, "deleted": true})
	}

	fmt.Printf("✓ Sprint #%d deleted\n", sprintID)
	return nil
}
