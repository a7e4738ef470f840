package epic

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ShowCmd returns the epic show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single epic",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	epic, err := c.App.Backlog.GetEpic(ctx, pctx, epicID)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", epic.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(epicJSON(epic))
	}

	fmt.Printf("Epic #%d: %s [%s]\n", epic.ID, epic.Name, epic.Status)
	if epic.Description != "" {
		fmt.Printf("  %s\n", epic.Description)
	}
	if epic.AssignedTo != "" {
		fmt.Printf("  Assigned to: %s\n", epic.AssignedTo)
	}
	fmt.Printf("  Last modified by: %s\n", epic.LastModifiedBy)
	return nil
}
