package epic

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// CreateCmd returns the epic create subcommand
func CreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new epic",
		Long: `Create a new epic in the project. New epics start in todo.

Examples:
  backlog epic create --project=atlas --name="Payments"

  # JSON output for agents
  backlog epic create --project=atlas --name="Payments" \
    --description="Everything billing" --json

  # Quiet mode for bash capture
  EPIC_ID=$(backlog epic create --project=atlas --name="Payments" --quiet)
`,
		RunE: runCreate,
	}

	cmd.Flags().String("name", "", "Epic name (required)")
	if err := cmd.MarkFlagRequired("name"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("description", "", "Epic description (use - for stdin)")
	cmd.Flags().String("assignee", "", "Assigned identity")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	name, _ := cmd.Flags().GetString("name")
	descriptionFlag, _ := cmd.Flags().GetString("description")
	assignee, _ := cmd.Flags().GetString("assignee")

	description, err := cli.ReadBody(descriptionFlag)
	if err != nil {
		cli.Fail(formatter, err)
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

	epic, err := c.App.Backlog.CreateEpic(ctx, pctx, backlog.CreateEpicRequest{
		Name:        name,
		Description: description,
		AssignedTo:  assignee,
	})
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

	fmt.Printf("✓ Epic '%s' created (ID: %d)\n", epic.Name, epic.ID)
	if epic.AssignedTo != "" {
		fmt.Printf("  Assigned to: %s\n", epic.AssignedTo)
	}
	return nil
}
