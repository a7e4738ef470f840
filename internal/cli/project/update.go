package project

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	projectservice "github.com/mfigueroa/backlog/internal/services/project"
)

// UpdateCmd returns the project update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update a project's name or description",
		Long: `Update the display fields of the project behind --project. The
identifier itself is immutable.

Examples:
  backlog project update --project=atlas --name="Atlas v2"
  backlog project update --project=atlas --description="Post-launch cleanup"
`,
		RunE: runUpdate,
	}

	cmd.Flags().String("name", "", "New display name")
	cmd.Flags().String("description", "", "New description")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

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

	project, err := c.App.Projects.UpdateProject(ctx, pctx, projectservice.UpdateProjectRequest{
		Name:        cli.StringFlag(cmd, "name"),
		Description: cli.StringFlag(cmd, "description"),
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", project.ID)
		return nil
	}

	if formatter.JSON {
		return formatter.Success(map[string]interface{}{
			"id":          project.ID,
			"identifier":  project.Identifier,
			"name":        project.Name,
			"description": project.Description,
		})
	}

	fmt.Printf("✓ Project '%s' updated\n", project.Identifier)
	return nil
}
