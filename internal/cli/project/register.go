package project

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	projectservice "github.com/mfigueroa/backlog/internal/services/project"
)

// RegisterCmd returns the project register subcommand
func RegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new project",
		Long: `Register a new project under a unique identifier. The identifier is
the handle every scoped command takes via --project.

Examples:
  # Register with identifier only (name defaults to it)
  backlog project register --identifier=atlas

  # Full registration, JSON output for agents
  backlog project register --identifier=atlas --name="Atlas Rewrite" \
    --description="Q3 platform work" --json

  # Quiet mode for bash capture
  PROJECT_ID=$(backlog project register --identifier=atlas --quiet)
`,
		RunE: runRegister,
	}

	cmd.Flags().String("identifier", "", "Unique project identifier (required)")
	if err := cmd.MarkFlagRequired("identifier"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}
	cmd.Flags().String("name", "", "Display name (defaults to the identifier)")
	cmd.Flags().String("description", "", "Project description")

	cli.AddOutputFlags(cmd)

	return cmd
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	identifier, _ := cmd.Flags().GetString("identifier")
	name, _ := cmd.Flags().GetString("name")
	description, _ := cmd.Flags().GetString("description")

	c, err := cli.NewCLI(ctx)
	if err != nil {
		cli.Fail(formatter, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	project, err := c.App.Projects.RegisterProject(ctx, projectservice.RegisterProjectRequest{
		Identifier:  identifier,
		Name:        name,
		Description: description,
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
			"id":         project.ID,
			"identifier": project.Identifier,
			"name":       project.Name,
			"created_at": project.CreatedAt,
		})
	}

	fmt.Printf("✓ Project '%s' registered (ID: %d)\n", project.Identifier, project.ID)
	if project.Name != project.Identifier {
		fmt.Printf("  Name: %s\n", project.Name)
	}
	return nil
}
