package project

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ListCmd returns the project list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all registered projects",
		Long: `List every registered project. This is an unscoped command: it needs
no --project flag because it is how identifiers are discovered.

Examples:
  backlog project list
  backlog project list --json
`,
		RunE: runList,
	}

	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
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

	projects, err := c.App.Projects.ListProjects(ctx)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, p := range projects {
			fmt.Printf("%d\n", p.ID)
		}
		return nil
	}

	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(projects))
		for _, p := range projects {
			rows = append(rows, map[string]interface{}{
				"id":          p.ID,
				"identifier":  p.Identifier,
				"name":        p.Name,
				"description": p.Description,
				"created_at":  p.CreatedAt,
			})
		}
		return formatter.Success(rows)
	}

	if len(projects) == 0 {
		fmt.Println("No projects registered yet.")
		return nil
	}
	for _, p := range projects {
		fmt.Printf("%-4d %-20s %s\n", p.ID, p.Identifier, p.Name)
	}
	return nil
}
