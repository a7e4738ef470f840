package project

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ShowCmd returns the project show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a project with its entity totals",
		Long: `Show the project behind --project along with per-entity counts.

Examples:
  backlog project show --project=atlas
  backlog project show --project=atlas --json
`,
		RunE: runShow,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
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

	detail, err := c.App.Projects.GetProject(ctx, pctx)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", detail.Project.ID)
		return nil
	}

	if formatter.JSON {
		return formatter.Success(map[string]interface{}{
			"id":          detail.Project.ID,
			"identifier":  detail.Project.Identifier,
			"name":        detail.Project.Name,
			"description": detail.Project.Description,
			"created_at":  detail.Project.CreatedAt,
			"counts": map[string]interface{}{
				"epics":   detail.Counts.Epics,
				"stories": detail.Counts.Stories,
				"tasks":   detail.Counts.Tasks,
				"bugs":    detail.Counts.Bugs,
				"sprints": detail.Counts.Sprints,
			},
		})
	}

	fmt.Printf("%s (%s, ID: %d)\n", detail.Project.Name, detail.Project.Identifier, detail.Project.ID)
	if detail.Project.Description != "" {
		fmt.Printf("  %s\n", detail.Project.Description)
	}
	fmt.Printf("  Epics: %d  Stories: %d  Tasks: %d  Bugs: %d  Sprints: %d\n",
		detail.Counts.Epics, detail.Counts.Stories, detail.Counts.Tasks,
		detail.Counts.Bugs, detail.Counts.Sprints)
	return nil
}
