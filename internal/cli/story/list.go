package story

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// ListCmd returns the story list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stories in the project",
		Long: `List the project's stories, narrowed by the filters you pass. Orphan
stories appear in plain listings like any other; --orphan shows only them.

Examples:
  backlog story list --project=atlas
  backlog story list --project=atlas --epic=4
  backlog story list --project=atlas --orphan
  backlog story list --project=atlas --status=todo --priority=high --json
`,
		RunE: runList,
	}

	cmd.Flags().Int64("epic", 0, "Filter by epic ID")
	cmd.Flags().Bool("orphan", false, "Only stories without an epic")
	cmd.Flags().String("status", "", "Filter by status")
	cmd.Flags().String("priority", "", "Filter by priority")
	cmd.Flags().String("assignee", "", "Filter by assigned identity")
	cmd.Flags().Bool("with-dependencies", false, "Only stories that have outgoing dependencies")
	cmd.Flags().Bool("without-dependencies", false, "Only stories with no outgoing dependencies")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	orphan, _ := cmd.Flags().GetBool("orphan")
	assignee, _ := cmd.Flags().GetString("assignee")

	var status models.Status
	if statusFlag, _ := cmd.Flags().GetString("status"); statusFlag != "" {
		parsed, err := cli.ParseStatus(statusFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_STATUS", err,
				"Valid statuses are: todo, in_progress, review, done, blocked")
		}
		status = parsed
	}
	var priority models.Priority
	if priorityFlag, _ := cmd.Flags().GetString("priority"); priorityFlag != "" {
		parsed, err := cli.ParsePriority(priorityFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_PRIORITY", err,
				"Valid priorities are: low, medium, high, critical")
		}
		priority = parsed
	}

	var hasDeps *bool
	withDeps, _ := cmd.Flags().GetBool("with-dependencies")
	withoutDeps, _ := cmd.Flags().GetBool("without-dependencies")
	if withDeps {
		v := true
		hasDeps = &v
	} else if withoutDeps {
		v := false
		hasDeps = &v
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

	stories, err := c.App.Backlog.ListStories(ctx, pctx, backlog.ListStoriesRequest{
		EpicID:          cli.Int64Flag(cmd, "epic"),
		Orphan:          orphan,
		Status:          status,
		Priority:        priority,
		AssignedTo:      assignee,
		HasDependencies: hasDeps,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, s := range stories {
			fmt.Printf("%d\n", s.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(stories))
		for _, s := range stories {
			rows = append(rows, storyJSON(s))
		}
		return formatter.Success(rows)
	}

	if len(stories) == 0 {
		fmt.Println("No stories found.")
		return nil
	}
	for _, s := range stories {
		points := "-"
		if s.Points != nil {
			points = fmt.Sprintf("%d", *s.Points)
		}
		epic := "orphan"
		if s.EpicID != nil {
			epic = fmt.Sprintf("epic #%d", *s.EpicID)
		}
		fmt.Printf("%-4d [%-11s] %-8s %3s pts  %s (%s)\n",
			s.ID, s.Status, s.Priority, points, s.Title, epic)
	}
	return nil
}
