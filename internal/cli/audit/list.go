package audit

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
)

// ListCmd returns the audit list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List security audit events",
		Long: `List audit events, newest first. The log records unregistered-
project lookups, cross-project violations, and detected edit conflicts.
Reading it needs no project scope; pass --project to narrow to one
project's rows.

Examples:
  backlog audit list
  backlog audit list --type=project_violation --limit=20
  backlog audit list --actor=ana --since=2026-08-01 --json
`,
		RunE: runList,
	}

	cmd.Flags().String("type", "", "Only events of this type")
	cmd.Flags().String("actor", "", "Only events by this actor")
	cmd.Flags().String("since", "", "Only events on or after this date (YYYY-MM-DD)")
	cmd.Flags().Int("limit", 50, "Maximum rows to return")
	cmd.Flags().String("project", "", "Only events under this project identifier")

	cli.AddActorFlag(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	filter := models.SecurityEventFilter{}

	if typeFlag := cli.StringFlag(cmd, "type"); typeFlag != nil {
		eventType := models.SecurityEventType(*typeFlag)
		if !eventType.IsValid() {
			cli.FailValidation(formatter, "INVALID_TYPE",
				fmt.Errorf("invalid event type '%s'", *typeFlag),
				"Valid event types are: unauthorized_access, project_violation, conflict_detected")
		}
		filter.EventType = eventType
	}
	if actor := cli.StringFlag(cmd, "actor"); actor != nil {
		filter.Actor = *actor
	}
	if sinceFlag := cli.StringFlag(cmd, "since"); sinceFlag != nil {
		since, err := cli.ParseDate(*sinceFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_DATE", err, "Dates use the YYYY-MM-DD layout")
		}
		filter.Since = &since
	}
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	c, err := cli.NewCLI(ctx)
	if err != nil {
		cli.Fail(formatter, err)
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Printf("Error closing CLI: %v", err)
		}
	}()

	// Narrowing to a project resolves the identifier first, so an unknown
	// one fails the usual way instead of silently matching nothing.
	if identifier := cli.StringFlag(cmd, "project"); identifier != nil {
		pctx, err := c.App.Access.ResolveContext(ctx, *identifier, c.Actor(cmd), "")
		if err != nil {
			cli.Fail(formatter, err)
		}
		filter.ProjectID = &pctx.ProjectID
	}

	events, err := c.App.Access.ListSecurityEvents(ctx, filter)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, e := range events {
			fmt.Printf("%d\n", e.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(events))
		for _, e := range events {
			rows = append(rows, eventJSON(e))
		}
		return formatter.Success(rows)
	}

	if len(events) == 0 {
		fmt.Println("No audit events recorded.")
		return nil
	}
	for _, e := range events {
		fmt.Printf("%-5d %s  %-19s %-12s %s\n",
			e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.EventType, e.Actor, e.Message)
	}
	return nil
}
