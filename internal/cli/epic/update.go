package epic

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// UpdateCmd returns the epic update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an epic",
		Long: `Update fields of an epic. Only the flags you pass change; status moves
must follow the workflow. A concurrent edit by someone else surfaces as a
warning, never as a failure.

Examples:
  backlog epic update 4 --project=atlas --status=in_progress
  backlog epic update 4 --project=atlas --name="Payments v2" --json
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("name", "", "New name")
	cmd.Flags().String("description", "", "New description (use - for stdin)")
	cmd.Flags().String("status", "", "New status: todo, in_progress, review, done, blocked")
	cmd.Flags().String("assignee", "", "New assigned identity (empty string unassigns)")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	epicID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
	}

	req := backlog.UpdateEpicRequest{
		EpicID:     epicID,
		Name:       cli.StringFlag(cmd, "name"),
		AssignedTo: cli.StringFlag(cmd, "assignee"),
	}

	if desc := cli.StringFlag(cmd, "description"); desc != nil {
		body, err := cli.ReadBody(*desc)
		if err != nil {
			cli.Fail(formatter, err)
		}
		req.Description = &body
	}

	if statusFlag := cli.StringFlag(cmd, "status"); statusFlag != nil {
		status, err := cli.ParseStatus(*statusFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_STATUS", err,
				"Valid statuses are: todo, in_progress, review, done, blocked")
		}
		req.Status = &status
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

	epic, conflicted, err := c.App.Backlog.UpdateEpic(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if conflicted {
		formatter.Warning(conflictWarning(models.KindEpic, epic.ID))
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", epic.ID)
		return nil
	}
	if formatter.JSON {
		payload := epicJSON(epic)
		payload["conflict"] = conflicted
		return formatter.Success(payload)
	}

	fmt.Printf("✓ Epic #%d updated\n", epic.ID)
	return nil
}

// conflictWarning phrases the advisory concurrent-edit notice.
func conflictWarning(kind models.EntityKind, id int64) string {
	return fmt.Sprintf("%s %d was modified by someone else since your last read; your change was applied anyway", kind, id)
}
