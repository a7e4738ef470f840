package note

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// AddCmd returns the note add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Attach a note to an entity",
		Long: `Attach a freeform note to any entity in the project. The author
is the acting identity. Use --body=- to read the body from stdin.

Examples:
  backlog note add --kind=story --id=4 --body="Flaky on CI" --project=atlas
  git log -1 | backlog note add --kind=bug --id=2 --body=- --project=atlas
`,
		RunE: runAdd,
	}

	cmd.Flags().String("kind", "", "Parent entity kind (required)")
	cmd.Flags().Int64("id", 0, "Parent entity ID (required)")
	cmd.Flags().String("body", "", "Note body, or - for stdin (required)")

	for _, name := range []string{"kind", "id", "body"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			log.Printf("Error marking flag as required: %v", err)
		}
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	kindFlag, _ := cmd.Flags().GetString("kind")
	parentID, _ := cmd.Flags().GetInt64("id")
	bodyFlag, _ := cmd.Flags().GetString("body")

	kind, err := cli.ParseKind(kindFlag)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_KIND", err,
			"Valid kinds are: project, epic, story, task, bug, sprint")
	}
	body, err := cli.ReadBody(bodyFlag)
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

	note, err := c.App.Backlog.AddNote(ctx, pctx, backlog.AddNoteRequest{
		ParentKind: kind,
		ParentID:   parentID,
		Body:       body,
	})
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", note.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(noteJSON(note))
	}

	fmt.Printf("✓ Note added to %s #%d (ID: %d)\n", note.ParentKind, note.ParentID, note.ID)
	fmt.Printf("  Author: %s\n", note.Author)
	return nil
}
