package note

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// ShowCmd returns the note show subcommand
func ShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note",
		Long: `Show a single note with its full body.

Examples:
  backlog note show 7 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runShow,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	noteID, err := cli.ParseID(args[0])
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

	note, err := c.App.Backlog.GetNote(ctx, pctx, noteID)
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

	fmt.Printf("Note #%d on %s #%d\n", note.ID, note.ParentKind, note.ParentID)
	fmt.Printf("  Author: %s\n", note.Author)
	fmt.Printf("  Created: %s\n", note.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("\n%s\n", note.Body)
	return nil
}
