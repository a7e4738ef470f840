package note

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
)

// UpdateCmd returns the note update subcommand
func UpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rewrite a note's body",
		Long: `Rewrite a note's body. The author stays whoever wrote it.

Examples:
  backlog note update 7 --body="Fixed in build 91" --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().String("body", "", "New body, or - for stdin (required)")
	if err := cmd.MarkFlagRequired("body"); err != nil {
		log.Printf("Error marking flag as required: %v", err)
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	noteID, err := cli.ParseID(args[0])
	if err != nil {
		cli.FailValidation(formatter, "INVALID_ID", err, "")
	}

	bodyFlag, _ := cmd.Flags().GetString("body")
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

	note, err := c.App.Backlog.UpdateNote(ctx, pctx, noteID, body)
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

	fmt.Printf("✓ Note #%d updated\n", note.ID)
	return nil
}
