package note

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/backlog"
)

// ListCmd returns the note list subcommand
func ListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes in the project",
		Long: `List notes, optionally narrowed to one parent entity or one
author.

Examples:
  backlog note list --project=atlas
  backlog note list --kind=story --id=4 --project=atlas
  backlog note list --author=ana --project=atlas --json
`,
		RunE: runList,
	}

	cmd.Flags().String("kind", "", "Only notes on this entity kind")
	cmd.Flags().Int64("id", 0, "Only notes on this entity ID")
	cmd.Flags().String("author", "", "Only notes by this author")

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	req := backlog.ListNotesRequest{
		ParentID: cli.Int64Flag(cmd, "id"),
	}
	if kindFlag := cli.StringFlag(cmd, "kind"); kindFlag != nil {
		kind, err := cli.ParseKind(*kindFlag)
		if err != nil {
			cli.FailValidation(formatter, "INVALID_KIND", err, "")
		}
		req.ParentKind = kind
	}
	if author := cli.StringFlag(cmd, "author"); author != nil {
		req.Author = *author
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

	notes, err := c.App.Backlog.ListNotes(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, n := range notes {
			fmt.Printf("%d\n", n.ID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(notes))
		for _, n := range notes {
			rows = append(rows, noteJSON(n))
		}
		return formatter.Success(rows)
	}

	if len(notes) == 0 {
		fmt.Println("No notes found.")
		return nil
	}
	for _, n := range notes {
		fmt.Printf("%-4d %s #%-4d %-12s %s\n", n.ID, n.ParentKind, n.ParentID, n.Author, firstLine(n.Body))
	}
	return nil
}

// firstLine truncates a note body to its first line for table rows.
func firstLine(body string) string {
	for i, r := range body {
		if r == '\n' {
			return body[:i] + "…"
		}
	}
	return body
}
