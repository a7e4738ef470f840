package sprint

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/cli"
	"github.com/mfigueroa/backlog/internal/services/sprint"
)

// AddCmd returns the sprint add subcommand
func AddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <sprint-id>",
		Short: "Add a story or bug to a sprint",
		Long: `Add a work item to a sprint's scope. Only stories and bugs join
directly; tasks ride along with their story.

Examples:
  backlog sprint add 2 --kind=story --id=4 --project=atlas
  backlog sprint add 2 --kind=bug --id=7 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runAddMember,
	}

	cmd.Flags().String("kind", "", "Item kind: story or bug (required)")
	cmd.Flags().Int64("id", 0, "Item ID (required)")

	for _, name := range []string{"kind", "id"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			log.Printf("Error marking flag as required: %v", err)
		}
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runAddMember(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	req, err := memberRequest(cmd, args)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_MEMBER", err,
			"Sprint members are stories and bugs; tasks follow their story")
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

	member, err := c.App.Sprints.AddMember(ctx, pctx, req)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", member.ID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{
			"id":        member.ID,
			"sprint_id": member.SprintID,
			"item_kind": member.ItemKind,
			"item_id":   member.ItemID,
			"added_by":  member.AddedBy,
			"added_at":  member.AddedAt,
		})
	}

	fmt.Printf("✓ %s #%d added to sprint #%d\n", member.ItemKind, member.ItemID, member.SprintID)
	return nil
}

// RemoveCmd returns the sprint rm subcommand
func RemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rm <sprint-id>",
		Aliases: []string{"remove"},
		Short:   "Remove a story or bug from a sprint",
		Long: `Remove a work item from a sprint's scope. The item itself is
untouched.

Examples:
  backlog sprint rm 2 --kind=story --id=4 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runRemoveMember,
	}

	cmd.Flags().String("kind", "", "Item kind: story or bug (required)")
	cmd.Flags().Int64("id", 0, "Item ID (required)")

	for _, name := range []string{"kind", "id"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			log.Printf("Error marking flag as required: %v", err)
		}
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runRemoveMember(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	req, err := memberRequest(cmd, args)
	if err != nil {
		cli.FailValidation(formatter, "INVALID_MEMBER", err,
			"Sprint members are stories and bugs; tasks follow their story")
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

	if err := c.App.Sprints.RemoveMember(ctx, pctx, req); err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		fmt.Printf("%d\n", req.ItemID)
		return nil
	}
	if formatter.JSON {
		return formatter.Success(map[string]interface{}{
			"sprint_id": req.SprintID,
			"item_kind": req.ItemKind,
			"item_id":   req.ItemID,
			"removed":   true,
		})
	}

	fmt.Printf("✓ %s #%d removed from sprint #%d\n", req.ItemKind, req.ItemID, req.SprintID)
	return nil
}

// MembersCmd returns the sprint members subcommand
func MembersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members <sprint-id>",
		Short: "List a sprint's work items",
		Long: `List the stories and bugs in a sprint's scope.

Examples:
  backlog sprint members 2 --project=atlas
`,
		Args: cobra.ExactArgs(1),
		RunE: runMembers,
	}

	cli.AddScopeFlags(cmd)
	cli.AddOutputFlags(cmd)

	return cmd
}

func runMembers(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	formatter := cli.FormatterFrom(cmd)

	sprintID, err := cli.ParseID(args[0])
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

	members, err := c.App.Sprints.ListMembers(ctx, pctx, sprintID)
	if err != nil {
		cli.Fail(formatter, err)
	}

	if formatter.Quiet {
		for _, m := range members {
			fmt.Printf("%d\n", m.ItemID)
		}
		return nil
	}
	if formatter.JSON {
		rows := make([]map[string]interface{}, 0, len(members))
		for _, m := range members {
			rows = append(rows, map[string]interface{}{
				"id":        m.ID,
				"item_kind": m.ItemKind,
				"item_id":   m.ItemID,
				"added_by":  m.AddedBy,
				"added_at":  m.AddedAt,
			})
		}
		return formatter.Success(rows)
	}

	if len(members) == 0 {
		fmt.Println("Sprint has no work items yet.")
		return nil
	}
	for _, m := range members {
		fmt.Printf("%-6s #%-4d added by %s\n", m.ItemKind, m.ItemID, m.AddedBy)
	}
	return nil
}

// memberRequest parses the shared sprint-id positional plus --kind/--id
// flags into a membership request.
func memberRequest(cmd *cobra.Command, args []string) (sprint.MemberRequest, error) {
	sprintID, err := cli.ParseID(args[0])
	if err != nil {
		return sprint.MemberRequest{}, err
	}

	kindFlag, _ := cmd.Flags().GetString("kind")
	kind, err := cli.ParseKind(kindFlag)
	if err != nil {
		return sprint.MemberRequest{}, err
	}

	itemID, _ := cmd.Flags().GetInt64("id")

	return sprint.MemberRequest{
		SprintID: sprintID,
		ItemKind: kind,
		ItemID:   itemID,
	}, nil
}
