// Package note implements the note subcommands.
package note

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the note parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes on entities",
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func noteJSON(n *models.Note) map[string]interface{} {
	return map[string]interface{}{
		"id":          n.ID,
		"parent_kind": n.ParentKind,
		"parent_id":   n.ParentID,
		"author":      n.Author,
		"body":        n.Body,
		"created_at":  n.CreatedAt,
		"updated_at":  n.UpdatedAt,
	}
}
