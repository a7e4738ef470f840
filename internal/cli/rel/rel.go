// Package rel implements the typed relationship subcommands.
package rel

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the rel parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rel",
		Short: "Manage typed relationships between entities",
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(RemoveCmd())
	cmd.AddCommand(ListCmd())

	return cmd
}

func relJSON(r *models.Relationship) map[string]interface{} {
	return map[string]interface{}{
		"id":          r.ID,
		"source_kind": r.SourceKind,
		"source_id":   r.SourceID,
		"target_kind": r.TargetKind,
		"target_id":   r.TargetID,
		"type":        r.RelType,
		"created_at":  r.CreatedAt,
	}
}
