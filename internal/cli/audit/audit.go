// Package audit implements the security audit log subcommands.
package audit

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the audit parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Read the security audit log",
	}

	cmd.AddCommand(ListCmd())

	return cmd
}

func eventJSON(e *models.SecurityEvent) map[string]interface{} {
	return map[string]interface{}{
		"id":                e.ID,
		"type":              e.EventType,
		"actor":             e.Actor,
		"project_id":        e.ProjectID,
		"target_project_id": e.TargetProjectID,
		"entity_kind":       e.EntityKind,
		"entity_id":         e.EntityID,
		"message":           e.Message,
		"created_at":        e.CreatedAt,
	}
}
