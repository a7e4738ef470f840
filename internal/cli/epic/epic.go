// Package epic implements the epic subcommands.
package epic

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the epic parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epic",
		Short: "Manage epics",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func epicJSON(e *models.Epic) map[string]interface{} {
	return map[string]interface{}{
		"id":          e.ID,
		"project_id":  e.ProjectID,
		"name":        e.Name,
		"description": e.Description,
		"status":      e.Status,
		"assigned_to": e.AssignedTo,
		"created_at":  e.CreatedAt,
		"updated_at":  e.UpdatedAt,
	}
}
