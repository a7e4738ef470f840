// Package bug implements the bug subcommands.
package bug

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the bug parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bug",
		Short: "Manage bugs",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func bugJSON(b *models.Bug) map[string]interface{} {
	return map[string]interface{}{
		"id":          b.ID,
		"project_id":  b.ProjectID,
		"story_id":    b.StoryID,
		"title":       b.Title,
		"description": b.Description,
		"status":      b.Status,
		"priority":    b.Priority,
		"points":      b.Points,
		"assigned_to": b.AssignedTo,
		"created_at":  b.CreatedAt,
		"updated_at":  b.UpdatedAt,
	}
}
