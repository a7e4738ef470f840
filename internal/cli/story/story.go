// Package story implements the story subcommands.
package story

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the story parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story",
		Short: "Manage stories",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func storyJSON(s *models.Story) map[string]interface{} {
	payload := map[string]interface{}{
		"id":                  s.ID,
		"project_id":          s.ProjectID,
		"epic_id":             s.EpicID,
		"title":               s.Title,
		"description":         s.Description,
		"status":              s.Status,
		"priority":            s.Priority,
		"points":              s.Points,
		"acceptance_criteria": s.AcceptanceCriteria,
		"assigned_to":         s.AssignedTo,
		"created_at":          s.CreatedAt,
		"updated_at":          s.UpdatedAt,
	}
	return payload
}
