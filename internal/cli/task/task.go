// Package task implements the task subcommands.
package task

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the task parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())

	return cmd
}

func taskJSON(t *models.Task) map[string]interface{} {
	return map[string]interface{}{
		"id":          t.ID,
		"story_id":    t.StoryID,
		"title":       t.Title,
		"description": t.Description,
		"type":        t.TaskType,
		"status":      t.Status,
		"priority":    t.Priority,
		"points":      t.Points,
		"assigned_to": t.AssignedTo,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}
