// Package dep implements the story dependency subcommands.
package dep

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the dep parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dep",
		Short: "Manage story dependencies",
	}

	cmd.AddCommand(AddCmd())
	cmd.AddCommand(RemoveCmd())
	cmd.AddCommand(ListCmd())

	return cmd
}

func depJSON(d *models.Dependency) map[string]interface{} {
	return map[string]interface{}{
		"id":         d.ID,
		"story_id":   d.StoryID,
		"depends_on": d.DependsOnStoryID,
		"type":       d.DepType,
		"created_at": d.CreatedAt,
	}
}
