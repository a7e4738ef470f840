// Package sprint implements the sprint subcommands.
package sprint

import (
	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/models"
)

// Cmd returns the sprint parent command
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "Manage sprints and their analytics",
	}

	cmd.AddCommand(CreateCmd())
	cmd.AddCommand(ListCmd())
	cmd.AddCommand(ShowCmd())
	cmd.AddCommand(UpdateCmd())
	cmd.AddCommand(DeleteCmd())
	cmd.AddCommand(StartCmd())
	cmd.AddCommand(CompleteCmd())
	cmd.AddCommand(CancelCmd())
	cmd.AddCommand(AddCmd())
	cmd.AddCommand(RemoveCmd())
	cmd.AddCommand(MembersCmd())
	cmd.AddCommand(StatusCmd())
	cmd.AddCommand(SnapshotCmd())
	cmd.AddCommand(BurndownCmd())
	cmd.AddCommand(VelocityCmd())

	return cmd
}

func sprintJSON(s *models.Sprint) map[string]interface{} {
	return map[string]interface{}{
		"id":         s.ID,
		"project_id": s.ProjectID,
		"name":       s.Name,
		"goal":       s.Goal,
		"start_date": s.StartDate.Format("2006-01-02"),
		"end_date":   s.EndDate.Format("2006-01-02"),
		"capacity":   s.CapacityPoints,
		"status":     s.Status,
		"created_at": s.CreatedAt,
		"updated_at": s.UpdatedAt,
	}
}

func snapshotJSON(snap *models.SprintSnapshot) map[string]interface{} {
	return map[string]interface{}{
		"id":               snap.ID,
		"sprint_id":        snap.SprintID,
		"committed_points": snap.CommittedPoints(),
		"remaining_points": snap.RemainingPoints,
		"completed_points": snap.CompletedPoints,
		"added_points":     snap.AddedPoints,
		"removed_points":   snap.RemovedPoints,
		"taken_at":         snap.TakenAt,
	}
}
