package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/mfigueroa/backlog/internal/models"
)

// StoryRepo handles all story-related database operations.
type StoryRepo struct {
	db *sql.DB
}

const storyColumns = `id, project_id, epic_id, title, description, status, priority, points, acceptance_criteria, assigned_to, last_modified_by, created_at, updated_at`

func scanStory(row interface{ Scan(...any) error }) (*models.Story, error) {
	story := &models.Story{}
	var epicID, points sql.NullInt64
	err := row.Scan(
		&story.ID, &story.ProjectID, &epicID, &story.Title, &story.Description,
		&story.Status, &story.Priority, &points, &story.AcceptanceCriteria,
		&story.AssignedTo, &story.LastModifiedBy, &story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	story.EpicID = nullInt64ToPtr(epicID)
	story.Points = nullInt64ToPtr(points)
	return story, nil
}

// Create inserts a new story. The story's project assignment is fixed here:
// an orphan story (no epic) still lands in exactly one project.
func (r *StoryRepo) Create(ctx context.Context, story *models.Story, actor string) (*models.Story, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO stories (project_id, epic_id, title, description, status, priority, points, acceptance_criteria, assigned_to, last_modified_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		story.ProjectID, ptrToNullInt64(story.EpicID), story.Title, story.Description,
		story.Status, story.Priority, ptrToNullInt64(story.Points),
		story.AcceptanceCriteria, story.AssignedTo, actor,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert story '%s': %w", story.Title, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get story ID after insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a story by its ID.
func (r *StoryRepo) GetByID(ctx context.Context, id int64) (*models.Story, error) {
	story, err := scanStory(r.db.QueryRowContext(ctx,
		`SELECT `+storyColumns+` FROM stories WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get story %d: %w", id, err)
	}
	return story, nil
}

// GetProjectID returns the owning project of a story.
func (r *StoryRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM stories WHERE id = ?`, id).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for story %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves stories matching the filter. Scoping happens in the WHERE
// clause: rows from other projects are never fetched, orphan stories are
// selected by epic_id IS NULL within the same project.
func (r *StoryRepo) List(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error) {
	query := `SELECT ` + storyColumns + ` FROM stories WHERE project_id = ?`
	args := []any{filter.ProjectID}

	if filter.Orphan {
		query += ` AND epic_id IS NULL`
	} else if filter.EpicID != nil {
		query += ` AND epic_id = ?`
		args = append(args, *filter.EpicID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += ` AND priority = ?`
		args = append(args, filter.Priority)
	}
	if filter.AssignedTo != "" {
		query += ` AND assigned_to = ?`
		args = append(args, filter.AssignedTo)
	}
	if filter.HasDependencies != nil {
		if *filter.HasDependencies {
			query += ` AND EXISTS (SELECT 1 FROM dependencies d WHERE d.story_id = stories.id)`
		} else {
			query += ` AND NOT EXISTS (SELECT 1 FROM dependencies d WHERE d.story_id = stories.id)`
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	stories := make([]*models.Story, 0, 10)
	for rows.Next() {
		story, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story row: %w", err)
		}
		stories = append(stories, story)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating story rows: %w", err)
	}
	return stories, nil
}

// Update applies a partial update to a story. EpicID and Points distinguish
// "leave alone" from "clear to NULL". The project column is never part of
// the SET clause; stories cannot change projects.
func (r *StoryRepo) Update(ctx context.Context, id int64, patch models.StoryPatch, actor string) error {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP", "last_modified_by = ?"}
	args := []any{actor}

	if patch.Title != nil {
		setClauses = append(setClauses, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Priority != nil {
		setClauses = append(setClauses, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.EpicID.Set {
		setClauses = append(setClauses, "epic_id = ?")
		if patch.EpicID.Valid {
			args = append(args, patch.EpicID.Int64)
		} else {
			args = append(args, nil)
		}
	}
	if patch.Points.Set {
		setClauses = append(setClauses, "points = ?")
		if patch.Points.Valid {
			args = append(args, patch.Points.Int64)
		} else {
			args = append(args, nil)
		}
	}
	if patch.AcceptanceCriteria != nil {
		setClauses = append(setClauses, "acceptance_criteria = ?")
		args = append(args, *patch.AcceptanceCriteria)
	}
	if patch.AssignedTo != nil {
		setClauses = append(setClauses, "assigned_to = ?")
		args = append(args, *patch.AssignedTo)
	}

	args = append(args, id)
	query := `UPDATE stories SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update story %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check story %d update: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update story %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a story. Its tasks and dependency edges cascade; bugs
// linked to it keep their project and lose only the story reference.
func (r *StoryRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete story %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check story %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete story %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
