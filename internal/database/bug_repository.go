package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/mfigueroa/backlog/internal/models"
)

// BugRepo handles all bug-related database operations.
type BugRepo struct {
	db *sql.DB
}

const bugColumns = `id, project_id, story_id, title, description, status, priority, points, assigned_to, last_modified_by, created_at, updated_at`

func scanBug(row interface{ Scan(...any) error }) (*models.Bug, error) {
	bug := &models.Bug{}
	var storyID, points sql.NullInt64
	err := row.Scan(
		&bug.ID, &bug.ProjectID, &storyID, &bug.Title, &bug.Description,
		&bug.Status, &bug.Priority, &points, &bug.AssignedTo,
		&bug.LastModifiedBy, &bug.CreatedAt, &bug.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	bug.StoryID = nullInt64ToPtr(storyID)
	bug.Points = nullInt64ToPtr(points)
	return bug, nil
}

// Create inserts a new bug. Bugs carry their project directly so a bug
// without a story link is still scoped.
func (r *BugRepo) Create(ctx context.Context, bug *models.Bug, actor string) (*models.Bug, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO bugs (project_id, story_id, title, description, status, priority, points, assigned_to, last_modified_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bug.ProjectID, ptrToNullInt64(bug.StoryID), bug.Title, bug.Description,
		bug.Status, bug.Priority, ptrToNullInt64(bug.Points),
		bug.AssignedTo, actor,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert bug '%s': %w", bug.Title, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get bug ID after insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a bug by its ID.
func (r *BugRepo) GetByID(ctx context.Context, id int64) (*models.Bug, error) {
	bug, err := scanBug(r.db.QueryRowContext(ctx,
		`SELECT `+bugColumns+` FROM bugs WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get bug %d: %w", id, err)
	}
	return bug, nil
}

// GetProjectID returns the owning project of a bug.
func (r *BugRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM bugs WHERE id = ?`, id).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for bug %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves bugs matching the filter.
func (r *BugRepo) List(ctx context.Context, filter models.BugFilter) ([]*models.Bug, error) {
	query := `SELECT ` + bugColumns + ` FROM bugs WHERE project_id = ?`
	args := []any{filter.ProjectID}

	if filter.StoryID != nil {
		query += ` AND story_id = ?`
		args = append(args, *filter.StoryID)
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
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bugs for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	bugs := make([]*models.Bug, 0, 10)
	for rows.Next() {
		bug, err := scanBug(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bug row: %w", err)
		}
		bugs = append(bugs, bug)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bug rows: %w", err)
	}
	return bugs, nil
}

// Update applies a partial update to a bug. StoryID can be cleared to
// detach the bug from a story without losing its project scope.
func (r *BugRepo) Update(ctx context.Context, id int64, patch models.BugPatch, actor string) error {
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
	if patch.StoryID.Set {
		setClauses = append(setClauses, "story_id = ?")
		if patch.StoryID.Valid {
			args = append(args, patch.StoryID.Int64)
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
	if patch.AssignedTo != nil {
		setClauses = append(setClauses, "assigned_to = ?")
		args = append(args, *patch.AssignedTo)
	}

	args = append(args, id)
	query := `UPDATE bugs SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update bug %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check bug %d update: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update bug %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a bug.
func (r *BugRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bugs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bug %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check bug %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete bug %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
