package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/mfigueroa/backlog/internal/models"
)

// TaskRepo handles all task-related database operations. Tasks hang off
// stories, so their project scope always resolves through the story join.
type TaskRepo struct {
	db *sql.DB
}

const taskColumns = `id, story_id, title, description, task_type, status, priority, points, assigned_to, last_modified_by, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (*models.Task, error) {
	task := &models.Task{}
	var points sql.NullInt64
	err := row.Scan(
		&task.ID, &task.StoryID, &task.Title, &task.Description, &task.TaskType,
		&task.Status, &task.Priority, &points, &task.AssignedTo,
		&task.LastModifiedBy, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	task.Points = nullInt64ToPtr(points)
	return task, nil
}

// Create inserts a new task under a story.
func (r *TaskRepo) Create(ctx context.Context, task *models.Task, actor string) (*models.Task, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (story_id, title, description, task_type, status, priority, points, assigned_to, last_modified_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.StoryID, task.Title, task.Description, task.TaskType,
		task.Status, task.Priority, ptrToNullInt64(task.Points),
		task.AssignedTo, actor,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert task '%s': %w", task.Title, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get task ID after insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a task by its ID.
func (r *TaskRepo) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", id, err)
	}
	return task, nil
}

// GetProjectID returns the owning project of a task, resolved through its
// story.
func (r *TaskRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT s.project_id FROM tasks t
		JOIN stories s ON t.story_id = s.id
		WHERE t.id = ?`, id,
	).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for task %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves tasks matching the filter. The project scope joins through
// stories so a task can never leak across projects.
func (r *TaskRepo) List(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	query := `
		SELECT t.id, t.story_id, t.title, t.description, t.task_type, t.status, t.priority, t.points, t.assigned_to, t.last_modified_by, t.created_at, t.updated_at
		FROM tasks t
		JOIN stories s ON t.story_id = s.id
		WHERE s.project_id = ?`
	args := []any{filter.ProjectID}

	if filter.StoryID != nil {
		query += ` AND t.story_id = ?`
		args = append(args, *filter.StoryID)
	}
	if filter.Status != "" {
		query += ` AND t.status = ?`
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		query += ` AND t.priority = ?`
		args = append(args, filter.Priority)
	}
	if filter.AssignedTo != "" {
		query += ` AND t.assigned_to = ?`
		args = append(args, filter.AssignedTo)
	}
	query += ` ORDER BY t.created_at DESC, t.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	tasks := make([]*models.Task, 0, 10)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update to a task.
func (r *TaskRepo) Update(ctx context.Context, id int64, patch models.TaskPatch, actor string) error {
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
	if patch.TaskType != nil {
		setClauses = append(setClauses, "task_type = ?")
		args = append(args, *patch.TaskType)
	}
	if patch.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Priority != nil {
		setClauses = append(setClauses, "priority = ?")
		args = append(args, *patch.Priority)
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
	query := `UPDATE tasks SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check task %d update: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update task %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a task.
func (r *TaskRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check task %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete task %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
