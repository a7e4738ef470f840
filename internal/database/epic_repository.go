package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/mfigueroa/backlog/internal/models"
)

// EpicRepo handles all epic-related database operations.
type EpicRepo struct {
	db *sql.DB
}

const epicColumns = `id, project_id, name, description, status, assigned_to, last_modified_by, created_at, updated_at`

func scanEpic(row interface{ Scan(...any) error }) (*models.Epic, error) {
	epic := &models.Epic{}
	err := row.Scan(
		&epic.ID, &epic.ProjectID, &epic.Name, &epic.Description, &epic.Status,
		&epic.AssignedTo, &epic.LastModifiedBy, &epic.CreatedAt, &epic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return epic, nil
}

// Create inserts a new epic under a project.
func (r *EpicRepo) Create(ctx context.Context, projectID int64, name, description, assignedTo, actor string) (*models.Epic, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO epics (project_id, name, description, assigned_to, last_modified_by) VALUES (?, ?, ?, ?, ?)`,
		projectID, name, description, assignedTo, actor,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert epic '%s': %w", name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get epic ID after insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves an epic by its ID.
func (r *EpicRepo) GetByID(ctx context.Context, id int64) (*models.Epic, error) {
	epic, err := scanEpic(r.db.QueryRowContext(ctx,
		`SELECT `+epicColumns+` FROM epics WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get epic %d: %w", id, err)
	}
	return epic, nil
}

// GetProjectID returns the owning project of an epic.
func (r *EpicRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM epics WHERE id = ?`, id).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for epic %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves epics matching the filter. The project scope is part of
// the query itself, never applied after the fact.
func (r *EpicRepo) List(ctx context.Context, filter models.EpicFilter) ([]*models.Epic, error) {
	query := `SELECT ` + epicColumns + ` FROM epics WHERE project_id = ?`
	args := []any{filter.ProjectID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.AssignedTo != "" {
		query += ` AND assigned_to = ?`
		args = append(args, filter.AssignedTo)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query epics for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	epics := make([]*models.Epic, 0, 10)
	for rows.Next() {
		epic, err := scanEpic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan epic row: %w", err)
		}
		epics = append(epics, epic)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating epic rows: %w", err)
	}
	return epics, nil
}

// Update applies a partial update to an epic. Untouched fields keep their
// values; every write stamps updated_at and last_modified_by.
func (r *EpicRepo) Update(ctx context.Context, id int64, patch models.EpicPatch, actor string) error {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP", "last_modified_by = ?"}
	args := []any{actor}

	if patch.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.AssignedTo != nil {
		setClauses = append(setClauses, "assigned_to = ?")
		args = append(args, *patch.AssignedTo)
	}

	args = append(args, id)
	query := `UPDATE epics SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update epic %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check epic %d update: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update epic %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes an epic. Stories under it survive with their epic link
// cleared; their project assignment is untouched.
func (r *EpicRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM epics WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete epic %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check epic %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete epic %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
