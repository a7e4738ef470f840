package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/models"
)

// NoteRepo handles freeform annotations on work items and sprints.
type NoteRepo struct {
	db *sql.DB
}

const noteColumns = `id, project_id, parent_kind, parent_id, author, body, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (*models.Note, error) {
	note := &models.Note{}
	err := row.Scan(
		&note.ID, &note.ProjectID, &note.ParentKind, &note.ParentID,
		&note.Author, &note.Body, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// Create inserts a note attached to a parent entity.
func (r *NoteRepo) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO notes (project_id, parent_kind, parent_id, author, body)
		VALUES (?, ?, ?, ?, ?)`,
		note.ProjectID, note.ParentKind, note.ParentID, note.Author, note.Body,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert note on %s %d: %w", note.ParentKind, note.ParentID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get note ID after insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a note by its ID.
func (r *NoteRepo) GetByID(ctx context.Context, id int64) (*models.Note, error) {
	note, err := scanNote(r.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get note %d: %w", id, err)
	}
	return note, nil
}

// GetProjectID returns the owning project of a note.
func (r *NoteRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM notes WHERE id = ?`, id).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for note %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves notes matching the filter, newest first.
func (r *NoteRepo) List(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE project_id = ?`
	args := []any{filter.ProjectID}

	if filter.ParentKind != "" && filter.ParentID != nil {
		query += ` AND parent_kind = ? AND parent_id = ?`
		args = append(args, filter.ParentKind, *filter.ParentID)
	}
	if filter.Author != "" {
		query += ` AND author = ?`
		args = append(args, filter.Author)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	notes := make([]*models.Note, 0, 10)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	return notes, nil
}

// Update rewrites a note's body.
func (r *NoteRepo) Update(ctx context.Context, id int64, body string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notes SET body = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		body, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update note %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check note %d update: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update note %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a note.
func (r *NoteRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check note %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete note %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
