package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/models"
)

// ProjectRepo handles all project-related database operations.
type ProjectRepo struct {
	db *sql.DB
}

const projectColumns = `id, identifier, name, description, last_accessed_at, created_at, updated_at`

func scanProject(row interface{ Scan(...any) error }) (*models.Project, error) {
	project := &models.Project{}
	var lastAccessed sql.NullTime
	err := row.Scan(
		&project.ID, &project.Identifier, &project.Name, &project.Description,
		&lastAccessed, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	project.LastAccessedAt = nullTimeToPtr(lastAccessed)
	return project, nil
}

// Create registers a new project under a unique identifier.
func (r *ProjectRepo) Create(ctx context.Context, identifier, name, description string) (*models.Project, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO projects (identifier, name, description) VALUES (?, ?, ?)`,
		identifier, name, description,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert project '%s': %w", identifier, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get project ID after insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a project by its ID.
func (r *ProjectRepo) GetByID(ctx context.Context, id int64) (*models.Project, error) {
	project, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return project, nil
}

// GetByIdentifier retrieves a project by its unique identifier.
func (r *ProjectRepo) GetByIdentifier(ctx context.Context, identifier string) (*models.Project, error) {
	project, err := scanProject(r.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE identifier = ?`, identifier,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get project '%s': %w", identifier, err)
	}
	return project, nil
}

// GetAll retrieves all projects ordered by identifier.
func (r *ProjectRepo) GetAll(ctx context.Context) ([]*models.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY identifier`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query all projects: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	projects := make([]*models.Project, 0, 10)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

// TouchLastAccessed stamps the project's last access time. Called whenever
// a scoped operation resolves its project context.
func (r *ProjectRepo) TouchLastAccessed(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET last_accessed_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch project %d: %w", id, err)
	}
	return nil
}

// Update updates a project's name and description. The identifier is
// immutable once registered.
func (r *ProjectRepo) Update(ctx context.Context, id int64, name, description string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, description, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update project %d: %w", id, err)
	}
	return nil
}

// Delete removes a project. Epics, stories, tasks, bugs, dependencies,
// relationships, notes, and sprints all go with it through CASCADE.
func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check project %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete project %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// ProjectCounts summarizes how many scoped entities a project owns.
type ProjectCounts struct {
	Epics   int64
	Stories int64
	Tasks   int64
	Bugs    int64
	Sprints int64
}

// GetCounts returns per-entity totals for a project.
func (r *ProjectRepo) GetCounts(ctx context.Context, projectID int64) (*ProjectCounts, error) {
	counts := &ProjectCounts{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM epics WHERE project_id = ?),
			(SELECT COUNT(*) FROM stories WHERE project_id = ?),
			(SELECT COUNT(*) FROM tasks t JOIN stories s ON t.story_id = s.id WHERE s.project_id = ?),
			(SELECT COUNT(*) FROM bugs WHERE project_id = ?),
			(SELECT COUNT(*) FROM sprints WHERE project_id = ?)
	`, projectID, projectID, projectID, projectID, projectID).Scan(
		&counts.Epics, &counts.Stories, &counts.Tasks, &counts.Bugs, &counts.Sprints,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get counts for project %d: %w", projectID, err)
	}
	return counts, nil
}
