package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/models"
)

// DependencyRepo handles story dependency edges. Edge inserts run the
// acyclicity check and the write in one transaction, so two concurrent
// inserts cannot each pass the check and jointly close a loop.
type DependencyRepo struct {
	db *sql.DB
}

const dependencyColumns = `id, story_id, depends_on_story_id, dep_type, created_at, updated_at`

func scanDependency(row interface{ Scan(...any) error }) (*models.Dependency, error) {
	dep := &models.Dependency{}
	err := row.Scan(
		&dep.ID, &dep.StoryID, &dep.DependsOnStoryID, &dep.DepType,
		&dep.CreatedAt, &dep.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return dep, nil
}

// Create inserts the edge storyID → dependsOnStoryID after verifying, in the
// same transaction, that both stories share a project and that the edge does
// not close a loop. On rejection the edge set is left exactly as it was.
func (r *DependencyRepo) Create(ctx context.Context, storyID, dependsOnStoryID int64, depType models.DependencyType) (*models.Dependency, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		sourceProject, err := entityProject(ctx, tx, models.KindStory, storyID)
		if err != nil {
			return err
		}
		targetProject, err := entityProject(ctx, tx, models.KindStory, dependsOnStoryID)
		if err != nil {
			return err
		}
		if sourceProject != targetProject {
			return fmt.Errorf("dependency %d -> %d: %w", storyID, dependsOnStoryID, models.ErrCrossProject)
		}

		adj, err := loadForwardEdges(ctx, tx, sourceProject)
		if err != nil {
			return err
		}
		source := GraphNode{Kind: models.KindStory, ID: storyID}
		target := GraphNode{Kind: models.KindStory, ID: dependsOnStoryID}
		if pathExists(adj, target, source) {
			return fmt.Errorf("dependency %d -> %d: %w", storyID, dependsOnStoryID, models.ErrCircularDependency)
		}

		result, err := tx.ExecContext(ctx,
			`INSERT INTO dependencies (story_id, depends_on_story_id, dep_type) VALUES (?, ?, ?)`,
			storyID, dependsOnStoryID, depType,
		)
		if err != nil {
			return fmt.Errorf("failed to insert dependency %d -> %d: %w", storyID, dependsOnStoryID, err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get dependency ID after insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a dependency edge by its ID.
func (r *DependencyRepo) GetByID(ctx context.Context, id int64) (*models.Dependency, error) {
	dep, err := scanDependency(r.db.QueryRowContext(ctx,
		`SELECT `+dependencyColumns+` FROM dependencies WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get dependency %d: %w", id, err)
	}
	return dep, nil
}

// GetProjectID returns the owning project of a dependency edge, resolved
// through its source story.
func (r *DependencyRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `
		SELECT s.project_id FROM dependencies d
		JOIN stories s ON d.story_id = s.id
		WHERE d.id = ?`, id,
	).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for dependency %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves dependency edges matching the filter, scoped through the
// source story's project.
func (r *DependencyRepo) List(ctx context.Context, filter models.DependencyFilter) ([]*models.Dependency, error) {
	query := `
		SELECT d.id, d.story_id, d.depends_on_story_id, d.dep_type, d.created_at, d.updated_at
		FROM dependencies d
		JOIN stories s ON d.story_id = s.id
		WHERE s.project_id = ?`
	args := []any{filter.ProjectID}

	if filter.StoryID != nil {
		query += ` AND d.story_id = ?`
		args = append(args, *filter.StoryID)
	}
	query += ` ORDER BY d.created_at DESC, d.id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	deps := make([]*models.Dependency, 0, 10)
	for rows.Next() {
		dep, err := scanDependency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dependency row: %w", err)
		}
		deps = append(deps, dep)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependency rows: %w", err)
	}
	return deps, nil
}

// Delete removes a dependency edge by ID.
func (r *DependencyRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dependencies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dependency %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check dependency %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete dependency %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// DeleteByPair removes the edge storyID → dependsOnStoryID.
func (r *DependencyRepo) DeleteByPair(ctx context.Context, storyID, dependsOnStoryID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM dependencies WHERE story_id = ? AND depends_on_story_id = ?`,
		storyID, dependsOnStoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete dependency %d -> %d: %w", storyID, dependsOnStoryID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check dependency %d -> %d deletion: %w", storyID, dependsOnStoryID, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete dependency %d -> %d: %w", storyID, dependsOnStoryID, sql.ErrNoRows)
	}
	return nil
}
