package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/models"
)

// RelationshipRepo handles generalized typed edges between entities.
type RelationshipRepo struct {
	db *sql.DB
}

const relationshipColumns = `id, project_id, source_kind, source_id, target_kind, target_id, rel_type, created_at, updated_at`

func scanRelationship(row interface{ Scan(...any) error }) (*models.Relationship, error) {
	rel := &models.Relationship{}
	err := row.Scan(
		&rel.ID, &rel.ProjectID, &rel.SourceKind, &rel.SourceID,
		&rel.TargetKind, &rel.TargetID, &rel.RelType,
		&rel.CreatedAt, &rel.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// Create inserts a typed edge. Both endpoints must already exist and belong
// to rel.ProjectID; for graph-semantic types the acyclicity check runs in
// the same transaction as the insert. Annotation types (related_to,
// cloned_from) skip the cycle check entirely.
func (r *RelationshipRepo) Create(ctx context.Context, rel *models.Relationship) (*models.Relationship, error) {
	var id int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		sourceProject, err := entityProject(ctx, tx, rel.SourceKind, rel.SourceID)
		if err != nil {
			return err
		}
		targetProject, err := entityProject(ctx, tx, rel.TargetKind, rel.TargetID)
		if err != nil {
			return err
		}
		if sourceProject != rel.ProjectID || targetProject != rel.ProjectID {
			return fmt.Errorf("relationship %s %d -> %s %d: %w",
				rel.SourceKind, rel.SourceID, rel.TargetKind, rel.TargetID, models.ErrCrossProject)
		}

		if rel.RelType.GraphSemantic() {
			adj, err := loadForwardEdges(ctx, tx, rel.ProjectID)
			if err != nil {
				return err
			}
			source := GraphNode{Kind: rel.SourceKind, ID: rel.SourceID}
			target := GraphNode{Kind: rel.TargetKind, ID: rel.TargetID}
			if pathExists(adj, target, source) {
				return fmt.Errorf("relationship %s %d -> %s %d: %w",
					rel.SourceKind, rel.SourceID, rel.TargetKind, rel.TargetID, models.ErrCircularDependency)
			}
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO relationships (project_id, source_kind, source_id, target_kind, target_id, rel_type)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rel.ProjectID, rel.SourceKind, rel.SourceID, rel.TargetKind, rel.TargetID, rel.RelType,
		)
		if err != nil {
			return fmt.Errorf("failed to insert relationship: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get relationship ID after insert: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a relationship by its ID.
func (r *RelationshipRepo) GetByID(ctx context.Context, id int64) (*models.Relationship, error) {
	rel, err := scanRelationship(r.db.QueryRowContext(ctx,
		`SELECT `+relationshipColumns+` FROM relationships WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get relationship %d: %w", id, err)
	}
	return rel, nil
}

// GetProjectID returns the owning project of a relationship.
func (r *RelationshipRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM relationships WHERE id = ?`, id).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for relationship %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves relationships matching the filter.
func (r *RelationshipRepo) List(ctx context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error) {
	query := `SELECT ` + relationshipColumns + ` FROM relationships WHERE project_id = ?`
	args := []any{filter.ProjectID}

	if filter.SourceKind != "" && filter.SourceID != nil {
		query += ` AND source_kind = ? AND source_id = ?`
		args = append(args, filter.SourceKind, *filter.SourceID)
	}
	if filter.RelType != "" {
		query += ` AND rel_type = ?`
		args = append(args, filter.RelType)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	rels := make([]*models.Relationship, 0, 10)
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship row: %w", err)
		}
		rels = append(rels, rel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationship rows: %w", err)
	}
	return rels, nil
}

// Delete removes a relationship edge.
func (r *RelationshipRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM relationships WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete relationship %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check relationship %d deletion: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to delete relationship %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
