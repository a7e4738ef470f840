package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/models"
)

// SecurityLogRepo handles the append-only audit trail. There is no update
// or delete path; history stays as written.
type SecurityLogRepo struct {
	db *sql.DB
}

const securityEventColumns = `id, event_type, actor, project_id, target_project_id, entity_kind, entity_id, message, created_at`

func scanSecurityEvent(row interface{ Scan(...any) error }) (*models.SecurityEvent, error) {
	event := &models.SecurityEvent{}
	var projectID, targetProjectID, entityID sql.NullInt64
	err := row.Scan(
		&event.ID, &event.EventType, &event.Actor, &projectID, &targetProjectID,
		&event.EntityKind, &entityID, &event.Message, &event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	event.ProjectID = nullInt64ToPtr(projectID)
	event.TargetProjectID = nullInt64ToPtr(targetProjectID)
	event.EntityID = nullInt64ToPtr(entityID)
	return event, nil
}

// Append records one audit event.
func (r *SecurityLogRepo) Append(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO security_log (event_type, actor, project_id, target_project_id, entity_kind, entity_id, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.EventType, event.Actor, ptrToNullInt64(event.ProjectID),
		ptrToNullInt64(event.TargetProjectID), event.EntityKind,
		ptrToNullInt64(event.EntityID), event.Message,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append %s event: %w", event.EventType, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get event ID after insert: %w", err)
	}

	stored, err := scanSecurityEvent(r.db.QueryRowContext(ctx,
		`SELECT `+securityEventColumns+` FROM security_log WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return stored, nil
}

// List retrieves audit events matching the filter, newest first.
func (r *SecurityLogRepo) List(ctx context.Context, filter models.SecurityEventFilter) ([]*models.SecurityEvent, error) {
	query := `SELECT ` + securityEventColumns + ` FROM security_log WHERE 1=1`
	args := []any{}

	if filter.EventType != "" {
		query += ` AND event_type = ?`
		args = append(args, filter.EventType)
	}
	if filter.Actor != "" {
		query += ` AND actor = ?`
		args = append(args, filter.Actor)
	}
	if filter.ProjectID != nil {
		query += ` AND project_id = ?`
		args = append(args, *filter.ProjectID)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query security log: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	events := make([]*models.SecurityEvent, 0, 10)
	for rows.Next() {
		event, err := scanSecurityEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security event row: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security event rows: %w", err)
	}
	return events, nil
}
