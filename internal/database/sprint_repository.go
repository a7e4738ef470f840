package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/mfigueroa/backlog/internal/models"
)

// SprintRepo handles sprints, their memberships, and completion snapshots.
type SprintRepo struct {
	db *sql.DB
}

const sprintColumns = `id, project_id, name, goal, start_date, end_date, capacity_points, status, created_at, updated_at`

func scanSprint(row interface{ Scan(...any) error }) (*models.Sprint, error) {
	sprint := &models.Sprint{}
	var capacity sql.NullInt64
	err := row.Scan(
		&sprint.ID, &sprint.ProjectID, &sprint.Name, &sprint.Goal,
		&sprint.StartDate, &sprint.EndDate, &capacity, &sprint.Status,
		&sprint.CreatedAt, &sprint.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	sprint.CapacityPoints = nullInt64ToPtr(capacity)
	return sprint, nil
}

// Create inserts a new sprint in planning status.
func (r *SprintRepo) Create(ctx context.Context, sprint *models.Sprint) (*models.Sprint, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO sprints (project_id, name, goal, start_date, end_date, capacity_points, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sprint.ProjectID, sprint.Name, sprint.Goal, sprint.StartDate, sprint.EndDate,
		ptrToNullInt64(sprint.CapacityPoints), models.SprintPlanning,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sprint '%s': %w", sprint.Name, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get sprint ID after insert: %w", err)
	}

	return r.GetByID(ctx, id)
}

// GetByID retrieves a sprint by its ID.
func (r *SprintRepo) GetByID(ctx context.Context, id int64) (*models.Sprint, error) {
	sprint, err := scanSprint(r.db.QueryRowContext(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get sprint %d: %w", id, err)
	}
	return sprint, nil
}

// GetProjectID returns the owning project of a sprint.
func (r *SprintRepo) GetProjectID(ctx context.Context, id int64) (int64, error) {
	var projectID int64
	err := r.db.QueryRowContext(ctx, `SELECT project_id FROM sprints WHERE id = ?`, id).Scan(&projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to get project for sprint %d: %w", id, err)
	}
	return projectID, nil
}

// List retrieves sprints matching the filter, most recent window first.
func (r *SprintRepo) List(ctx context.Context, filter models.SprintFilter) ([]*models.Sprint, error) {
	query := `SELECT ` + sprintColumns + ` FROM sprints WHERE project_id = ?`
	args := []any{filter.ProjectID}

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY start_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sprints for project %d: %w", filter.ProjectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	sprints := make([]*models.Sprint, 0, 10)
	for rows.Next() {
		sprint, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sprint row: %w", err)
		}
		sprints = append(sprints, sprint)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sprint rows: %w", err)
	}
	return sprints, nil
}

// ListCompleted returns up to limit completed sprints for a project, most
// recently ended first. Velocity math consumes these in order.
func (r *SprintRepo) ListCompleted(ctx context.Context, projectID int64, limit int) ([]*models.Sprint, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE project_id = ? AND status = ? ORDER BY end_date DESC, id DESC LIMIT ?`,
		projectID, models.SprintCompleted, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed sprints for project %d: %w", projectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	sprints := make([]*models.Sprint, 0, limit)
	for rows.Next() {
		sprint, err := scanSprint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sprint row: %w", err)
		}
		sprints = append(sprints, sprint)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sprint rows: %w", err)
	}
	return sprints, nil
}

// Update applies a partial update to a sprint. Status changes are written
// as-is; the legal state machine is enforced by the caller before the
// write reaches this layer.
func (r *SprintRepo) Update(ctx context.Context, id int64, patch models.SprintPatch) error {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}

	if patch.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Goal != nil {
		setClauses = append(setClauses, "goal = ?")
		args = append(args, *patch.Goal)
	}
	if patch.StartDate != nil {
		setClauses = append(setClauses, "start_date = ?")
		args = append(args, *patch.StartDate)
	}
	if patch.EndDate != nil {
		setClauses = append(setClauses, "end_date = ?")
		args = append(args, *patch.EndDate)
	}
	if patch.CapacityPoints.Set {
		setClauses = append(setClauses, "capacity_points = ?")
		if patch.CapacityPoints.Valid {
			args = append(args, patch.CapacityPoints.Int64)
		} else {
			args = append(args, nil)
		}
	}
	if patch.Status != nil {
		setClauses = append(setClauses, "status = ?")
		args = append(args, *patch.Status)
	}

	args = append(args, id)
	query := `UPDATE sprints SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update sprint %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check sprint %d update: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to update sprint %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a sprint, but only while it is still in planning. The
// status check and the delete share one transaction so an activation
// cannot slip in between them.
func (r *SprintRepo) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status models.SprintStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM sprints WHERE id = ?`, id).Scan(&status)
		if err != nil {
			return fmt.Errorf("failed to get sprint %d for deletion: %w", id, err)
		}
		if status != models.SprintPlanning {
			return fmt.Errorf("sprint %d is %s: %w", id, status, models.ErrInvalidTransition)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sprints WHERE id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete sprint %d: %w", id, err)
		}
		return nil
	})
}

// Start moves a planning sprint to active and captures the initial
// snapshot of its scope, all in one transaction.
func (r *SprintRepo) Start(ctx context.Context, id int64) (*models.SprintSnapshot, error) {
	return r.transition(ctx, id, models.SprintPlanning, models.SprintActive)
}

// Complete marks an active sprint completed and captures the final
// snapshot of its totals, all in one transaction. Later edits to member
// items do not rewrite the recorded history.
func (r *SprintRepo) Complete(ctx context.Context, id int64) (*models.SprintSnapshot, error) {
	return r.transition(ctx, id, models.SprintActive, models.SprintCompleted)
}

// Cancel abandons a sprint that never started. No snapshot is taken.
func (r *SprintRepo) Cancel(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.flipStatus(ctx, tx, id, models.SprintPlanning, models.SprintCancelled)
	})
}

// transition performs a guarded status flip plus a snapshot in one
// transaction. The UPDATE's status predicate is the guard: two racing
// callers cannot both pass it.
func (r *SprintRepo) transition(ctx context.Context, id int64, from, to models.SprintStatus) (*models.SprintSnapshot, error) {
	var snapshotID int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.flipStatus(ctx, tx, id, from, to); err != nil {
			return err
		}
		var err error
		snapshotID, err = insertSnapshot(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetSnapshot(ctx, snapshotID)
}

func (r *SprintRepo) flipStatus(ctx context.Context, tx *sql.Tx, id int64, from, to models.SprintStatus) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE sprints SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		to, id, from,
	)
	if err != nil {
		return fmt.Errorf("failed to move sprint %d to %s: %w", id, to, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check sprint %d status flip: %w", id, err)
	}
	if affected == 0 {
		var status models.SprintStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM sprints WHERE id = ?`, id).Scan(&status)
		if err != nil {
			return fmt.Errorf("failed to get sprint %d for status flip: %w", id, err)
		}
		return fmt.Errorf("sprint %d is %s, not %s: %w", id, status, from, models.ErrInvalidTransition)
	}
	return nil
}

// TakeSnapshot records the current totals of an active sprint on demand.
func (r *SprintRepo) TakeSnapshot(ctx context.Context, sprintID int64) (*models.SprintSnapshot, error) {
	var snapshotID int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var status models.SprintStatus
		err := tx.QueryRowContext(ctx, `SELECT status FROM sprints WHERE id = ?`, sprintID).Scan(&status)
		if err != nil {
			return fmt.Errorf("failed to get sprint %d for snapshot: %w", sprintID, err)
		}
		if status != models.SprintActive {
			return fmt.Errorf("sprint %d is %s, not %s: %w", sprintID, status, models.SprintActive, models.ErrInvalidTransition)
		}
		snapshotID, err = insertSnapshot(ctx, tx, sprintID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.GetSnapshot(ctx, snapshotID)
}

// insertSnapshot records current sprint totals. Added and removed points
// are the scope change since the previous snapshot; the first snapshot of
// a sprint reports zero for both.
func insertSnapshot(ctx context.Context, tx *sql.Tx, sprintID int64) (int64, error) {
	capacity, err := sprintTotals(ctx, tx, sprintID)
	if err != nil {
		return 0, err
	}

	var added, removed int64
	var prevRemaining, prevCompleted sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT remaining_points, completed_points FROM sprint_snapshots
		WHERE sprint_id = ? ORDER BY taken_at DESC, id DESC LIMIT 1`, sprintID,
	).Scan(&prevRemaining, &prevCompleted)
	switch {
	case err == sql.ErrNoRows:
		// first snapshot; scope deltas start at zero
	case err != nil:
		return 0, fmt.Errorf("failed to get previous snapshot for sprint %d: %w", sprintID, err)
	default:
		prevCommitted := prevRemaining.Int64 + prevCompleted.Int64
		if delta := capacity.Committed - prevCommitted; delta > 0 {
			added = delta
		} else {
			removed = -delta
		}
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO sprint_snapshots (sprint_id, remaining_points, completed_points, added_points, removed_points)
		VALUES (?, ?, ?, ?, ?)`,
		sprintID, capacity.Remaining, capacity.Completed, added, removed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert snapshot for sprint %d: %w", sprintID, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get snapshot ID after insert: %w", err)
	}
	return id, nil
}

const snapshotColumns = `id, sprint_id, remaining_points, completed_points, added_points, removed_points, taken_at`

func scanSnapshot(row interface{ Scan(...any) error }) (*models.SprintSnapshot, error) {
	snap := &models.SprintSnapshot{}
	err := row.Scan(
		&snap.ID, &snap.SprintID, &snap.RemainingPoints, &snap.CompletedPoints,
		&snap.AddedPoints, &snap.RemovedPoints, &snap.TakenAt,
	)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// GetSnapshot retrieves a single snapshot by its ID.
func (r *SprintRepo) GetSnapshot(ctx context.Context, id int64) (*models.SprintSnapshot, error) {
	snap, err := scanSnapshot(r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM sprint_snapshots WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %d: %w", id, err)
	}
	return snap, nil
}

// GetLatestSnapshot retrieves the most recent snapshot for a sprint. For a
// completed sprint this is the final, frozen record of its totals.
func (r *SprintRepo) GetLatestSnapshot(ctx context.Context, sprintID int64) (*models.SprintSnapshot, error) {
	snap, err := scanSnapshot(r.db.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM sprint_snapshots WHERE sprint_id = ? ORDER BY taken_at DESC, id DESC LIMIT 1`,
		sprintID,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot for sprint %d: %w", sprintID, err)
	}
	return snap, nil
}

// ListSnapshots retrieves a sprint's snapshots oldest first, the order a
// burndown chart consumes them in.
func (r *SprintRepo) ListSnapshots(ctx context.Context, sprintID int64) ([]*models.SprintSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM sprint_snapshots WHERE sprint_id = ? ORDER BY taken_at ASC, id ASC`,
		sprintID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots for sprint %d: %w", sprintID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	snaps := make([]*models.SprintSnapshot, 0, 4)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return snaps, nil
}

// AddMember assigns a work item to a sprint. The unique constraint on
// (sprint, kind, item) makes double-adds fail loudly rather than silently.
func (r *SprintRepo) AddMember(ctx context.Context, sprintID int64, kind models.EntityKind, itemID int64, addedBy string) (*models.SprintMembership, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO sprint_memberships (sprint_id, item_kind, item_id, added_by) VALUES (?, ?, ?, ?)`,
		sprintID, kind, itemID, addedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s %d to sprint %d: %w", kind, itemID, sprintID, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get membership ID after insert: %w", err)
	}

	member := &models.SprintMembership{}
	err = r.db.QueryRowContext(ctx, `
		SELECT id, sprint_id, item_kind, item_id, added_at, added_by
		FROM sprint_memberships WHERE id = ?`, id,
	).Scan(&member.ID, &member.SprintID, &member.ItemKind, &member.ItemID, &member.AddedAt, &member.AddedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership %d: %w", id, err)
	}
	return member, nil
}

// RemoveMember takes a work item out of a sprint.
func (r *SprintRepo) RemoveMember(ctx context.Context, sprintID int64, kind models.EntityKind, itemID int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM sprint_memberships WHERE sprint_id = ? AND item_kind = ? AND item_id = ?`,
		sprintID, kind, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove %s %d from sprint %d: %w", kind, itemID, sprintID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check membership removal: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("failed to remove %s %d from sprint %d: %w", kind, itemID, sprintID, sql.ErrNoRows)
	}
	return nil
}

// ListMembers retrieves a sprint's memberships in insertion order.
func (r *SprintRepo) ListMembers(ctx context.Context, sprintID int64) ([]*models.SprintMembership, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sprint_id, item_kind, item_id, added_at, added_by
		FROM sprint_memberships WHERE sprint_id = ? ORDER BY id`, sprintID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query members of sprint %d: %w", sprintID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()

	members := make([]*models.SprintMembership, 0, 10)
	for rows.Next() {
		member := &models.SprintMembership{}
		if err := rows.Scan(&member.ID, &member.SprintID, &member.ItemKind, &member.ItemID, &member.AddedAt, &member.AddedBy); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		members = append(members, member)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}
	return members, nil
}

// GetCapacity computes live point totals for a sprint from its current
// members. Items without an estimate count as zero.
func (r *SprintRepo) GetCapacity(ctx context.Context, sprintID int64) (*models.SprintCapacity, error) {
	return sprintTotals(ctx, r.db, sprintID)
}

// sprintTotals sums member points across the story and bug tables. SUM
// skips NULL estimates, which is exactly the "missing points count as zero"
// rule.
func sprintTotals(ctx context.Context, q rowQueryer, sprintID int64) (*models.SprintCapacity, error) {
	var committed, completed int64
	err := q.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(p.points), 0),
			COALESCE(SUM(CASE WHEN p.status = ? THEN p.points ELSE 0 END), 0)
		FROM sprint_memberships m
		JOIN (
			SELECT 'story' AS kind, id, points, status FROM stories
			UNION ALL
			SELECT 'bug' AS kind, id, points, status FROM bugs
		) p ON p.kind = m.item_kind AND p.id = m.item_id
		WHERE m.sprint_id = ?`,
		models.StatusDone, sprintID,
	).Scan(&committed, &completed)
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals for sprint %d: %w", sprintID, err)
	}

	return &models.SprintCapacity{
		Committed: committed,
		Completed: completed,
		Remaining: committed - completed,
	}, nil
}
