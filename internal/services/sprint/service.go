package sprint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/access"
)

// DefaultVelocityWindow is how many completed sprints feed the velocity
// average when the caller does not say otherwise.
const DefaultVelocityWindow = 3

// Service defines sprint lifecycle, scope, and analytics operations
type Service interface {
	// Lifecycle
	CreateSprint(ctx context.Context, pctx *access.Context, req CreateSprintRequest) (*models.Sprint, error)
	GetSprint(ctx context.Context, pctx *access.Context, sprintID int64) (*models.Sprint, error)
	ListSprints(ctx context.Context, pctx *access.Context, req ListSprintsRequest) ([]*models.Sprint, error)
	UpdateSprint(ctx context.Context, pctx *access.Context, req UpdateSprintRequest) (*models.Sprint, error)
	DeleteSprint(ctx context.Context, pctx *access.Context, sprintID int64) error
	StartSprint(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error)
	CompleteSprint(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error)
	CancelSprint(ctx context.Context, pctx *access.Context, sprintID int64) error

	// Scope
	AddMember(ctx context.Context, pctx *access.Context, req MemberRequest) (*models.SprintMembership, error)
	RemoveMember(ctx context.Context, pctx *access.Context, req MemberRequest) error
	ListMembers(ctx context.Context, pctx *access.Context, sprintID int64) ([]*models.SprintMembership, error)

	// Analytics
	Capacity(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintCapacity, error)
	TakeSnapshot(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error)
	ListSnapshots(ctx context.Context, pctx *access.Context, sprintID int64) ([]*models.SprintSnapshot, error)
	IdealBurndown(ctx context.Context, pctx *access.Context, sprintID int64) ([]float64, error)
	Velocity(ctx context.Context, pctx *access.Context, window int) (*VelocityReport, error)
}

// CreateSprintRequest encapsulates all data needed to create a sprint.
// New sprints always begin in planning.
type CreateSprintRequest struct {
	Name           string
	Goal           string
	StartDate      time.Time
	EndDate        time.Time
	CapacityPoints *int64
}

// ListSprintsRequest narrows a sprint listing.
type ListSprintsRequest struct {
	Status models.SprintStatus
}

// UpdateSprintRequest encapsulates a partial sprint update. Nil fields are
// left untouched. Status is deliberately absent: lifecycle moves only
// through Start, Complete, and Cancel so every transition takes a snapshot
// where one is owed.
type UpdateSprintRequest struct {
	SprintID       int64
	Name           *string
	Goal           *string
	StartDate      *time.Time
	EndDate        *time.Time
	CapacityPoints models.NullableInt
}

// MemberRequest names one work item in one sprint.
type MemberRequest struct {
	SprintID int64
	ItemKind models.EntityKind
	ItemID   int64
}

// SprintVelocity is one completed sprint's contribution to the velocity
// window.
type SprintVelocity struct {
	SprintID        int64
	Name            string
	EndDate         time.Time
	CompletedPoints int64
}

// VelocityReport summarizes delivery over the most recent completed
// sprints, newest first.
type VelocityReport struct {
	Sprints       []SprintVelocity
	AveragePoints float64
}

// service implements Service interface
type service struct {
	repo        database.DataStore
	guard       access.Service
	eventClient events.EventPublisher
}

// NewService creates a new sprint service
func NewService(repo database.DataStore, guard access.Service, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		guard:       guard,
		eventClient: eventClient,
	}
}

// validMemberKind reports whether the kind can carry points into a sprint.
// Tasks ride along with their story; only stories and bugs join directly.
func validMemberKind(kind models.EntityKind) bool {
	switch kind {
	case models.KindStory, models.KindBug:
		return true
	}
	return false
}

// CreateSprint creates a sprint in planning status.
func (s *service) CreateSprint(ctx context.Context, pctx *access.Context, req CreateSprintRequest) (*models.Sprint, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Name == "" {
		return nil, ErrEmptyName
	}
	if len(req.Name) > 255 {
		return nil, ErrNameTooLong
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		return nil, ErrMissingDates
	}
	if !req.EndDate.After(req.StartDate) {
		return nil, ErrInvalidWindow
	}
	if req.CapacityPoints != nil && *req.CapacityPoints < 0 {
		return nil, ErrNegativeCapacity
	}

	sprint, err := s.repo.CreateSprint(ctx, &models.Sprint{
		ProjectID:      pctx.ProjectID,
		Name:           req.Name,
		Goal:           req.Goal,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		CapacityPoints: req.CapacityPoints,
		Status:         models.SprintPlanning,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sprint: %w", err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return sprint, nil
}

// GetSprint retrieves one sprint after the access check.
func (s *service) GetSprint(ctx context.Context, pctx *access.Context, sprintID int64) (*models.Sprint, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}
	return s.repo.GetSprintByID(ctx, sprintID)
}

// ListSprints returns the project's sprints, most recently started first.
func (s *service) ListSprints(ctx context.Context, pctx *access.Context, req ListSprintsRequest) ([]*models.Sprint, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	sprints, err := s.repo.ListSprints(ctx, models.SprintFilter{
		ProjectID: pctx.ProjectID,
		Status:    req.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	return sprints, nil
}

// UpdateSprint changes name, goal, window, or capacity. Terminal sprints
// are frozen; the effective window must stay valid after partial date
// updates.
func (s *service) UpdateSprint(ctx context.Context, pctx *access.Context, req UpdateSprintRequest) (*models.Sprint, error) {
	if req.SprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if req.Name != nil && *req.Name == "" {
		return nil, ErrEmptyName
	}
	if req.Name != nil && len(*req.Name) > 255 {
		return nil, ErrNameTooLong
	}
	if req.CapacityPoints.Set && req.CapacityPoints.Valid && req.CapacityPoints.Int64 < 0 {
		return nil, ErrNegativeCapacity
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, req.SprintID); err != nil {
		return nil, err
	}

	current, err := s.repo.GetSprintByID(ctx, req.SprintID)
	if err != nil {
		return nil, err
	}
	if current.Status == models.SprintCompleted || current.Status == models.SprintCancelled {
		return nil, fmt.Errorf("sprint %d is %s: %w", req.SprintID, current.Status, ErrSprintFinished)
	}

	start := current.StartDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	end := current.EndDate
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if !end.After(start) {
		return nil, ErrInvalidWindow
	}

	err = s.repo.UpdateSprint(ctx, req.SprintID, models.SprintPatch{
		Name:           req.Name,
		Goal:           req.Goal,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		CapacityPoints: req.CapacityPoints,
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.GetSprintByID(ctx, req.SprintID)
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return updated, nil
}

// DeleteSprint removes a sprint that never left planning. Anything that
// ran is history and must be cancelled or completed instead.
func (s *service) DeleteSprint(ctx context.Context, pctx *access.Context, sprintID int64) error {
	if sprintID <= 0 {
		return ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return err
	}

	if err := s.repo.DeleteSprint(ctx, sprintID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// StartSprint moves planning → active and returns the initial snapshot.
func (s *service) StartSprint(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}

	snapshot, err := s.repo.StartSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return snapshot, nil
}

// CompleteSprint moves active → completed and returns the final snapshot.
// The final snapshot is what velocity reads later, so completion is the
// moment delivery gets recorded.
func (s *service) CompleteSprint(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}

	snapshot, err := s.repo.CompleteSprint(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return snapshot, nil
}

// CancelSprint abandons a planning sprint without recording history.
func (s *service) CancelSprint(ctx context.Context, pctx *access.Context, sprintID int64) error {
	if sprintID <= 0 {
		return ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return err
	}

	if err := s.repo.CancelSprint(ctx, sprintID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// AddMember puts a work item into a sprint. Both the sprint and the item
// must pass the access check, so scope can never straddle projects.
func (s *service) AddMember(ctx context.Context, pctx *access.Context, req MemberRequest) (*models.SprintMembership, error) {
	if req.SprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if req.ItemID <= 0 {
		return nil, ErrInvalidItemID
	}
	if !validMemberKind(req.ItemKind) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMemberKind, req.ItemKind)
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, req.SprintID); err != nil {
		return nil, err
	}
	if err := s.guard.CheckAccess(ctx, pctx, req.ItemKind, req.ItemID); err != nil {
		return nil, err
	}
	if err := s.requireOpenSprint(ctx, req.SprintID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListSprintMembers(ctx, req.SprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprint members: %w", err)
	}
	for _, m := range members {
		if m.ItemKind == req.ItemKind && m.ItemID == req.ItemID {
			return nil, fmt.Errorf("%s %d: %w", req.ItemKind, req.ItemID, ErrAlreadyInSprint)
		}
	}

	member, err := s.repo.AddSprintMember(ctx, req.SprintID, req.ItemKind, req.ItemID, pctx.Actor())
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return member, nil
}

// RemoveMember takes a work item out of a sprint's scope.
func (s *service) RemoveMember(ctx context.Context, pctx *access.Context, req MemberRequest) error {
	if req.SprintID <= 0 {
		return ErrInvalidSprintID
	}
	if req.ItemID <= 0 {
		return ErrInvalidItemID
	}
	if !validMemberKind(req.ItemKind) {
		return fmt.Errorf("%w: %q", ErrInvalidMemberKind, req.ItemKind)
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, req.SprintID); err != nil {
		return err
	}
	if err := s.requireOpenSprint(ctx, req.SprintID); err != nil {
		return err
	}

	if err := s.repo.RemoveSprintMember(ctx, req.SprintID, req.ItemKind, req.ItemID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// ListMembers returns a sprint's scope in insertion order.
func (s *service) ListMembers(ctx context.Context, pctx *access.Context, sprintID int64) ([]*models.SprintMembership, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}
	return s.repo.ListSprintMembers(ctx, sprintID)
}

// Capacity reports live point totals for a sprint. Unestimated members
// contribute zero.
func (s *service) Capacity(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintCapacity, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}
	return s.repo.GetSprintCapacity(ctx, sprintID)
}

// TakeSnapshot records the current totals of an active sprint on demand.
func (s *service) TakeSnapshot(ctx context.Context, pctx *access.Context, sprintID int64) (*models.SprintSnapshot, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}

	snapshot, err := s.repo.TakeSprintSnapshot(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return snapshot, nil
}

// ListSnapshots returns a sprint's history oldest first, the order a
// burndown chart wants.
func (s *service) ListSnapshots(ctx context.Context, pctx *access.Context, sprintID int64) ([]*models.SprintSnapshot, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}
	return s.repo.ListSprintSnapshots(ctx, sprintID)
}

// IdealBurndown returns the straight-line reference from committed points
// to zero: one value per day boundary, starting at the full commitment and
// ending at exactly zero.
func (s *service) IdealBurndown(ctx context.Context, pctx *access.Context, sprintID int64) ([]float64, error) {
	if sprintID <= 0 {
		return nil, ErrInvalidSprintID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindSprint, sprintID); err != nil {
		return nil, err
	}

	sprint, err := s.repo.GetSprintByID(ctx, sprintID)
	if err != nil {
		return nil, err
	}
	capacity, err := s.repo.GetSprintCapacity(ctx, sprintID)
	if err != nil {
		return nil, err
	}

	totalDays := sprint.TotalDays()
	committed := float64(capacity.Committed)
	perDay := committed / float64(totalDays)

	line := make([]float64, totalDays+1)
	for i := 0; i <= totalDays; i++ {
		remaining := committed - perDay*float64(i)
		if remaining < 0 {
			remaining = 0
		}
		line[i] = remaining
	}
	line[totalDays] = 0
	return line, nil
}

// Velocity averages completed points over the most recent completed
// sprints, newest first. Each sprint contributes its final snapshot, so
// edits made after completion never rewrite the record.
func (s *service) Velocity(ctx context.Context, pctx *access.Context, window int) (*VelocityReport, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if window <= 0 {
		window = DefaultVelocityWindow
	}

	sprints, err := s.repo.ListCompletedSprints(ctx, pctx.ProjectID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed sprints: %w", err)
	}

	report := &VelocityReport{Sprints: make([]SprintVelocity, 0, len(sprints))}
	var total int64
	for _, sp := range sprints {
		snapshot, err := s.repo.GetLatestSprintSnapshot(ctx, sp.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// A completed sprint without history contributes zero
				// rather than failing the whole report.
				report.Sprints = append(report.Sprints, SprintVelocity{
					SprintID: sp.ID, Name: sp.Name, EndDate: sp.EndDate,
				})
				continue
			}
			return nil, err
		}
		report.Sprints = append(report.Sprints, SprintVelocity{
			SprintID:        sp.ID,
			Name:            sp.Name,
			EndDate:         sp.EndDate,
			CompletedPoints: snapshot.CompletedPoints,
		})
		total += snapshot.CompletedPoints
	}

	if len(report.Sprints) > 0 {
		report.AveragePoints = float64(total) / float64(len(report.Sprints))
	}
	return report, nil
}

// requireOpenSprint rejects scope changes against terminal sprints.
func (s *service) requireOpenSprint(ctx context.Context, sprintID int64) error {
	sprint, err := s.repo.GetSprintByID(ctx, sprintID)
	if err != nil {
		return err
	}
	if sprint.Status == models.SprintCompleted || sprint.Status == models.SprintCancelled {
		return fmt.Errorf("sprint %d is %s: %w", sprintID, sprint.Status, ErrSprintFinished)
	}
	return nil
}

func (s *service) publishChangeEvent(projectID int64) {
	if s.eventClient == nil {
		return
	}
	if err := s.eventClient.SendEvent(events.Event{
		Type:      events.EventBacklogChanged,
		ProjectID: projectID,
	}); err != nil {
		log.Printf("Warning: failed to publish change event: %v", err)
	}
}
