package models

import (
	"math"
	"time"
)

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
	SprintCancelled SprintStatus = "cancelled"
)

// IsValid reports whether s is a known sprint status.
func (s SprintStatus) IsValid() bool {
	switch s {
	case SprintPlanning, SprintActive, SprintCompleted, SprintCancelled:
		return true
	}
	return false
}

// sprintTransitions is the closed set of legal sprint state changes.
// Completed and cancelled are terminal.
var sprintTransitions = map[SprintStatus][]SprintStatus{
	SprintPlanning: {SprintActive, SprintCancelled},
	SprintActive:   {SprintCompleted},
}

// CanTransitionSprint reports whether a sprint may move from one status to
// another. Same-status writes are allowed so idempotent updates succeed.
func CanTransitionSprint(from, to SprintStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range sprintTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Sprint is a time-boxed iteration owned by a project.
type Sprint struct {
	ID             int64
	ProjectID      int64
	Name           string
	Goal           string
	StartDate      time.Time
	EndDate        time.Time
	CapacityPoints *int64
	Status         SprintStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TotalDays is the sprint window length, rounded up to whole days. A
// degenerate or inverted window still reports one day so burndown math
// has a positive denominator.
func (s Sprint) TotalDays() int {
	days := int(math.Ceil(s.EndDate.Sub(s.StartDate).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// SprintFilter selects sprints within a project.
type SprintFilter struct {
	ProjectID int64 // required
	Status    SprintStatus
}

// SprintPatch is a partial sprint update. Nil fields are left unchanged.
type SprintPatch struct {
	Name           *string
	Goal           *string
	StartDate      *time.Time
	EndDate        *time.Time
	CapacityPoints NullableInt
	Status         *SprintStatus
}

// SprintMembership assigns one work item to a sprint. An item may belong
// to at most one membership row per sprint.
type SprintMembership struct {
	ID       int64
	SprintID int64
	ItemKind EntityKind
	ItemID   int64
	AddedAt  time.Time
	AddedBy  string
}

// SprintSnapshot is an immutable record of sprint totals, captured when the
// sprint starts, when it completes, and on demand in between. Later edits
// to the underlying items do not rewrite history. AddedPoints and
// RemovedPoints measure scope change against the previous snapshot.
type SprintSnapshot struct {
	ID              int64
	SprintID        int64
	RemainingPoints int64
	CompletedPoints int64
	AddedPoints     int64
	RemovedPoints   int64
	TakenAt         time.Time
}

// CommittedPoints is the total scope the snapshot observed.
func (s SprintSnapshot) CommittedPoints() int64 {
	return s.RemainingPoints + s.CompletedPoints
}

// SprintCapacity summarizes point totals for a sprint. Items without an
// estimate contribute zero.
type SprintCapacity struct {
	Committed int64
	Completed int64
	Remaining int64
}
