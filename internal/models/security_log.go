package models

import "time"

// SecurityEventType classifies entries in the security log.
type SecurityEventType string

const (
	EventUnauthorizedAccess SecurityEventType = "unauthorized_access"
	EventProjectViolation   SecurityEventType = "project_violation"
	EventConflictDetected   SecurityEventType = "conflict_detected"
)

// IsValid reports whether e is a known security event type.
func (e SecurityEventType) IsValid() bool {
	switch e {
	case EventUnauthorizedAccess, EventProjectViolation, EventConflictDetected:
		return true
	}
	return false
}

// SecurityEvent is an append-only audit record. ProjectID is the project
// the actor was operating under; TargetProjectID, when set, is the project
// that actually owns the entity involved.
type SecurityEvent struct {
	ID              int64
	EventType       SecurityEventType
	Actor           string
	ProjectID       *int64
	TargetProjectID *int64
	EntityKind      EntityKind
	EntityID        *int64
	Message         string
	CreatedAt       time.Time
}

// SecurityEventFilter selects audit records.
type SecurityEventFilter struct {
	EventType SecurityEventType
	Actor     string
	ProjectID *int64
	Since     *time.Time
	Limit     int
}
