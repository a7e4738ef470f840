package models

import "time"

// Story is the unit of plannable work. A story always carries a direct
// project reference, even when it has no epic: "orphan" stories must stay
// isolated to their project, so ProjectID is set at creation and never
// changes afterwards.
type Story struct {
	ID                 int64
	ProjectID          int64
	EpicID             *int64 // nil for orphan stories
	Title              string
	Description        string
	Status             Status
	Priority           Priority
	Points             *int64 // nil when unestimated
	AcceptanceCriteria string
	AssignedTo         string
	LastModifiedBy     string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StoryFilter selects stories within a project.
type StoryFilter struct {
	ProjectID       int64  // required
	EpicID          *int64 // stories under one epic
	Orphan          bool   // only stories with no epic
	Status          Status
	Priority        Priority
	AssignedTo      string
	HasDependencies *bool // presence/absence of outgoing dependencies
}

// StoryPatch is a partial update. Nil pointer fields are left untouched;
// EpicID and Points use NullableInt so detaching a story from its epic (or
// dropping an estimate) is expressed explicitly rather than by omission.
type StoryPatch struct {
	Title              *string
	Description        *string
	Status             *Status
	Priority           *Priority
	EpicID             NullableInt
	Points             NullableInt
	AcceptanceCriteria *string
	AssignedTo         *string
}
