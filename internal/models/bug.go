package models

import "time"

// Bug is a defect report. Unlike a task it belongs to the project directly,
// with an optional link to the story it was found in.
type Bug struct {
	ID             int64
	ProjectID      int64
	StoryID        *int64 // nil when not tied to a story
	Title          string
	Description    string
	Status         Status
	Priority       Priority
	Points         *int64
	AssignedTo     string
	LastModifiedBy string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// BugFilter selects bugs within a project.
type BugFilter struct {
	ProjectID  int64 // required
	StoryID    *int64
	Status     Status
	Priority   Priority
	AssignedTo string
}

// BugPatch is a partial update. Nil pointer fields are left untouched;
// StoryID uses NullableInt so the story link can be cleared explicitly.
type BugPatch struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	StoryID     NullableInt
	Points      NullableInt
	AssignedTo  *string
}
