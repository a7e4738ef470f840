package models

import "time"

// Note is a freeform annotation attached to any entity, the project root
// included.
type Note struct {
	ID         int64
	ProjectID  int64
	ParentKind EntityKind
	ParentID   int64
	Author     string
	Body       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NoteFilter selects notes within a project, optionally narrowed to one
// parent entity.
type NoteFilter struct {
	ProjectID  int64 // required
	ParentKind EntityKind
	ParentID   *int64
	Author     string
}
