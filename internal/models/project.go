package models

import "time"

// Project is the root of isolation. Every scoped entity hangs off exactly
// one project, and deleting a project cascades to all of them.
//
// Identifier is the human-chosen slug callers use instead of the numeric id;
// it is unique and immutable once registered.
type Project struct {
	ID             int64
	Identifier     string
	Name           string
	Description    string
	LastAccessedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
