package models

import "time"

// Epic groups stories under a project.
type Epic struct {
	ID             int64
	ProjectID      int64
	Name           string
	Description    string
	Status         Status
	AssignedTo     string
	LastModifiedBy string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EpicFilter selects epics within a project.
type EpicFilter struct {
	ProjectID  int64 // required; epics are never listed across projects
	Status     Status
	AssignedTo string
}

// EpicPatch is a partial update. Nil pointer fields are left untouched.
type EpicPatch struct {
	Name        *string
	Description *string
	Status      *Status
	AssignedTo  *string
}
