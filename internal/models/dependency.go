package models

import "time"

// DependencyType is the direction label on a story→story dependency edge.
type DependencyType string

const (
	DependencyBlocks    DependencyType = "blocks"
	DependencyBlockedBy DependencyType = "blocked_by"
)

// IsValid reports whether d is a known dependency type.
func (d DependencyType) IsValid() bool {
	return d == DependencyBlocks || d == DependencyBlockedBy
}

// Dependency is a directed edge between two stories in the same project.
// The edge set within a project must stay acyclic; insertion is guarded by
// the graph validator.
type Dependency struct {
	ID               int64
	StoryID          int64
	DependsOnStoryID int64
	DepType          DependencyType
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DependencyFilter selects dependency edges within a project.
type DependencyFilter struct {
	ProjectID int64 // required; resolved through the source story
	StoryID   *int64
}
