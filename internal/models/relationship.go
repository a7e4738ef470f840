package models

import "time"

// RelationshipType is the label on a generalized typed edge.
type RelationshipType string

const (
	RelBlocks     RelationshipType = "blocks"
	RelBlockedBy  RelationshipType = "blocked_by"
	RelRelatedTo  RelationshipType = "related_to"
	RelClonedFrom RelationshipType = "cloned_from"
	RelDependsOn  RelationshipType = "depends_on"
)

// IsValid reports whether r is a known relationship type.
func (r RelationshipType) IsValid() bool {
	switch r {
	case RelBlocks, RelBlockedBy, RelRelatedTo, RelClonedFrom, RelDependsOn:
		return true
	}
	return false
}

// GraphSemantic reports whether edges of this type carry ordering semantics
// and therefore participate in cycle checking. related_to and cloned_from
// are annotations, not ordering, and are excluded from traversal.
func (r RelationshipType) GraphSemantic() bool {
	switch r {
	case RelBlocks, RelBlockedBy, RelDependsOn:
		return true
	}
	return false
}

// Relationship is a directed, typed edge between any two entities in the
// same project. Endpoints are (kind, id) pairs drawn from the relatable
// kinds.
type Relationship struct {
	ID         int64
	ProjectID  int64
	SourceKind EntityKind
	SourceID   int64
	TargetKind EntityKind
	TargetID   int64
	RelType    RelationshipType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RelationshipFilter selects relationship edges within a project.
type RelationshipFilter struct {
	ProjectID  int64 // required
	SourceKind EntityKind
	SourceID   *int64
	RelType    RelationshipType
}
