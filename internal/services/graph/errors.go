package graph

import "errors"

// Validation errors
var (
	ErrInvalidStoryID        = errors.New("invalid story ID")
	ErrInvalidEntityID       = errors.New("invalid entity ID")
	ErrInvalidRelationshipID = errors.New("invalid relationship ID")
	ErrSelfDependency        = errors.New("a story cannot depend on itself")
	ErrSelfRelation          = errors.New("an entity cannot relate to itself")
	ErrInvalidDependencyType = errors.New("invalid dependency type")
	ErrInvalidRelationType   = errors.New("invalid relationship type")
	ErrKindNotRelatable      = errors.New("entity kind cannot appear in a relationship")
)
