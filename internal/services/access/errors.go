package access

import "errors"

// Scoping errors
var (
	ErrEmptyIdentifier   = errors.New("project identifier cannot be empty")
	ErrEmptyCaller       = errors.New("caller identity cannot be empty")
	ErrNoContext         = errors.New("operation requires a resolved project context")
	ErrInvalidEntityKind = errors.New("invalid entity kind")

	// ErrProjectNotRegistered is returned when a caller names an identifier
	// that was never registered. The attempt is recorded before rejection.
	ErrProjectNotRegistered = errors.New("project is not registered")

	// ErrAccessDenied is returned when an entity belongs to a different
	// project than the caller's context. The violation is recorded before
	// rejection.
	ErrAccessDenied = errors.New("entity belongs to a different project")
)
