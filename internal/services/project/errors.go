package project

import "errors"

// Validation errors
var (
	ErrEmptyIdentifier   = errors.New("project identifier cannot be empty")
	ErrInvalidIdentifier = errors.New("project identifier must be lowercase letters, digits, hyphens, or underscores")
	ErrIdentifierTooLong = errors.New("project identifier cannot exceed 64 characters")
	ErrNameTooLong       = errors.New("project name cannot exceed 255 characters")
)

// Business logic errors
var (
	// ErrIdentifierTaken is returned when registering an identifier that
	// already names a project. Identifiers are unique and immutable.
	ErrIdentifierTaken = errors.New("project identifier is already registered")
)
