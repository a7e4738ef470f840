package sprint

import "errors"

// Validation errors
var (
	ErrEmptyName         = errors.New("sprint name cannot be empty")
	ErrNameTooLong       = errors.New("sprint name cannot exceed 255 characters")
	ErrInvalidSprintID   = errors.New("invalid sprint ID")
	ErrInvalidItemID     = errors.New("invalid item ID")
	ErrMissingDates      = errors.New("sprint start and end dates are required")
	ErrInvalidWindow     = errors.New("sprint end date must be after its start date")
	ErrNegativeCapacity  = errors.New("sprint capacity cannot be negative")
	ErrInvalidStatus     = errors.New("invalid sprint status")
	ErrInvalidMemberKind = errors.New("only stories and bugs can join a sprint")
)

// Business logic errors
var (
	// ErrAlreadyInSprint is returned when adding an item that already has a
	// membership row in the sprint.
	ErrAlreadyInSprint = errors.New("item is already in the sprint")

	// ErrSprintFinished is returned for edits against a completed or
	// cancelled sprint. Terminal sprints are history and stay frozen.
	ErrSprintFinished = errors.New("sprint is finished and cannot be modified")
)
