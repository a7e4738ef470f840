package backlog

import "errors"

// Validation errors
var (
	ErrInvalidEpicID  = errors.New("invalid epic ID")
	ErrInvalidStoryID = errors.New("invalid story ID")
	ErrInvalidTaskID  = errors.New("invalid task ID")
	ErrInvalidBugID   = errors.New("invalid bug ID")
	ErrInvalidNoteID  = errors.New("invalid note ID")

	ErrEmptyName    = errors.New("epic name cannot be empty")
	ErrNameTooLong  = errors.New("epic name cannot exceed 255 characters")
	ErrEmptyTitle   = errors.New("title cannot be empty")
	ErrTitleTooLong = errors.New("title cannot exceed 255 characters")
	ErrEmptyBody    = errors.New("note body cannot be empty")

	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrInvalidTaskType   = errors.New("invalid task type")
	ErrInvalidNoteParent = errors.New("invalid note parent kind")
	ErrNegativePoints    = errors.New("points cannot be negative")
)
