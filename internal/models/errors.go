package models

import "errors"

// Data-integrity errors raised by the storage layer and passed through the
// services untouched. Callers test with errors.Is.
var (
	// ErrCircularDependency rejects a graph edge whose insertion would
	// close a loop, including a direct self-loop.
	ErrCircularDependency = errors.New("edge would create a circular dependency")

	// ErrCrossProject rejects an edge between entities owned by different
	// projects.
	ErrCrossProject = errors.New("entities belong to different projects")

	// ErrInvalidTransition rejects a status change outside the allowed
	// state machine, for work items and sprints alike.
	ErrInvalidTransition = errors.New("status transition not allowed")
)
