package models

// Status represents the workflow state of an epic, story, task, or bug.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusReview     Status = "review"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// IsValid reports whether s is a known workflow status.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// Priority represents the urgency of a story, task, or bug.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IsValid reports whether p is a known priority.
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// EntityKind names an entity table. It is used for access checks,
// relationship endpoints, notes, and security log rows.
type EntityKind string

const (
	KindProject EntityKind = "project"
	KindEpic    EntityKind = "epic"
	KindStory   EntityKind = "story"
	KindTask    EntityKind = "task"
	KindBug     EntityKind = "bug"
	KindSprint  EntityKind = "sprint"
)

// IsValid reports whether k is a known entity kind.
func (k EntityKind) IsValid() bool {
	switch k {
	case KindProject, KindEpic, KindStory, KindTask, KindBug, KindSprint:
		return true
	}
	return false
}

// IsRelatable reports whether k may appear as a relationship endpoint.
// Sprints are deliberately excluded: they are containers, not work items.
func (k EntityKind) IsRelatable() bool {
	switch k {
	case KindProject, KindEpic, KindStory, KindTask, KindBug:
		return true
	}
	return false
}
