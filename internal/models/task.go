package models

import "time"

// TaskType categorizes the work a task represents.
type TaskType string

const (
	TaskTypeDevelopment TaskType = "development"
	TaskTypeTesting     TaskType = "testing"
	TaskTypeDocs        TaskType = "documentation"
	TaskTypeResearch    TaskType = "research"
)

// IsValid reports whether t is a known task type.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskTypeDevelopment, TaskTypeTesting, TaskTypeDocs, TaskTypeResearch:
		return true
	}
	return false
}

// Task is a concrete piece of work under a story. Tasks have no direct
// project column; their project is the owning story's.
type Task struct {
	ID             int64
	StoryID        int64
	Title          string
	Description    string
	TaskType       TaskType
	Status         Status
	Priority       Priority
	Points         *int64
	AssignedTo     string
	LastModifiedBy string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskFilter selects tasks. ProjectID scopes through the owning story.
type TaskFilter struct {
	ProjectID  int64 // required
	StoryID    *int64
	Status     Status
	Priority   Priority
	AssignedTo string
}

// TaskPatch is a partial update. Nil pointer fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	TaskType    *TaskType
	Status      *Status
	Priority    *Priority
	Points      NullableInt
	AssignedTo  *string
}
