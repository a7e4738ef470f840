// Package database defines repository interfaces for data access
package database

import (
	"context"

	"github.com/mfigueroa/backlog/internal/models"
)

// ProjectStore covers project registration and lookup.
type ProjectStore interface {
	CreateProject(ctx context.Context, identifier, name, description string) (*models.Project, error)
	GetProjectByID(ctx context.Context, id int64) (*models.Project, error)
	GetProjectByIdentifier(ctx context.Context, identifier string) (*models.Project, error)
	GetAllProjects(ctx context.Context) ([]*models.Project, error)
	TouchProject(ctx context.Context, id int64) error
	UpdateProject(ctx context.Context, id int64, name, description string) error
	DeleteProject(ctx context.Context, id int64) error
	GetProjectCounts(ctx context.Context, id int64) (*ProjectCounts, error)
}

// EpicStore covers epic operations.
type EpicStore interface {
	CreateEpic(ctx context.Context, projectID int64, name, description, assignedTo, actor string) (*models.Epic, error)
	GetEpicByID(ctx context.Context, id int64) (*models.Epic, error)
	GetEpicProjectID(ctx context.Context, id int64) (int64, error)
	ListEpics(ctx context.Context, filter models.EpicFilter) ([]*models.Epic, error)
	UpdateEpic(ctx context.Context, id int64, patch models.EpicPatch, actor string) error
	DeleteEpic(ctx context.Context, id int64) error
}

// StoryStore covers story operations.
type StoryStore interface {
	CreateStory(ctx context.Context, story *models.Story, actor string) (*models.Story, error)
	GetStoryByID(ctx context.Context, id int64) (*models.Story, error)
	GetStoryProjectID(ctx context.Context, id int64) (int64, error)
	ListStories(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error)
	UpdateStory(ctx context.Context, id int64, patch models.StoryPatch, actor string) error
	DeleteStory(ctx context.Context, id int64) error
}

// TaskStore covers task operations.
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task, actor string) (*models.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)
	GetTaskProjectID(ctx context.Context, id int64) (int64, error)
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch, actor string) error
	DeleteTask(ctx context.Context, id int64) error
}

// BugStore covers bug operations.
type BugStore interface {
	CreateBug(ctx context.Context, bug *models.Bug, actor string) (*models.Bug, error)
	GetBugByID(ctx context.Context, id int64) (*models.Bug, error)
	GetBugProjectID(ctx context.Context, id int64) (int64, error)
	ListBugs(ctx context.Context, filter models.BugFilter) ([]*models.Bug, error)
	UpdateBug(ctx context.Context, id int64, patch models.BugPatch, actor string) error
	DeleteBug(ctx context.Context, id int64) error
}

// DependencyStore covers story dependency edges.
type DependencyStore interface {
	CreateDependency(ctx context.Context, storyID, dependsOnStoryID int64, depType models.DependencyType) (*models.Dependency, error)
	GetDependencyByID(ctx context.Context, id int64) (*models.Dependency, error)
	GetDependencyProjectID(ctx context.Context, id int64) (int64, error)
	ListDependencies(ctx context.Context, filter models.DependencyFilter) ([]*models.Dependency, error)
	DeleteDependency(ctx context.Context, id int64) error
	DeleteDependencyByPair(ctx context.Context, storyID, dependsOnStoryID int64) error
}

// RelationshipStore covers generalized typed edges.
type RelationshipStore interface {
	CreateRelationship(ctx context.Context, rel *models.Relationship) (*models.Relationship, error)
	GetRelationshipByID(ctx context.Context, id int64) (*models.Relationship, error)
	GetRelationshipProjectID(ctx context.Context, id int64) (int64, error)
	ListRelationships(ctx context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error)
	DeleteRelationship(ctx context.Context, id int64) error
}

// NoteStore covers note operations.
type NoteStore interface {
	CreateNote(ctx context.Context, note *models.Note) (*models.Note, error)
	GetNoteByID(ctx context.Context, id int64) (*models.Note, error)
	GetNoteProjectID(ctx context.Context, id int64) (int64, error)
	ListNotes(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error)
	UpdateNote(ctx context.Context, id int64, body string) error
	DeleteNote(ctx context.Context, id int64) error
}

// SprintStore covers sprints, memberships, and snapshots.
type SprintStore interface {
	CreateSprint(ctx context.Context, sprint *models.Sprint) (*models.Sprint, error)
	GetSprintByID(ctx context.Context, id int64) (*models.Sprint, error)
	GetSprintProjectID(ctx context.Context, id int64) (int64, error)
	ListSprints(ctx context.Context, filter models.SprintFilter) ([]*models.Sprint, error)
	ListCompletedSprints(ctx context.Context, projectID int64, limit int) ([]*models.Sprint, error)
	UpdateSprint(ctx context.Context, id int64, patch models.SprintPatch) error
	DeleteSprint(ctx context.Context, id int64) error
	StartSprint(ctx context.Context, id int64) (*models.SprintSnapshot, error)
	CompleteSprint(ctx context.Context, id int64) (*models.SprintSnapshot, error)
	CancelSprint(ctx context.Context, id int64) error
	TakeSprintSnapshot(ctx context.Context, sprintID int64) (*models.SprintSnapshot, error)
	GetLatestSprintSnapshot(ctx context.Context, sprintID int64) (*models.SprintSnapshot, error)
	ListSprintSnapshots(ctx context.Context, sprintID int64) ([]*models.SprintSnapshot, error)
	AddSprintMember(ctx context.Context, sprintID int64, kind models.EntityKind, itemID int64, addedBy string) (*models.SprintMembership, error)
	RemoveSprintMember(ctx context.Context, sprintID int64, kind models.EntityKind, itemID int64) error
	ListSprintMembers(ctx context.Context, sprintID int64) ([]*models.SprintMembership, error)
	GetSprintCapacity(ctx context.Context, sprintID int64) (*models.SprintCapacity, error)
}

// SecurityLogStore covers the append-only audit trail.
type SecurityLogStore interface {
	AppendSecurityEvent(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error)
	ListSecurityEvents(ctx context.Context, filter models.SecurityEventFilter) ([]*models.SecurityEvent, error)
}

// GraphStore answers graph reachability and ownership questions.
type GraphStore interface {
	WouldCreateCycle(ctx context.Context, projectID int64, source, target GraphNode) (bool, error)
	ResolveEntityProject(ctx context.Context, kind models.EntityKind, id int64) (int64, error)
}

// DataStore defines the unified interface for all data operations needed by
// the services. It is composed of smaller, domain-specific interfaces so
// consumers can depend on just the slice they use.
type DataStore interface {
	ProjectStore
	EpicStore
	StoryStore
	TaskStore
	BugStore
	DependencyStore
	RelationshipStore
	NoteStore
	SprintStore
	SecurityLogStore
	GraphStore
}
