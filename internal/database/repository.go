package database

import (
	"context"
	"database/sql"

	"github.com/mfigueroa/backlog/internal/models"
)

// Repository provides a unified interface to all data operations.
// It composes domain-specific repositories using struct embedding.
type Repository struct {
	*ProjectRepo
	*EpicRepo
	*StoryRepo
	*TaskRepo
	*BugRepo
	*DependencyRepo
	*RelationshipRepo
	*NoteRepo
	*SprintRepo
	*SecurityLogRepo
	*GraphRepo
}

// NewRepository creates a new Repository instance wrapping the given database connection.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		ProjectRepo:      &ProjectRepo{db: db},
		EpicRepo:         &EpicRepo{db: db},
		StoryRepo:        &StoryRepo{db: db},
		TaskRepo:         &TaskRepo{db: db},
		BugRepo:          &BugRepo{db: db},
		DependencyRepo:   &DependencyRepo{db: db},
		RelationshipRepo: &RelationshipRepo{db: db},
		NoteRepo:         &NoteRepo{db: db},
		SprintRepo:       &SprintRepo{db: db},
		SecurityLogRepo:  &SecurityLogRepo{db: db},
		GraphRepo:        &GraphRepo{db: db},
	}
}

// Wrapper methods for ProjectRepo to satisfy DataStore
func (r *Repository) CreateProject(ctx context.Context, identifier, name, description string) (*models.Project, error) {
	return r.ProjectRepo.Create(ctx, identifier, name, description)
}

func (r *Repository) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	return r.ProjectRepo.GetByID(ctx, id)
}

func (r *Repository) GetProjectByIdentifier(ctx context.Context, identifier string) (*models.Project, error) {
	return r.ProjectRepo.GetByIdentifier(ctx, identifier)
}

func (r *Repository) GetAllProjects(ctx context.Context) ([]*models.Project, error) {
	return r.ProjectRepo.GetAll(ctx)
}

func (r *Repository) TouchProject(ctx context.Context, id int64) error {
	return r.ProjectRepo.TouchLastAccessed(ctx, id)
}

func (r *Repository) UpdateProject(ctx context.Context, id int64, name, description string) error {
	return r.ProjectRepo.Update(ctx, id, name, description)
}

func (r *Repository) DeleteProject(ctx context.Context, id int64) error {
	return r.ProjectRepo.Delete(ctx, id)
}

func (r *Repository) GetProjectCounts(ctx context.Context, id int64) (*ProjectCounts, error) {
	return r.ProjectRepo.GetCounts(ctx, id)
}

// Wrapper methods for EpicRepo to satisfy DataStore
func (r *Repository) CreateEpic(ctx context.Context, projectID int64, name, description, assignedTo, actor string) (*models.Epic, error) {
	return r.EpicRepo.Create(ctx, projectID, name, description, assignedTo, actor)
}

func (r *Repository) GetEpicByID(ctx context.Context, id int64) (*models.Epic, error) {
	return r.EpicRepo.GetByID(ctx, id)
}

func (r *Repository) GetEpicProjectID(ctx context.Context, id int64) (int64, error) {
	return r.EpicRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListEpics(ctx context.Context, filter models.EpicFilter) ([]*models.Epic, error) {
	return r.EpicRepo.List(ctx, filter)
}

func (r *Repository) UpdateEpic(ctx context.Context, id int64, patch models.EpicPatch, actor string) error {
	return r.EpicRepo.Update(ctx, id, patch, actor)
}

func (r *Repository) DeleteEpic(ctx context.Context, id int64) error {
	return r.EpicRepo.Delete(ctx, id)
}

// Wrapper methods for StoryRepo to satisfy DataStore
func (r *Repository) CreateStory(ctx context.Context, story *models.Story, actor string) (*models.Story, error) {
	return r.StoryRepo.Create(ctx, story, actor)
}

func (r *Repository) GetStoryByID(ctx context.Context, id int64) (*models.Story, error) {
	return r.StoryRepo.GetByID(ctx, id)
}

func (r *Repository) GetStoryProjectID(ctx context.Context, id int64) (int64, error) {
	return r.StoryRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListStories(ctx context.Context, filter models.StoryFilter) ([]*models.Story, error) {
	return r.StoryRepo.List(ctx, filter)
}

func (r *Repository) UpdateStory(ctx context.Context, id int64, patch models.StoryPatch, actor string) error {
	return r.StoryRepo.Update(ctx, id, patch, actor)
}

func (r *Repository) DeleteStory(ctx context.Context, id int64) error {
	return r.StoryRepo.Delete(ctx, id)
}

// Wrapper methods for TaskRepo to satisfy DataStore
func (r *Repository) CreateTask(ctx context.Context, task *models.Task, actor string) (*models.Task, error) {
	return r.TaskRepo.Create(ctx, task, actor)
}

func (r *Repository) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	return r.TaskRepo.GetByID(ctx, id)
}

func (r *Repository) GetTaskProjectID(ctx context.Context, id int64) (int64, error) {
	return r.TaskRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListTasks(ctx context.Context, filter models.TaskFilter) ([]*models.Task, error) {
	return r.TaskRepo.List(ctx, filter)
}

func (r *Repository) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch, actor string) error {
	return r.TaskRepo.Update(ctx, id, patch, actor)
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	return r.TaskRepo.Delete(ctx, id)
}

// Wrapper methods for BugRepo to satisfy DataStore
func (r *Repository) CreateBug(ctx context.Context, bug *models.Bug, actor string) (*models.Bug, error) {
	return r.BugRepo.Create(ctx, bug, actor)
}

func (r *Repository) GetBugByID(ctx context.Context, id int64) (*models.Bug, error) {
	return r.BugRepo.GetByID(ctx, id)
}

func (r *Repository) GetBugProjectID(ctx context.Context, id int64) (int64, error) {
	return r.BugRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListBugs(ctx context.Context, filter models.BugFilter) ([]*models.Bug, error) {
	return r.BugRepo.List(ctx, filter)
}

func (r *Repository) UpdateBug(ctx context.Context, id int64, patch models.BugPatch, actor string) error {
	return r.BugRepo.Update(ctx, id, patch, actor)
}

func (r *Repository) DeleteBug(ctx context.Context, id int64) error {
	return r.BugRepo.Delete(ctx, id)
}

// Wrapper methods for DependencyRepo to satisfy DataStore
func (r *Repository) CreateDependency(ctx context.Context, storyID, dependsOnStoryID int64, depType models.DependencyType) (*models.Dependency, error) {
	return r.DependencyRepo.Create(ctx, storyID, dependsOnStoryID, depType)
}

func (r *Repository) GetDependencyByID(ctx context.Context, id int64) (*models.Dependency, error) {
	return r.DependencyRepo.GetByID(ctx, id)
}

func (r *Repository) GetDependencyProjectID(ctx context.Context, id int64) (int64, error) {
	return r.DependencyRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListDependencies(ctx context.Context, filter models.DependencyFilter) ([]*models.Dependency, error) {
	return r.DependencyRepo.List(ctx, filter)
}

func (r *Repository) DeleteDependency(ctx context.Context, id int64) error {
	return r.DependencyRepo.Delete(ctx, id)
}

func (r *Repository) DeleteDependencyByPair(ctx context.Context, storyID, dependsOnStoryID int64) error {
	return r.DependencyRepo.DeleteByPair(ctx, storyID, dependsOnStoryID)
}

// Wrapper methods for RelationshipRepo to satisfy DataStore
func (r *Repository) CreateRelationship(ctx context.Context, rel *models.Relationship) (*models.Relationship, error) {
	return r.RelationshipRepo.Create(ctx, rel)
}

func (r *Repository) GetRelationshipByID(ctx context.Context, id int64) (*models.Relationship, error) {
	return r.RelationshipRepo.GetByID(ctx, id)
}

func (r *Repository) GetRelationshipProjectID(ctx context.Context, id int64) (int64, error) {
	return r.RelationshipRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListRelationships(ctx context.Context, filter models.RelationshipFilter) ([]*models.Relationship, error) {
	return r.RelationshipRepo.List(ctx, filter)
}

func (r *Repository) DeleteRelationship(ctx context.Context, id int64) error {
	return r.RelationshipRepo.Delete(ctx, id)
}

// Wrapper methods for NoteRepo to satisfy DataStore
func (r *Repository) CreateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	return r.NoteRepo.Create(ctx, note)
}

func (r *Repository) GetNoteByID(ctx context.Context, id int64) (*models.Note, error) {
	return r.NoteRepo.GetByID(ctx, id)
}

func (r *Repository) GetNoteProjectID(ctx context.Context, id int64) (int64, error) {
	return r.NoteRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListNotes(ctx context.Context, filter models.NoteFilter) ([]*models.Note, error) {
	return r.NoteRepo.List(ctx, filter)
}

func (r *Repository) UpdateNote(ctx context.Context, id int64, body string) error {
	return r.NoteRepo.Update(ctx, id, body)
}

func (r *Repository) DeleteNote(ctx context.Context, id int64) error {
	return r.NoteRepo.Delete(ctx, id)
}

// Wrapper methods for SprintRepo to satisfy DataStore
func (r *Repository) CreateSprint(ctx context.Context, sprint *models.Sprint) (*models.Sprint, error) {
	return r.SprintRepo.Create(ctx, sprint)
}

func (r *Repository) GetSprintByID(ctx context.Context, id int64) (*models.Sprint, error) {
	return r.SprintRepo.GetByID(ctx, id)
}

func (r *Repository) GetSprintProjectID(ctx context.Context, id int64) (int64, error) {
	return r.SprintRepo.GetProjectID(ctx, id)
}

func (r *Repository) ListSprints(ctx context.Context, filter models.SprintFilter) ([]*models.Sprint, error) {
	return r.SprintRepo.List(ctx, filter)
}

func (r *Repository) ListCompletedSprints(ctx context.Context, projectID int64, limit int) ([]*models.Sprint, error) {
	return r.SprintRepo.ListCompleted(ctx, projectID, limit)
}

func (r *Repository) UpdateSprint(ctx context.Context, id int64, patch models.SprintPatch) error {
	return r.SprintRepo.Update(ctx, id, patch)
}

func (r *Repository) DeleteSprint(ctx context.Context, id int64) error {
	return r.SprintRepo.Delete(ctx, id)
}

func (r *Repository) StartSprint(ctx context.Context, id int64) (*models.SprintSnapshot, error) {
	return r.SprintRepo.Start(ctx, id)
}

func (r *Repository) CompleteSprint(ctx context.Context, id int64) (*models.SprintSnapshot, error) {
	return r.SprintRepo.Complete(ctx, id)
}

func (r *Repository) CancelSprint(ctx context.Context, id int64) error {
	return r.SprintRepo.Cancel(ctx, id)
}

func (r *Repository) TakeSprintSnapshot(ctx context.Context, sprintID int64) (*models.SprintSnapshot, error) {
	return r.SprintRepo.TakeSnapshot(ctx, sprintID)
}

func (r *Repository) GetLatestSprintSnapshot(ctx context.Context, sprintID int64) (*models.SprintSnapshot, error) {
	return r.SprintRepo.GetLatestSnapshot(ctx, sprintID)
}

func (r *Repository) ListSprintSnapshots(ctx context.Context, sprintID int64) ([]*models.SprintSnapshot, error) {
	return r.SprintRepo.ListSnapshots(ctx, sprintID)
}

func (r *Repository) AddSprintMember(ctx context.Context, sprintID int64, kind models.EntityKind, itemID int64, addedBy string) (*models.SprintMembership, error) {
	return r.SprintRepo.AddMember(ctx, sprintID, kind, itemID, addedBy)
}

func (r *Repository) RemoveSprintMember(ctx context.Context, sprintID int64, kind models.EntityKind, itemID int64) error {
	return r.SprintRepo.RemoveMember(ctx, sprintID, kind, itemID)
}

func (r *Repository) ListSprintMembers(ctx context.Context, sprintID int64) ([]*models.SprintMembership, error) {
	return r.SprintRepo.ListMembers(ctx, sprintID)
}

func (r *Repository) GetSprintCapacity(ctx context.Context, sprintID int64) (*models.SprintCapacity, error) {
	return r.SprintRepo.GetCapacity(ctx, sprintID)
}

// Wrapper methods for SecurityLogRepo to satisfy DataStore
func (r *Repository) AppendSecurityEvent(ctx context.Context, event *models.SecurityEvent) (*models.SecurityEvent, error) {
	return r.SecurityLogRepo.Append(ctx, event)
}

func (r *Repository) ListSecurityEvents(ctx context.Context, filter models.SecurityEventFilter) ([]*models.SecurityEvent, error) {
	return r.SecurityLogRepo.List(ctx, filter)
}
