// Package backlog implements work-item operations: epics, stories, tasks,
// bugs, and the notes attached to them. Every operation here runs behind
// the access guard, so a caller can only ever touch its own project, and
// every update consults the conflict detector so concurrent edits surface
// as warnings instead of silent overwrites.
package backlog

import (
	"context"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/access"
	"github.com/mfigueroa/backlog/internal/services/conflict"
)

// Service defines all work-item business operations
type Service interface {
	// Epic operations
	CreateEpic(ctx context.Context, pctx *access.Context, req CreateEpicRequest) (*models.Epic, error)
	GetEpic(ctx context.Context, pctx *access.Context, epicID int64) (*models.Epic, error)
	ListEpics(ctx context.Context, pctx *access.Context, req ListEpicsRequest) ([]*models.Epic, error)
	UpdateEpic(ctx context.Context, pctx *access.Context, req UpdateEpicRequest) (*models.Epic, bool, error)
	DeleteEpic(ctx context.Context, pctx *access.Context, epicID int64) error

	// Story operations
	CreateStory(ctx context.Context, pctx *access.Context, req CreateStoryRequest) (*models.Story, error)
	GetStory(ctx context.Context, pctx *access.Context, storyID int64) (*models.Story, error)
	ListStories(ctx context.Context, pctx *access.Context, req ListStoriesRequest) ([]*models.Story, error)
	UpdateStory(ctx context.Context, pctx *access.Context, req UpdateStoryRequest) (*models.Story, bool, error)
	DeleteStory(ctx context.Context, pctx *access.Context, storyID int64) error

	// Task operations
	CreateTask(ctx context.Context, pctx *access.Context, req CreateTaskRequest) (*models.Task, error)
	GetTask(ctx context.Context, pctx *access.Context, taskID int64) (*models.Task, error)
	ListTasks(ctx context.Context, pctx *access.Context, req ListTasksRequest) ([]*models.Task, error)
	UpdateTask(ctx context.Context, pctx *access.Context, req UpdateTaskRequest) (*models.Task, bool, error)
	DeleteTask(ctx context.Context, pctx *access.Context, taskID int64) error

	// Bug operations
	CreateBug(ctx context.Context, pctx *access.Context, req CreateBugRequest) (*models.Bug, error)
	GetBug(ctx context.Context, pctx *access.Context, bugID int64) (*models.Bug, error)
	ListBugs(ctx context.Context, pctx *access.Context, req ListBugsRequest) ([]*models.Bug, error)
	UpdateBug(ctx context.Context, pctx *access.Context, req UpdateBugRequest) (*models.Bug, bool, error)
	DeleteBug(ctx context.Context, pctx *access.Context, bugID int64) error

	// Note operations
	AddNote(ctx context.Context, pctx *access.Context, req AddNoteRequest) (*models.Note, error)
	GetNote(ctx context.Context, pctx *access.Context, noteID int64) (*models.Note, error)
	ListNotes(ctx context.Context, pctx *access.Context, req ListNotesRequest) ([]*models.Note, error)
	UpdateNote(ctx context.Context, pctx *access.Context, noteID int64, body string) (*models.Note, error)
	DeleteNote(ctx context.Context, pctx *access.Context, noteID int64) error
}

// CreateEpicRequest encapsulates all data needed to create an epic
type CreateEpicRequest struct {
	Name        string
	Description string
	AssignedTo  string
}

// UpdateEpicRequest encapsulates a partial epic update. Nil fields are left
// untouched; a status change must be legal under the workflow allow-list.
type UpdateEpicRequest struct {
	EpicID      int64
	Name        *string
	Description *string
	Status      *models.Status
	AssignedTo  *string
}

// ListEpicsRequest narrows an epic listing within the context's project.
type ListEpicsRequest struct {
	Status     models.Status
	AssignedTo string
}

// CreateStoryRequest encapsulates all data needed to create a story. EpicID
// is optional: a nil value creates an orphan story that still belongs to
// the context's project. New stories always enter the workflow at todo.
type CreateStoryRequest struct {
	EpicID             *int64
	Title              string
	Description        string
	Priority           models.Priority // empty means medium
	Points             *int64
	AcceptanceCriteria string
	AssignedTo         string
}

// UpdateStoryRequest encapsulates a partial story update. EpicID and Points
// use NullableInt so detaching from an epic (or dropping an estimate) is an
// explicit clear rather than an omission.
type UpdateStoryRequest struct {
	StoryID            int64
	Title              *string
	Description        *string
	Status             *models.Status
	Priority           *models.Priority
	EpicID             models.NullableInt
	Points             models.NullableInt
	AcceptanceCriteria *string
	AssignedTo         *string
}

// ListStoriesRequest narrows a story listing within the context's project.
type ListStoriesRequest struct {
	EpicID          *int64
	Orphan          bool
	Status          models.Status
	Priority        models.Priority
	AssignedTo      string
	HasDependencies *bool
}

// CreateTaskRequest encapsulates all data needed to create a task under a
// story.
type CreateTaskRequest struct {
	StoryID     int64
	Title       string
	Description string
	TaskType    models.TaskType // empty means development
	Priority    models.Priority // empty means medium
	Points      *int64
	AssignedTo  string
}

// UpdateTaskRequest encapsulates a partial task update. Tasks never move
// between stories; there is no story field here on purpose.
type UpdateTaskRequest struct {
	TaskID      int64
	Title       *string
	Description *string
	TaskType    *models.TaskType
	Status      *models.Status
	Priority    *models.Priority
	Points      models.NullableInt
	AssignedTo  *string
}

// ListTasksRequest narrows a task listing within the context's project.
type ListTasksRequest struct {
	StoryID    *int64
	Status     models.Status
	Priority   models.Priority
	AssignedTo string
}

// CreateBugRequest encapsulates all data needed to file a bug. StoryID is
// optional and links the bug to the story it was found in.
type CreateBugRequest struct {
	StoryID     *int64
	Title       string
	Description string
	Priority    models.Priority // empty means medium
	Points      *int64
	AssignedTo  string
}

// UpdateBugRequest encapsulates a partial bug update. StoryID uses
// NullableInt so the story link can be cleared explicitly.
type UpdateBugRequest struct {
	BugID       int64
	Title       *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	StoryID     models.NullableInt
	Points      models.NullableInt
	AssignedTo  *string
}

// ListBugsRequest narrows a bug listing within the context's project.
type ListBugsRequest struct {
	StoryID    *int64
	Status     models.Status
	Priority   models.Priority
	AssignedTo string
}

// AddNoteRequest attaches a freeform note to an entity. The author is the
// context's acting identity, not a request field.
type AddNoteRequest struct {
	ParentKind models.EntityKind
	ParentID   int64
	Body       string
}

// ListNotesRequest narrows a note listing within the context's project.
type ListNotesRequest struct {
	ParentKind models.EntityKind
	ParentID   *int64
	Author     string
}

// service implements Service interface
type service struct {
	repo        database.DataStore
	guard       access.Service
	detector    conflict.Service
	eventClient events.EventPublisher
}

// NewService creates a new backlog service
func NewService(repo database.DataStore, guard access.Service, detector conflict.Service, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		guard:       guard,
		detector:    detector,
		eventClient: eventClient,
	}
}

// ============================================================================
// EPIC OPERATIONS
// ============================================================================

// CreateEpic creates an epic in the context's project.
func (s *service) CreateEpic(ctx context.Context, pctx *access.Context, req CreateEpicRequest) (*models.Epic, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Name == "" {
		return nil, ErrEmptyName
	}
	if len(req.Name) > 255 {
		return nil, ErrNameTooLong
	}

	epic, err := s.repo.CreateEpic(ctx, pctx.ProjectID, req.Name, req.Description, req.AssignedTo, pctx.Actor())
	if err != nil {
		return nil, fmt.Errorf("failed to create epic: %w", err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return epic, nil
}

// GetEpic retrieves one epic after the access check.
func (s *service) GetEpic(ctx context.Context, pctx *access.Context, epicID int64) (*models.Epic, error) {
	if epicID <= 0 {
		return nil, ErrInvalidEpicID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindEpic, epicID); err != nil {
		return nil, err
	}
	return s.repo.GetEpicByID(ctx, epicID)
}

// ListEpics returns the project's epics. The filter is pre-scoped to the
// context's project in SQL; there is nothing foreign to leak.
func (s *service) ListEpics(ctx context.Context, pctx *access.Context, req ListEpicsRequest) ([]*models.Epic, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}

	epics, err := s.repo.ListEpics(ctx, models.EpicFilter{
		ProjectID:  pctx.ProjectID,
		Status:     req.Status,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list epics: %w", err)
	}
	return epics, nil
}

// UpdateEpic applies a partial update. The boolean reports whether the epic
// was last touched by a different actor; the update persists either way.
func (s *service) UpdateEpic(ctx context.Context, pctx *access.Context, req UpdateEpicRequest) (*models.Epic, bool, error) {
	if req.EpicID <= 0 {
		return nil, false, ErrInvalidEpicID
	}
	if req.Name != nil && *req.Name == "" {
		return nil, false, ErrEmptyName
	}
	if req.Name != nil && len(*req.Name) > 255 {
		return nil, false, ErrNameTooLong
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindEpic, req.EpicID); err != nil {
		return nil, false, err
	}

	current, err := s.repo.GetEpicByID(ctx, req.EpicID)
	if err != nil {
		return nil, false, err
	}
	if req.Status != nil {
		if err := requireTransition(models.KindEpic, req.EpicID, current.Status, *req.Status); err != nil {
			return nil, false, err
		}
	}

	conflicted := s.detectConflict(ctx, pctx, models.KindEpic, req.EpicID)

	err = s.repo.UpdateEpic(ctx, req.EpicID, models.EpicPatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		AssignedTo:  req.AssignedTo,
	}, pctx.Actor())
	if err != nil {
		return nil, false, err
	}

	updated, err := s.repo.GetEpicByID(ctx, req.EpicID)
	if err != nil {
		return nil, false, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return updated, conflicted, nil
}

// DeleteEpic removes an epic. Its stories survive as orphans: the epic link
// clears but the stories keep their project.
func (s *service) DeleteEpic(ctx context.Context, pctx *access.Context, epicID int64) error {
	if epicID <= 0 {
		return ErrInvalidEpicID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindEpic, epicID); err != nil {
		return err
	}

	if err := s.repo.DeleteEpic(ctx, epicID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// ============================================================================
// STORY OPERATIONS
// ============================================================================

// CreateStory creates a story in the context's project, attached to an epic
// or orphaned. The project reference is taken from the context and never
// from the request, which is what keeps orphan stories isolated.
func (s *service) CreateStory(ctx context.Context, pctx *access.Context, req CreateStoryRequest) (*models.Story, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	priority, err := effectivePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	if err := validatePoints(req.Points); err != nil {
		return nil, err
	}
	if req.EpicID != nil {
		if *req.EpicID <= 0 {
			return nil, ErrInvalidEpicID
		}
		if err := s.guard.CheckAccess(ctx, pctx, models.KindEpic, *req.EpicID); err != nil {
			return nil, err
		}
	}

	story, err := s.repo.CreateStory(ctx, &models.Story{
		ProjectID:          pctx.ProjectID,
		EpicID:             req.EpicID,
		Title:              req.Title,
		Description:        req.Description,
		Status:             models.StatusTodo,
		Priority:           priority,
		Points:             req.Points,
		AcceptanceCriteria: req.AcceptanceCriteria,
		AssignedTo:         req.AssignedTo,
	}, pctx.Actor())
	if err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return story, nil
}

// GetStory retrieves one story after the access check.
func (s *service) GetStory(ctx context.Context, pctx *access.Context, storyID int64) (*models.Story, error) {
	if storyID <= 0 {
		return nil, ErrInvalidStoryID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, storyID); err != nil {
		return nil, err
	}
	return s.repo.GetStoryByID(ctx, storyID)
}

// ListStories returns the project's stories, orphans included.
func (s *service) ListStories(ctx context.Context, pctx *access.Context, req ListStoriesRequest) ([]*models.Story, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	if req.Priority != "" && !req.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, req.Priority)
	}

	stories, err := s.repo.ListStories(ctx, models.StoryFilter{
		ProjectID:       pctx.ProjectID,
		EpicID:          req.EpicID,
		Orphan:          req.Orphan,
		Status:          req.Status,
		Priority:        req.Priority,
		AssignedTo:      req.AssignedTo,
		HasDependencies: req.HasDependencies,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

// UpdateStory applies a partial update. Attaching to an epic passes the
// access check so a story can never end up under a foreign epic; the
// boolean reports whether someone else touched the story last.
func (s *service) UpdateStory(ctx context.Context, pctx *access.Context, req UpdateStoryRequest) (*models.Story, bool, error) {
	if req.StoryID <= 0 {
		return nil, false, ErrInvalidStoryID
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, false, err
		}
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidPriority, *req.Priority)
	}
	if req.Points.Set && req.Points.Valid && req.Points.Int64 < 0 {
		return nil, false, ErrNegativePoints
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, req.StoryID); err != nil {
		return nil, false, err
	}
	if req.EpicID.Set && req.EpicID.Valid {
		if err := s.guard.CheckAccess(ctx, pctx, models.KindEpic, req.EpicID.Int64); err != nil {
			return nil, false, err
		}
	}

	current, err := s.repo.GetStoryByID(ctx, req.StoryID)
	if err != nil {
		return nil, false, err
	}
	if req.Status != nil {
		if err := requireTransition(models.KindStory, req.StoryID, current.Status, *req.Status); err != nil {
			return nil, false, err
		}
	}

	conflicted := s.detectConflict(ctx, pctx, models.KindStory, req.StoryID)

	err = s.repo.UpdateStory(ctx, req.StoryID, models.StoryPatch{
		Title:              req.Title,
		Description:        req.Description,
		Status:             req.Status,
		Priority:           req.Priority,
		EpicID:             req.EpicID,
		Points:             req.Points,
		AcceptanceCriteria: req.AcceptanceCriteria,
		AssignedTo:         req.AssignedTo,
	}, pctx.Actor())
	if err != nil {
		return nil, false, err
	}

	updated, err := s.repo.GetStoryByID(ctx, req.StoryID)
	if err != nil {
		return nil, false, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return updated, conflicted, nil
}

// DeleteStory removes a story along with its tasks, dependency edges, and
// sprint memberships.
func (s *service) DeleteStory(ctx context.Context, pctx *access.Context, storyID int64) error {
	if storyID <= 0 {
		return ErrInvalidStoryID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, storyID); err != nil {
		return err
	}

	if err := s.repo.DeleteStory(ctx, storyID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// ============================================================================
// TASK OPERATIONS
// ============================================================================

// CreateTask creates a task under a story. The story must pass the access
// check: a task's project is its story's project, so this is the moment the
// ownership chain gets sealed.
func (s *service) CreateTask(ctx context.Context, pctx *access.Context, req CreateTaskRequest) (*models.Task, error) {
	if req.StoryID <= 0 {
		return nil, ErrInvalidStoryID
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	taskType := req.TaskType
	if taskType == "" {
		taskType = models.TaskTypeDevelopment
	}
	if !taskType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTaskType, taskType)
	}
	priority, err := effectivePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	if err := validatePoints(req.Points); err != nil {
		return nil, err
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, req.StoryID); err != nil {
		return nil, err
	}

	task, err := s.repo.CreateTask(ctx, &models.Task{
		StoryID:     req.StoryID,
		Title:       req.Title,
		Description: req.Description,
		TaskType:    taskType,
		Status:      models.StatusTodo,
		Priority:    priority,
		Points:      req.Points,
		AssignedTo:  req.AssignedTo,
	}, pctx.Actor())
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return task, nil
}

// GetTask retrieves one task after the access check, which resolves the
// task's project through its owning story.
func (s *service) GetTask(ctx context.Context, pctx *access.Context, taskID int64) (*models.Task, error) {
	if taskID <= 0 {
		return nil, ErrInvalidTaskID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindTask, taskID); err != nil {
		return nil, err
	}
	return s.repo.GetTaskByID(ctx, taskID)
}

// ListTasks returns the project's tasks, joined through their stories.
func (s *service) ListTasks(ctx context.Context, pctx *access.Context, req ListTasksRequest) ([]*models.Task, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	if req.Priority != "" && !req.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, req.Priority)
	}

	tasks, err := s.repo.ListTasks(ctx, models.TaskFilter{
		ProjectID:  pctx.ProjectID,
		StoryID:    req.StoryID,
		Status:     req.Status,
		Priority:   req.Priority,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies a partial update. The boolean reports whether someone
// else touched the task last.
func (s *service) UpdateTask(ctx context.Context, pctx *access.Context, req UpdateTaskRequest) (*models.Task, bool, error) {
	if req.TaskID <= 0 {
		return nil, false, ErrInvalidTaskID
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, false, err
		}
	}
	if req.TaskType != nil && !req.TaskType.IsValid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidTaskType, *req.TaskType)
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidPriority, *req.Priority)
	}
	if req.Points.Set && req.Points.Valid && req.Points.Int64 < 0 {
		return nil, false, ErrNegativePoints
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindTask, req.TaskID); err != nil {
		return nil, false, err
	}

	current, err := s.repo.GetTaskByID(ctx, req.TaskID)
	if err != nil {
		return nil, false, err
	}
	if req.Status != nil {
		if err := requireTransition(models.KindTask, req.TaskID, current.Status, *req.Status); err != nil {
			return nil, false, err
		}
	}

	conflicted := s.detectConflict(ctx, pctx, models.KindTask, req.TaskID)

	err = s.repo.UpdateTask(ctx, req.TaskID, models.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		TaskType:    req.TaskType,
		Status:      req.Status,
		Priority:    req.Priority,
		Points:      req.Points,
		AssignedTo:  req.AssignedTo,
	}, pctx.Actor())
	if err != nil {
		return nil, false, err
	}

	updated, err := s.repo.GetTaskByID(ctx, req.TaskID)
	if err != nil {
		return nil, false, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return updated, conflicted, nil
}

// DeleteTask removes a task.
func (s *service) DeleteTask(ctx context.Context, pctx *access.Context, taskID int64) error {
	if taskID <= 0 {
		return ErrInvalidTaskID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindTask, taskID); err != nil {
		return err
	}

	if err := s.repo.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// ============================================================================
// BUG OPERATIONS
// ============================================================================

// CreateBug files a bug in the context's project, optionally linked to the
// story it was found in.
func (s *service) CreateBug(ctx context.Context, pctx *access.Context, req CreateBugRequest) (*models.Bug, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	priority, err := effectivePriority(req.Priority)
	if err != nil {
		return nil, err
	}
	if err := validatePoints(req.Points); err != nil {
		return nil, err
	}
	if req.StoryID != nil {
		if *req.StoryID <= 0 {
			return nil, ErrInvalidStoryID
		}
		if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, *req.StoryID); err != nil {
			return nil, err
		}
	}

	bug, err := s.repo.CreateBug(ctx, &models.Bug{
		ProjectID:   pctx.ProjectID,
		StoryID:     req.StoryID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.StatusTodo,
		Priority:    priority,
		Points:      req.Points,
		AssignedTo:  req.AssignedTo,
	}, pctx.Actor())
	if err != nil {
		return nil, fmt.Errorf("failed to create bug: %w", err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return bug, nil
}

// GetBug retrieves one bug after the access check.
func (s *service) GetBug(ctx context.Context, pctx *access.Context, bugID int64) (*models.Bug, error) {
	if bugID <= 0 {
		return nil, ErrInvalidBugID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindBug, bugID); err != nil {
		return nil, err
	}
	return s.repo.GetBugByID(ctx, bugID)
}

// ListBugs returns the project's bugs.
func (s *service) ListBugs(ctx context.Context, pctx *access.Context, req ListBugsRequest) ([]*models.Bug, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Status != "" && !req.Status.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, req.Status)
	}
	if req.Priority != "" && !req.Priority.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPriority, req.Priority)
	}

	bugs, err := s.repo.ListBugs(ctx, models.BugFilter{
		ProjectID:  pctx.ProjectID,
		StoryID:    req.StoryID,
		Status:     req.Status,
		Priority:   req.Priority,
		AssignedTo: req.AssignedTo,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list bugs: %w", err)
	}
	return bugs, nil
}

// UpdateBug applies a partial update. Linking to a story passes the access
// check; the boolean reports whether someone else touched the bug last.
func (s *service) UpdateBug(ctx context.Context, pctx *access.Context, req UpdateBugRequest) (*models.Bug, bool, error) {
	if req.BugID <= 0 {
		return nil, false, ErrInvalidBugID
	}
	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, false, err
		}
	}
	if req.Priority != nil && !req.Priority.IsValid() {
		return nil, false, fmt.Errorf("%w: %q", ErrInvalidPriority, *req.Priority)
	}
	if req.Points.Set && req.Points.Valid && req.Points.Int64 < 0 {
		return nil, false, ErrNegativePoints
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindBug, req.BugID); err != nil {
		return nil, false, err
	}
	if req.StoryID.Set && req.StoryID.Valid {
		if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, req.StoryID.Int64); err != nil {
			return nil, false, err
		}
	}

	current, err := s.repo.GetBugByID(ctx, req.BugID)
	if err != nil {
		return nil, false, err
	}
	if req.Status != nil {
		if err := requireTransition(models.KindBug, req.BugID, current.Status, *req.Status); err != nil {
			return nil, false, err
		}
	}

	conflicted := s.detectConflict(ctx, pctx, models.KindBug, req.BugID)

	err = s.repo.UpdateBug(ctx, req.BugID, models.BugPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StoryID:     req.StoryID,
		Points:      req.Points,
		AssignedTo:  req.AssignedTo,
	}, pctx.Actor())
	if err != nil {
		return nil, false, err
	}

	updated, err := s.repo.GetBugByID(ctx, req.BugID)
	if err != nil {
		return nil, false, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return updated, conflicted, nil
}

// DeleteBug removes a bug.
func (s *service) DeleteBug(ctx context.Context, pctx *access.Context, bugID int64) error {
	if bugID <= 0 {
		return ErrInvalidBugID
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindBug, bugID); err != nil {
		return err
	}

	if err := s.repo.DeleteBug(ctx, bugID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// ============================================================================
// NOTE OPERATIONS
// ============================================================================

// AddNote attaches a note to an entity in the context's project. The parent
// carries the note's access story: the check here is what makes every later
// note operation safe to route through the parent.
func (s *service) AddNote(ctx context.Context, pctx *access.Context, req AddNoteRequest) (*models.Note, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if !req.ParentKind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNoteParent, req.ParentKind)
	}
	if req.ParentID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNoteParent, req.ParentID)
	}
	if req.Body == "" {
		return nil, ErrEmptyBody
	}
	if err := s.guard.CheckAccess(ctx, pctx, req.ParentKind, req.ParentID); err != nil {
		return nil, err
	}

	note, err := s.repo.CreateNote(ctx, &models.Note{
		ProjectID:  pctx.ProjectID,
		ParentKind: req.ParentKind,
		ParentID:   req.ParentID,
		Author:     pctx.Actor(),
		Body:       req.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return note, nil
}

// GetNote retrieves one note, guarded through its parent entity.
func (s *service) GetNote(ctx context.Context, pctx *access.Context, noteID int64) (*models.Note, error) {
	note, err := s.requireNote(ctx, pctx, noteID)
	if err != nil {
		return nil, err
	}
	return note, nil
}

// ListNotes returns the project's notes, optionally narrowed to one parent.
func (s *service) ListNotes(ctx context.Context, pctx *access.Context, req ListNotesRequest) ([]*models.Note, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.ParentKind != "" && !req.ParentKind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNoteParent, req.ParentKind)
	}

	notes, err := s.repo.ListNotes(ctx, models.NoteFilter{
		ProjectID:  pctx.ProjectID,
		ParentKind: req.ParentKind,
		ParentID:   req.ParentID,
		Author:     req.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// UpdateNote rewrites a note's body. Authorship does not change.
func (s *service) UpdateNote(ctx context.Context, pctx *access.Context, noteID int64, body string) (*models.Note, error) {
	if body == "" {
		return nil, ErrEmptyBody
	}
	if _, err := s.requireNote(ctx, pctx, noteID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateNote(ctx, noteID, body); err != nil {
		return nil, err
	}

	updated, err := s.repo.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return updated, nil
}

// DeleteNote removes a note.
func (s *service) DeleteNote(ctx context.Context, pctx *access.Context, noteID int64) error {
	if _, err := s.requireNote(ctx, pctx, noteID); err != nil {
		return err
	}

	if err := s.repo.DeleteNote(ctx, noteID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// requireNote loads a note and runs the access check against its parent.
// A note's project is fixed at creation to its parent's project, so the
// parent check is the note check.
func (s *service) requireNote(ctx context.Context, pctx *access.Context, noteID int64) (*models.Note, error) {
	if noteID <= 0 {
		return nil, ErrInvalidNoteID
	}
	if pctx == nil {
		return nil, access.ErrNoContext
	}

	note, err := s.repo.GetNoteByID(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.CheckAccess(ctx, pctx, note.ParentKind, note.ParentID); err != nil {
		return nil, err
	}
	return note, nil
}

// ============================================================================
// SHARED HELPERS
// ============================================================================

// requireTransition validates a workflow status change against the
// allow-list.
func requireTransition(kind models.EntityKind, id int64, from, to models.Status) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, to)
	}
	if !models.CanTransition(kind, from, to) {
		return fmt.Errorf("%s %d cannot move from %s to %s: %w", kind, id, from, to, models.ErrInvalidTransition)
	}
	return nil
}

// detectConflict asks the detector whether a different actor touched the
// entity last. The answer is advisory: a detector failure is logged and
// reported as no conflict, so a broken check can never block a write.
func (s *service) detectConflict(ctx context.Context, pctx *access.Context, kind models.EntityKind, id int64) bool {
	if s.detector == nil {
		return false
	}
	hit, err := s.detector.Detect(ctx, pctx, kind, id)
	if err != nil {
		log.Printf("Warning: conflict check for %s %d failed: %v", kind, id, err)
		return false
	}
	return hit
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > 255 {
		return ErrTitleTooLong
	}
	return nil
}

// effectivePriority fills the medium default and validates explicit values.
func effectivePriority(p models.Priority) (models.Priority, error) {
	if p == "" {
		return models.PriorityMedium, nil
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, p)
	}
	return p, nil
}

func validatePoints(points *int64) error {
	if points != nil && *points < 0 {
		return ErrNegativePoints
	}
	return nil
}

func (s *service) publishChangeEvent(projectID int64) {
	if s.eventClient == nil {
		return
	}
	if err := s.eventClient.SendEvent(events.Event{
		Type:      events.EventBacklogChanged,
		ProjectID: projectID,
	}); err != nil {
		log.Printf("Warning: failed to publish change event: %v", err)
	}
}
