package project

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/access"
)

// Service defines project registration and lifecycle operations
type Service interface {
	// Unscoped operations: the entry points that exist before any project
	// context can be resolved.
	RegisterProject(ctx context.Context, req RegisterProjectRequest) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)

	// Scoped operations
	GetProject(ctx context.Context, pctx *access.Context) (*Detail, error)
	UpdateProject(ctx context.Context, pctx *access.Context, req UpdateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, pctx *access.Context) error
}

// RegisterProjectRequest encapsulates all data needed to register a project.
// Name defaults to the identifier when empty.
type RegisterProjectRequest struct {
	Identifier  string
	Name        string
	Description string
}

// UpdateProjectRequest encapsulates a partial project update. The identifier
// is immutable and deliberately absent. Nil fields are left untouched.
type UpdateProjectRequest struct {
	Name        *string
	Description *string
}

// Detail bundles a project with its per-entity totals.
type Detail struct {
	Project *models.Project
	Counts  *database.ProjectCounts
}

// service implements Service interface
type service struct {
	repo        database.DataStore
	eventClient events.EventPublisher
}

// NewService creates a new project service
func NewService(repo database.DataStore, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		eventClient: eventClient,
	}
}

// RegisterProject creates a new project root. This is the one write that
// needs no context: a project must exist before contexts against it can.
func (s *service) RegisterProject(ctx context.Context, req RegisterProjectRequest) (*models.Project, error) {
	if err := validateIdentifier(req.Identifier); err != nil {
		return nil, err
	}
	name := req.Name
	if name == "" {
		name = req.Identifier
	}
	if len(name) > 255 {
		return nil, ErrNameTooLong
	}

	// The unique index on identifier backs this check; looking first gives
	// callers a typed error instead of a raw constraint failure.
	_, err := s.repo.GetProjectByIdentifier(ctx, req.Identifier)
	if err == nil {
		return nil, fmt.Errorf("identifier %q: %w", req.Identifier, ErrIdentifierTaken)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check identifier %q: %w", req.Identifier, err)
	}

	project, err := s.repo.CreateProject(ctx, req.Identifier, name, req.Description)
	if err != nil {
		return nil, fmt.Errorf("failed to register project %q: %w", req.Identifier, err)
	}

	s.publishChangeEvent(project.ID)
	return project, nil
}

// ListProjects returns every registered project. Listing is unscoped so
// callers can discover which identifiers exist.
func (s *service) ListProjects(ctx context.Context) ([]*models.Project, error) {
	projects, err := s.repo.GetAllProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns the context's project with its entity totals.
func (s *service) GetProject(ctx context.Context, pctx *access.Context) (*Detail, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}

	project, err := s.repo.GetProjectByID(ctx, pctx.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", pctx.ProjectID, err)
	}
	counts, err := s.repo.GetProjectCounts(ctx, pctx.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get counts for project %d: %w", pctx.ProjectID, err)
	}

	return &Detail{Project: project, Counts: counts}, nil
}

// UpdateProject changes the project's name or description. The identifier
// never changes once registered.
func (s *service) UpdateProject(ctx context.Context, pctx *access.Context, req UpdateProjectRequest) (*models.Project, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.Name != nil && len(*req.Name) > 255 {
		return nil, ErrNameTooLong
	}

	current, err := s.repo.GetProjectByID(ctx, pctx.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project %d: %w", pctx.ProjectID, err)
	}

	name := current.Name
	if req.Name != nil && *req.Name != "" {
		name = *req.Name
	}
	description := current.Description
	if req.Description != nil {
		description = *req.Description
	}

	if err := s.repo.UpdateProject(ctx, pctx.ProjectID, name, description); err != nil {
		return nil, fmt.Errorf("failed to update project %d: %w", pctx.ProjectID, err)
	}

	updated, err := s.repo.GetProjectByID(ctx, pctx.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read project %d: %w", pctx.ProjectID, err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return updated, nil
}

// DeleteProject removes the project and everything under it: epics,
// stories, tasks, bugs, notes, edges, sprints, and sprint history all
// cascade. Security log rows survive the delete.
func (s *service) DeleteProject(ctx context.Context, pctx *access.Context) error {
	if pctx == nil {
		return access.ErrNoContext
	}

	if err := s.repo.DeleteProject(ctx, pctx.ProjectID); err != nil {
		return fmt.Errorf("failed to delete project %d: %w", pctx.ProjectID, err)
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// validateIdentifier enforces the slug shape: lowercase alphanumerics with
// interior hyphens or underscores, at most 64 characters.
func validateIdentifier(identifier string) error {
	if identifier == "" {
		return ErrEmptyIdentifier
	}
	if len(identifier) > 64 {
		return ErrIdentifierTooLong
	}
	for i, r := range identifier {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
			if i == 0 {
				return ErrInvalidIdentifier
			}
		default:
			return ErrInvalidIdentifier
		}
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
