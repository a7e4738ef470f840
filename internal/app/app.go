package app

import (
	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/services/access"
	"github.com/mfigueroa/backlog/internal/services/backlog"
	"github.com/mfigueroa/backlog/internal/services/conflict"
	"github.com/mfigueroa/backlog/internal/services/graph"
	"github.com/mfigueroa/backlog/internal/services/project"
	"github.com/mfigueroa/backlog/internal/services/sprint"
)

// App holds all application services and provides dependency injection.
// This is the main application container that manages service lifecycles.
type App struct {
	// Repository layer (direct database access)
	repo database.DataStore

	// Event system for live updates
	eventClient events.EventPublisher

	// Service layer (business logic)
	Projects project.Service
	Access   access.Service
	Graph    graph.Service
	Conflict conflict.Service
	Sprints  sprint.Service
	Backlog  backlog.Service
}

// New creates a new App with all services initialized.
// This is the single entry point for creating the application container.
func New(repo database.DataStore, opts ...Option) *App {
	cfg := &appConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	guard := access.NewService(repo, cfg.eventClient)
	detector := conflict.NewService(repo, cfg.eventClient)

	return &App{
		repo:        repo,
		eventClient: cfg.eventClient,
		Projects:    project.NewService(repo, cfg.eventClient),
		Access:      guard,
		Graph:       graph.NewService(repo, guard, cfg.eventClient),
		Conflict:    detector,
		Sprints:     sprint.NewService(repo, guard, cfg.eventClient),
		Backlog:     backlog.NewService(repo, guard, detector, cfg.eventClient),
	}
}

// Repo returns the underlying repository for direct database access.
// Reads that bypass business rules (health checks, test setup) live here;
// everything else should go through a service.
func (a *App) Repo() database.DataStore {
	return a.repo
}

// Close performs cleanup of application resources.
func (a *App) Close() error {
	if a.eventClient != nil {
		return a.eventClient.Close()
	}
	return nil
}
