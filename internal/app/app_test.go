package app

import (
	"context"
	"testing"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/services/project"
)

func setupTestRepo(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return database.NewRepository(db)
}

func TestNew(t *testing.T) {
	app := New(setupTestRepo(t))

	if app == nil {
		t.Fatal("Expected app to be created, got nil")
	}

	if app.Projects == nil {
		t.Error("Expected Projects to be initialized")
	}
	if app.Access == nil {
		t.Error("Expected Access to be initialized")
	}
	if app.Graph == nil {
		t.Error("Expected Graph to be initialized")
	}
	if app.Conflict == nil {
		t.Error("Expected Conflict to be initialized")
	}
	if app.Sprints == nil {
		t.Error("Expected Sprints to be initialized")
	}
	if app.Backlog == nil {
		t.Error("Expected Backlog to be initialized")
	}
	if app.Repo() == nil {
		t.Error("Expected the repository handle to be exposed")
	}
}

func TestServicesShareOneStore(t *testing.T) {
	app := New(setupTestRepo(t))

	// A project registered through Projects must be resolvable through
	// Access, proving both services sit on the same store.
	registered, err := app.Projects.RegisterProject(context.Background(), project.RegisterProjectRequest{
		Identifier: "atlas",
		Name:       "Atlas",
	})
	if err != nil {
		t.Fatalf("RegisterProject failed: %v", err)
	}

	pctx, err := app.Access.ResolveContext(context.Background(), "atlas", "tester", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}
	if pctx.ProjectID != registered.ID {
		t.Errorf("Expected context for project %d, got %d", registered.ID, pctx.ProjectID)
	}
}

func TestClose(t *testing.T) {
	app := New(setupTestRepo(t))

	// Without an event client Close has nothing to release.
	if err := app.Close(); err != nil {
		t.Errorf("Expected Close to succeed, got error: %v", err)
	}
}
