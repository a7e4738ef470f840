package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func TestProjectRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "alpha", "Alpha", "first project")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	if project.ID == 0 {
		t.Error("Expected project to have an ID")
	}
	if project.Identifier != "alpha" {
		t.Errorf("Expected identifier 'alpha', got '%s'", project.Identifier)
	}
	if project.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}
	if project.LastAccessedAt != nil {
		t.Error("Expected last_accessed_at to start unset")
	}

	byIdent, err := repo.GetProjectByIdentifier(ctx, "alpha")
	if err != nil {
		t.Fatalf("Failed to get project by identifier: %v", err)
	}
	if byIdent.ID != project.ID {
		t.Errorf("Expected project %d, got %d", project.ID, byIdent.ID)
	}
}

func TestProjectRepo_IdentifierUnique(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	createTestProject(t, repo, "alpha")
	if _, err := repo.CreateProject(ctx, "alpha", "Duplicate", ""); err == nil {
		t.Error("Expected duplicate identifier to fail")
	}
}

func TestProjectRepo_GetUnknownIdentifier(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	_, err := repo.GetProjectByIdentifier(context.Background(), "ghost")
	if err == nil {
		t.Fatal("Expected error for unknown identifier")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows in chain, got %v", err)
	}
}

func TestProjectRepo_TouchLastAccessed(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	if err := repo.TouchProject(ctx, project.ID); err != nil {
		t.Fatalf("Failed to touch project: %v", err)
	}

	touched, err := repo.GetProjectByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("Failed to get project: %v", err)
	}
	if touched.LastAccessedAt == nil {
		t.Error("Expected last_accessed_at to be set after touch")
	}
}

func TestProjectRepo_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	epic := createTestEpic(t, repo, project.ID, "Epic One")
	story := createTestStory(t, repo, project.ID, "Story One")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")

	if err := repo.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	if _, err := repo.GetEpicByID(ctx, epic.ID); err == nil {
		t.Error("Expected epic to be cascade-deleted")
	}
	if _, err := repo.GetStoryByID(ctx, story.ID); err == nil {
		t.Error("Expected story to be cascade-deleted")
	}
	if _, err := repo.GetSprintByID(ctx, sprint.ID); err == nil {
		t.Error("Expected sprint to be cascade-deleted")
	}
}

func TestProjectRepo_DeleteUnknown(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	err := repo.DeleteProject(context.Background(), 9999)
	if err == nil {
		t.Fatal("Expected error deleting unknown project")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows in chain, got %v", err)
	}
}

func TestProjectRepo_GetCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	other := createTestProject(t, repo, "beta")

	createTestEpic(t, repo, project.ID, "Epic One")
	story := createTestStory(t, repo, project.ID, "Story One")
	createTestStory(t, repo, other.ID, "Other Story")

	createTestTask(t, repo, story.ID, "Task One")

	counts, err := repo.GetProjectCounts(ctx, project.ID)
	if err != nil {
		t.Fatalf("Failed to get counts: %v", err)
	}
	if counts.Epics != 1 || counts.Stories != 1 || counts.Tasks != 1 {
		t.Errorf("Expected counts 1/1/1, got %d/%d/%d", counts.Epics, counts.Stories, counts.Tasks)
	}
	if counts.Bugs != 0 || counts.Sprints != 0 {
		t.Errorf("Expected zero bugs and sprints, got %d/%d", counts.Bugs, counts.Sprints)
	}
}
