package database

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/mfigueroa/backlog/internal/models"
	_ "modernc.org/sqlite"
)

// ============================================================================
// DATABASE SETUP HELPERS
// ============================================================================

// setupTestDB creates an in-memory database and runs migrations.
// This is the unified test database setup used by all tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	// Enable foreign key constraints
	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})

	return db
}

// setupTestDBFile creates a file-based database for testing persistence across restarts.
func setupTestDBFile(t *testing.T) (*sql.DB, string) {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "backlog-test-*.db")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	tmpfile.Close()

	db, err := sql.Open("sqlite", tmpfile.Name())
	if err != nil {
		os.Remove(tmpfile.Name())
		t.Fatalf("Failed to open test database: %v", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		db.Close()
		os.Remove(tmpfile.Name())
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := runMigrations(context.Background(), db); err != nil {
		db.Close()
		os.Remove(tmpfile.Name())
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	return db, tmpfile.Name()
}

// closeAndReopenDB simulates a process restart by closing and reopening the database.
func closeAndReopenDB(t *testing.T, db *sql.DB, dbPath string) *sql.DB {
	t.Helper()
	if err := db.Close(); err != nil {
		t.Fatalf("Failed to close database: %v", err)
	}

	newDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}

	_, err = newDB.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return newDB
}

// ============================================================================
// SEED HELPERS
// ============================================================================

func createTestProject(t *testing.T, repo *Repository, identifier string) *models.Project {
	t.Helper()
	project, err := repo.CreateProject(context.Background(), identifier, identifier, "")
	if err != nil {
		t.Fatalf("Failed to create project %s: %v", identifier, err)
	}
	return project
}

func createTestEpic(t *testing.T, repo *Repository, projectID int64, name string) *models.Epic {
	t.Helper()
	epic, err := repo.CreateEpic(context.Background(), projectID, name, "", "", "tester")
	if err != nil {
		t.Fatalf("Failed to create epic %s: %v", name, err)
	}
	return epic
}

func createTestStory(t *testing.T, repo *Repository, projectID int64, title string) *models.Story {
	t.Helper()
	story, err := repo.CreateStory(context.Background(), &models.Story{
		ProjectID: projectID,
		Title:     title,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
	}, "tester")
	if err != nil {
		t.Fatalf("Failed to create story %s: %v", title, err)
	}
	return story
}

func createTestStoryWithPoints(t *testing.T, repo *Repository, projectID int64, title string, points int64) *models.Story {
	t.Helper()
	story, err := repo.CreateStory(context.Background(), &models.Story{
		ProjectID: projectID,
		Title:     title,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
		Points:    &points,
	}, "tester")
	if err != nil {
		t.Fatalf("Failed to create story %s: %v", title, err)
	}
	return story
}

func createTestTask(t *testing.T, repo *Repository, storyID int64, title string) *models.Task {
	t.Helper()
	task, err := repo.CreateTask(context.Background(), &models.Task{
		StoryID:  storyID,
		Title:    title,
		TaskType: models.TaskTypeDevelopment,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
	}, "tester")
	if err != nil {
		t.Fatalf("Failed to create task %s: %v", title, err)
	}
	return task
}

func createTestBug(t *testing.T, repo *Repository, projectID int64, title string) *models.Bug {
	t.Helper()
	bug, err := repo.CreateBug(context.Background(), &models.Bug{
		ProjectID: projectID,
		Title:     title,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
	}, "tester")
	if err != nil {
		t.Fatalf("Failed to create bug %s: %v", title, err)
	}
	return bug
}

func createTestSprint(t *testing.T, repo *Repository, projectID int64, name string) *models.Sprint {
	t.Helper()
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	sprint, err := repo.CreateSprint(context.Background(), &models.Sprint{
		ProjectID: projectID,
		Name:      name,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 13),
	})
	if err != nil {
		t.Fatalf("Failed to create sprint %s: %v", name, err)
	}
	return sprint
}
