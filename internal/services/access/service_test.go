package access

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/models"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

// setupTestService opens an in-memory database with the full schema and
// wires a service against it with no event client.
func setupTestService(t *testing.T) (Service, *database.Repository) {
	t.Helper()
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := database.NewRepository(db)
	return NewService(repo, nil), repo
}

func registerTestProject(t *testing.T, repo *database.Repository, identifier string) *models.Project {
	t.Helper()
	project, err := repo.CreateProject(context.Background(), identifier, identifier+" project", "")
	if err != nil {
		t.Fatalf("Failed to create project %q: %v", identifier, err)
	}
	return project
}

func createTestStory(t *testing.T, repo *database.Repository, projectID int64, title string) *models.Story {
	t.Helper()
	story, err := repo.CreateStory(context.Background(), &models.Story{
		ProjectID: projectID,
		Title:     title,
		Status:    models.StatusTodo,
		Priority:  models.PriorityMedium,
	}, "tester")
	if err != nil {
		t.Fatalf("Failed to create story %q: %v", title, err)
	}
	return story
}

func securityRows(t *testing.T, repo *database.Repository, eventType models.SecurityEventType) []*models.SecurityEvent {
	t.Helper()
	rows, err := repo.ListSecurityEvents(context.Background(), models.SecurityEventFilter{EventType: eventType})
	if err != nil {
		t.Fatalf("Failed to list security events: %v", err)
	}
	return rows
}

// ============================================================================
// RESOLVE CONTEXT
// ============================================================================

func TestResolveContext(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	project := registerTestProject(t, repo, "atlas")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "alice", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	if pctx.ProjectID != project.ID {
		t.Errorf("Expected project ID %d, got %d", project.ID, pctx.ProjectID)
	}
	if pctx.Identifier != "atlas" {
		t.Errorf("Expected identifier 'atlas', got %q", pctx.Identifier)
	}
	if pctx.ProjectName != "atlas project" {
		t.Errorf("Expected project name 'atlas project', got %q", pctx.ProjectName)
	}
	if pctx.Caller != "alice" {
		t.Errorf("Expected caller 'alice', got %q", pctx.Caller)
	}
	if pctx.Actor() != "alice" {
		t.Errorf("Expected actor 'alice', got %q", pctx.Actor())
	}
}

func TestResolveContext_BumpsLastAccessed(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	project := registerTestProject(t, repo, "atlas")

	if project.LastAccessedAt != nil {
		t.Fatal("Expected fresh project to have no last-accessed time")
	}

	if _, err := svc.ResolveContext(context.Background(), "atlas", "alice", ""); err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	touched, err := repo.GetProjectByID(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("Failed to re-read project: %v", err)
	}
	if touched.LastAccessedAt == nil {
		t.Error("Expected last-accessed time to be set after resolve")
	}
}

func TestResolveContext_UnknownIdentifier(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")

	_, err := svc.ResolveContext(context.Background(), "phantom", "mallory", "")
	if err == nil {
		t.Fatal("Expected error for unregistered identifier")
	}
	if !errors.Is(err, ErrProjectNotRegistered) {
		t.Errorf("Expected ErrProjectNotRegistered, got %v", err)
	}

	rows := securityRows(t, repo, models.EventUnauthorizedAccess)
	if len(rows) != 1 {
		t.Fatalf("Expected exactly 1 unauthorized_access row, got %d", len(rows))
	}
	row := rows[0]
	if row.Actor != "mallory" {
		t.Errorf("Expected actor 'mallory', got %q", row.Actor)
	}
	if row.ProjectID != nil {
		t.Errorf("Expected nil project ID for unregistered identifier, got %v", *row.ProjectID)
	}
	if row.Message == "" {
		t.Error("Expected a descriptive message on the audit row")
	}
}

func TestResolveContext_EmptyIdentifier(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	_, err := svc.ResolveContext(context.Background(), "", "alice", "")
	if !errors.Is(err, ErrEmptyIdentifier) {
		t.Errorf("Expected ErrEmptyIdentifier, got %v", err)
	}
}

func TestResolveContext_EmptyCaller(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	_, err := svc.ResolveContext(context.Background(), "atlas", "", "")
	if !errors.Is(err, ErrEmptyCaller) {
		t.Errorf("Expected ErrEmptyCaller, got %v", err)
	}
}

func TestResolveContext_ActingAs(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "ci-bot", "alice")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}
	if pctx.Caller != "ci-bot" {
		t.Errorf("Expected caller 'ci-bot', got %q", pctx.Caller)
	}
	if pctx.Actor() != "alice" {
		t.Errorf("Expected delegated actor 'alice', got %q", pctx.Actor())
	}
}

func TestResolveContext_ActingAsRecordedOnMiss(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)

	_, err := svc.ResolveContext(context.Background(), "phantom", "ci-bot", "alice")
	if !errors.Is(err, ErrProjectNotRegistered) {
		t.Fatalf("Expected ErrProjectNotRegistered, got %v", err)
	}

	rows := securityRows(t, repo, models.EventUnauthorizedAccess)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 unauthorized_access row, got %d", len(rows))
	}
	if rows[0].Actor != "alice" {
		t.Errorf("Expected the delegated identity 'alice' on the audit row, got %q", rows[0].Actor)
	}
}

// ============================================================================
// CHECK ACCESS
// ============================================================================

func TestCheckAccess_SameProject(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "alice", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}
	story := createTestStory(t, repo, pctx.ProjectID, "In scope")

	if err := svc.CheckAccess(context.Background(), pctx, models.KindStory, story.ID); err != nil {
		t.Errorf("Expected access to in-project story, got %v", err)
	}

	if rows := securityRows(t, repo, models.EventProjectViolation); len(rows) != 0 {
		t.Errorf("Expected no violation rows after a clean check, got %d", len(rows))
	}
}

func TestCheckAccess_CrossProject(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")
	other := registerTestProject(t, repo, "zephyr")
	foreign := createTestStory(t, repo, other.ID, "Out of scope")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "mallory", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	err = svc.CheckAccess(context.Background(), pctx, models.KindStory, foreign.ID)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}

	rows := securityRows(t, repo, models.EventProjectViolation)
	if len(rows) != 1 {
		t.Fatalf("Expected exactly 1 project_violation row, got %d", len(rows))
	}
	row := rows[0]
	if row.Actor != "mallory" {
		t.Errorf("Expected actor 'mallory', got %q", row.Actor)
	}
	if row.ProjectID == nil || *row.ProjectID != pctx.ProjectID {
		t.Errorf("Expected caller project %d on the row, got %v", pctx.ProjectID, row.ProjectID)
	}
	if row.TargetProjectID == nil || *row.TargetProjectID != other.ID {
		t.Errorf("Expected owning project %d on the row, got %v", other.ID, row.TargetProjectID)
	}
	if row.EntityKind != models.KindStory {
		t.Errorf("Expected entity kind story, got %q", row.EntityKind)
	}
	if row.EntityID == nil || *row.EntityID != foreign.ID {
		t.Errorf("Expected entity ID %d, got %v", foreign.ID, row.EntityID)
	}
}

func TestCheckAccess_EachDenialAppendsOneRow(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")
	other := registerTestProject(t, repo, "zephyr")
	foreign := createTestStory(t, repo, other.ID, "Out of scope")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "mallory", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.CheckAccess(context.Background(), pctx, models.KindStory, foreign.ID); !errors.Is(err, ErrAccessDenied) {
			t.Fatalf("Attempt %d: expected ErrAccessDenied, got %v", i+1, err)
		}
	}

	rows := securityRows(t, repo, models.EventProjectViolation)
	if len(rows) != 3 {
		t.Errorf("Expected 3 violation rows for 3 denials, got %d", len(rows))
	}
}

func TestCheckAccess_ProjectOwnsItself(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	own := registerTestProject(t, repo, "atlas")
	other := registerTestProject(t, repo, "zephyr")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "alice", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	if err := svc.CheckAccess(context.Background(), pctx, models.KindProject, own.ID); err != nil {
		t.Errorf("Expected own project to pass, got %v", err)
	}

	// A project entity owns itself, so pointing at another project is a
	// violation like pointing at its stories would be.
	err = svc.CheckAccess(context.Background(), pctx, models.KindProject, other.ID)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for a foreign project id, got %v", err)
	}

	rows := securityRows(t, repo, models.EventProjectViolation)
	if len(rows) != 1 {
		t.Fatalf("Expected exactly 1 violation row, got %d", len(rows))
	}
}

func TestCheckAccess_TaskResolvesThroughStory(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")
	other := registerTestProject(t, repo, "zephyr")
	foreignStory := createTestStory(t, repo, other.ID, "Foreign story")

	task, err := repo.CreateTask(context.Background(), &models.Task{
		StoryID:  foreignStory.ID,
		Title:    "Foreign task",
		TaskType: models.TaskTypeDevelopment,
		Status:   models.StatusTodo,
		Priority: models.PriorityMedium,
	}, "tester")
	if err != nil {
		t.Fatalf("Failed to create task: %v", err)
	}

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "mallory", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	err = svc.CheckAccess(context.Background(), pctx, models.KindTask, task.ID)
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Expected ErrAccessDenied for task owned through a foreign story, got %v", err)
	}
}

func TestCheckAccess_UnknownEntity(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "alice", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	err = svc.CheckAccess(context.Background(), pctx, models.KindStory, 99999)
	if err == nil {
		t.Fatal("Expected error for nonexistent entity")
	}
	if errors.Is(err, ErrAccessDenied) {
		t.Error("A missing entity is not a violation; expected a not-found error")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("Expected sql.ErrNoRows in chain, got %v", err)
	}

	if rows := securityRows(t, repo, models.EventProjectViolation); len(rows) != 0 {
		t.Errorf("Expected no violation rows for a missing entity, got %d", len(rows))
	}
}

func TestCheckAccess_NilContext(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	err := svc.CheckAccess(context.Background(), nil, models.KindStory, 1)
	if !errors.Is(err, ErrNoContext) {
		t.Errorf("Expected ErrNoContext, got %v", err)
	}
}

func TestCheckAccess_InvalidKind(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")

	pctx, err := svc.ResolveContext(context.Background(), "atlas", "alice", "")
	if err != nil {
		t.Fatalf("ResolveContext failed: %v", err)
	}

	err = svc.CheckAccess(context.Background(), pctx, models.EntityKind("widget"), 1)
	if !errors.Is(err, ErrInvalidEntityKind) {
		t.Errorf("Expected ErrInvalidEntityKind, got %v", err)
	}
}

// ============================================================================
// SECURITY LOG READS
// ============================================================================

func TestListSecurityEvents_FilterByActor(t *testing.T) {
	t.Parallel()

	svc, repo := setupTestService(t)
	registerTestProject(t, repo, "atlas")

	_, _ = svc.ResolveContext(context.Background(), "phantom", "mallory", "")
	_, _ = svc.ResolveContext(context.Background(), "ghost", "eve", "")

	rows, err := svc.ListSecurityEvents(context.Background(), models.SecurityEventFilter{Actor: "eve"})
	if err != nil {
		t.Fatalf("ListSecurityEvents failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row for actor 'eve', got %d", len(rows))
	}
	if rows[0].Actor != "eve" {
		t.Errorf("Expected actor 'eve', got %q", rows[0].Actor)
	}
}

func TestListSecurityEvents_InvalidType(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	_, err := svc.ListSecurityEvents(context.Background(), models.SecurityEventFilter{
		EventType: models.SecurityEventType("exfiltration"),
	})
	if err == nil {
		t.Error("Expected error for unknown event type filter")
	}
}

func TestListSecurityEvents_NewestFirst(t *testing.T) {
	t.Parallel()

	svc, _ := setupTestService(t)

	for _, actor := range []string{"first", "second", "third"} {
		_, _ = svc.ResolveContext(context.Background(), "phantom", actor, "")
	}

	rows, err := svc.ListSecurityEvents(context.Background(), models.SecurityEventFilter{})
	if err != nil {
		t.Fatalf("ListSecurityEvents failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].Actor != "third" || rows[2].Actor != "first" {
		t.Errorf("Expected newest-first ordering, got %q, %q, %q",
			rows[0].Actor, rows[1].Actor, rows[2].Actor)
	}
}
