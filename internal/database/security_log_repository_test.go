package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/mfigueroa/backlog/internal/models"
)

func TestSecurityLogRepo_AppendAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	other := createTestProject(t, repo, "beta")

	storyID := int64(42)
	event, err := repo.AppendSecurityEvent(ctx, &models.SecurityEvent{
		EventType:       models.EventProjectViolation,
		Actor:           "mallory",
		ProjectID:       &project.ID,
		TargetProjectID: &other.ID,
		EntityKind:      models.KindStory,
		EntityID:        &storyID,
		Message:         "story belongs to a different project",
	})
	if err != nil {
		t.Fatalf("Failed to append event: %v", err)
	}
	if event.ID == 0 {
		t.Error("Expected event ID to be set")
	}
	if event.CreatedAt.IsZero() {
		t.Error("Expected created_at to be set")
	}

	events, err := repo.ListSecurityEvents(ctx, models.SecurityEventFilter{})
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	got := events[0]
	if got.EventType != models.EventProjectViolation {
		t.Errorf("Expected project_violation, got %s", got.EventType)
	}
	if got.Actor != "mallory" {
		t.Errorf("Expected actor 'mallory', got '%s'", got.Actor)
	}
	if got.TargetProjectID == nil || *got.TargetProjectID != other.ID {
		t.Error("Expected target project to round-trip")
	}
}

func TestSecurityLogRepo_FilterByTypeAndActor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")

	seed := []struct {
		eventType models.SecurityEventType
		actor     string
	}{
		{models.EventUnauthorizedAccess, "mallory"},
		{models.EventProjectViolation, "mallory"},
		{models.EventConflictDetected, "alice"},
		{models.EventProjectViolation, "alice"},
	}
	for i, s := range seed {
		_, err := repo.AppendSecurityEvent(ctx, &models.SecurityEvent{
			EventType: s.eventType,
			Actor:     s.actor,
			ProjectID: &project.ID,
			Message:   fmt.Sprintf("event %d", i),
		})
		if err != nil {
			t.Fatalf("Failed to append event %d: %v", i, err)
		}
	}

	violations, err := repo.ListSecurityEvents(ctx, models.SecurityEventFilter{
		EventType: models.EventProjectViolation,
	})
	if err != nil {
		t.Fatalf("Failed to filter by type: %v", err)
	}
	if len(violations) != 2 {
		t.Errorf("Expected 2 violations, got %d", len(violations))
	}

	mallory, err := repo.ListSecurityEvents(ctx, models.SecurityEventFilter{Actor: "mallory"})
	if err != nil {
		t.Fatalf("Failed to filter by actor: %v", err)
	}
	if len(mallory) != 2 {
		t.Errorf("Expected 2 events for mallory, got %d", len(mallory))
	}

	both, err := repo.ListSecurityEvents(ctx, models.SecurityEventFilter{
		EventType: models.EventProjectViolation,
		Actor:     "mallory",
	})
	if err != nil {
		t.Fatalf("Failed to filter by type and actor: %v", err)
	}
	if len(both) != 1 {
		t.Errorf("Expected 1 event for mallory violations, got %d", len(both))
	}
}

func TestSecurityLogRepo_LimitReturnsNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := repo.AppendSecurityEvent(ctx, &models.SecurityEvent{
			EventType: models.EventUnauthorizedAccess,
			Actor:     "mallory",
			Message:   fmt.Sprintf("attempt %d", i),
		})
		if err != nil {
			t.Fatalf("Failed to append event %d: %v", i, err)
		}
	}

	events, err := repo.ListSecurityEvents(ctx, models.SecurityEventFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Message != "attempt 4" {
		t.Errorf("Expected newest event first, got '%s'", events[0].Message)
	}
	if events[1].Message != "attempt 3" {
		t.Errorf("Expected second newest next, got '%s'", events[1].Message)
	}
}

func TestSecurityLogRepo_SurvivesProjectDeletion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	_, err := repo.AppendSecurityEvent(ctx, &models.SecurityEvent{
		EventType: models.EventUnauthorizedAccess,
		Actor:     "mallory",
		ProjectID: &project.ID,
		Message:   "denied",
	})
	if err != nil {
		t.Fatalf("Failed to append event: %v", err)
	}

	if err := repo.DeleteProject(ctx, project.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	events, err := repo.ListSecurityEvents(ctx, models.SecurityEventFilter{})
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected audit trail to survive project deletion, got %d events", len(events))
	}
	if events[0].ProjectID == nil || *events[0].ProjectID != project.ID {
		t.Error("Expected recorded project id to remain")
	}
}
