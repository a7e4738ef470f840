package database

import (
	"context"
	"errors"
	"testing"

	"github.com/mfigueroa/backlog/internal/models"
)

func TestSprintRepo_CreateStartsInPlanning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")

	if sprint.Status != models.SprintPlanning {
		t.Errorf("Expected new sprint in planning, got %s", sprint.Status)
	}
	if sprint.CapacityPoints != nil {
		t.Error("Expected no capacity estimate by default")
	}
}

func TestSprintRepo_DeleteOnlyInPlanning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")

	if _, err := repo.StartSprint(ctx, sprint.ID); err != nil {
		t.Fatalf("Failed to start sprint: %v", err)
	}

	err := repo.DeleteSprint(ctx, sprint.ID)
	if err == nil {
		t.Fatal("Expected delete of active sprint to fail")
	}
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}

	// Still there
	if _, err := repo.GetSprintByID(ctx, sprint.ID); err != nil {
		t.Fatalf("Expected sprint to survive failed delete: %v", err)
	}

	planning := createTestSprint(t, repo, project.ID, "Sprint 2")
	if err := repo.DeleteSprint(ctx, planning.ID); err != nil {
		t.Fatalf("Expected planning sprint delete to succeed: %v", err)
	}
}

func TestSprintRepo_StartRequiresPlanning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")

	if _, err := repo.StartSprint(ctx, sprint.ID); err != nil {
		t.Fatalf("Failed to start sprint: %v", err)
	}

	_, err := repo.StartSprint(ctx, sprint.ID)
	if err == nil {
		t.Fatal("Expected double start to fail")
	}
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestSprintRepo_CancelOnlyFromPlanning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")

	if err := repo.CancelSprint(ctx, sprint.ID); err != nil {
		t.Fatalf("Failed to cancel planning sprint: %v", err)
	}

	got, err := repo.GetSprintByID(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to get sprint: %v", err)
	}
	if got.Status != models.SprintCancelled {
		t.Errorf("Expected cancelled status, got %s", got.Status)
	}

	// Cancelled is terminal
	if _, err := repo.StartSprint(ctx, sprint.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected starting a cancelled sprint to fail, got %v", err)
	}

	active := createTestSprint(t, repo, project.ID, "Sprint 2")
	if _, err := repo.StartSprint(ctx, active.ID); err != nil {
		t.Fatalf("Failed to start sprint: %v", err)
	}
	if err := repo.CancelSprint(ctx, active.ID); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected cancelling an active sprint to fail, got %v", err)
	}
}

func TestSprintRepo_MembershipUniquePerItem(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")
	story := createTestStory(t, repo, project.ID, "Story One")

	if _, err := repo.AddSprintMember(ctx, sprint.ID, models.KindStory, story.ID, "tester"); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	if _, err := repo.AddSprintMember(ctx, sprint.ID, models.KindStory, story.ID, "tester"); err == nil {
		t.Error("Expected duplicate membership to fail")
	}

	members, err := repo.ListSprintMembers(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to list members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("Expected 1 member, got %d", len(members))
	}
	if members[0].AddedBy != "tester" {
		t.Errorf("Expected added_by 'tester', got '%s'", members[0].AddedBy)
	}
}

func TestSprintRepo_CapacityTreatsMissingPointsAsZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")

	estimated := createTestStoryWithPoints(t, repo, project.ID, "Ten", 10)
	done := createTestStoryWithPoints(t, repo, project.ID, "Five", 5)
	unestimated := createTestStory(t, repo, project.ID, "Mystery")

	for _, id := range []int64{estimated.ID, done.ID, unestimated.ID} {
		if _, err := repo.AddSprintMember(ctx, sprint.ID, models.KindStory, id, "tester"); err != nil {
			t.Fatalf("Failed to add member %d: %v", id, err)
		}
	}

	statusDone := models.StatusDone
	inProgress := models.StatusInProgress
	if err := repo.UpdateStory(ctx, done.ID, models.StoryPatch{Status: &inProgress}, "tester"); err != nil {
		t.Fatalf("Failed to start story: %v", err)
	}
	if err := repo.UpdateStory(ctx, done.ID, models.StoryPatch{Status: &statusDone}, "tester"); err != nil {
		t.Fatalf("Failed to finish story: %v", err)
	}

	capacity, err := repo.GetSprintCapacity(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to get capacity: %v", err)
	}
	if capacity.Committed != 15 {
		t.Errorf("Expected committed 15, got %d", capacity.Committed)
	}
	if capacity.Completed != 5 {
		t.Errorf("Expected completed 5, got %d", capacity.Completed)
	}
	if capacity.Remaining != 10 {
		t.Errorf("Expected remaining 10, got %d", capacity.Remaining)
	}
}

func TestSprintRepo_StartTakesInitialSnapshot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")
	story := createTestStoryWithPoints(t, repo, project.ID, "Eight", 8)

	if _, err := repo.AddSprintMember(ctx, sprint.ID, models.KindStory, story.ID, "tester"); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}

	snapshot, err := repo.StartSprint(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to start sprint: %v", err)
	}
	if snapshot.RemainingPoints != 8 {
		t.Errorf("Expected remaining 8 at start, got %d", snapshot.RemainingPoints)
	}
	if snapshot.CompletedPoints != 0 {
		t.Errorf("Expected completed 0 at start, got %d", snapshot.CompletedPoints)
	}
	if snapshot.AddedPoints != 0 || snapshot.RemovedPoints != 0 {
		t.Errorf("Expected no scope change on first snapshot, got +%d/-%d", snapshot.AddedPoints, snapshot.RemovedPoints)
	}

	got, err := repo.GetSprintByID(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to get sprint: %v", err)
	}
	if got.Status != models.SprintActive {
		t.Errorf("Expected active status, got %s", got.Status)
	}
}

func TestSprintRepo_SnapshotsTrackScopeChange(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")
	original := createTestStoryWithPoints(t, repo, project.ID, "Original", 5)
	latecomer := createTestStoryWithPoints(t, repo, project.ID, "Latecomer", 3)

	if _, err := repo.AddSprintMember(ctx, sprint.ID, models.KindStory, original.ID, "tester"); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	if _, err := repo.StartSprint(ctx, sprint.ID); err != nil {
		t.Fatalf("Failed to start sprint: %v", err)
	}

	// Scope grows mid-sprint
	if _, err := repo.AddSprintMember(ctx, sprint.ID, models.KindStory, latecomer.ID, "tester"); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	mid, err := repo.TakeSprintSnapshot(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to take snapshot: %v", err)
	}
	if mid.AddedPoints != 3 || mid.RemovedPoints != 0 {
		t.Errorf("Expected +3/-0 scope change, got +%d/-%d", mid.AddedPoints, mid.RemovedPoints)
	}
	if mid.RemainingPoints != 8 {
		t.Errorf("Expected remaining 8, got %d", mid.RemainingPoints)
	}

	// Scope shrinks before completion
	if err := repo.RemoveSprintMember(ctx, sprint.ID, models.KindStory, latecomer.ID); err != nil {
		t.Fatalf("Failed to remove member: %v", err)
	}
	final, err := repo.CompleteSprint(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to complete sprint: %v", err)
	}
	if final.AddedPoints != 0 || final.RemovedPoints != 3 {
		t.Errorf("Expected +0/-3 scope change, got +%d/-%d", final.AddedPoints, final.RemovedPoints)
	}

	snaps, err := repo.ListSprintSnapshots(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to list snapshots: %v", err)
	}
	if len(snaps) != 3 {
		t.Fatalf("Expected 3 snapshots (start, on-demand, final), got %d", len(snaps))
	}
	if snaps[0].ID >= snaps[2].ID {
		t.Error("Expected snapshots ordered oldest first")
	}
}

func TestSprintRepo_CompleteSnapshotIsFrozen(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")
	story := createTestStoryWithPoints(t, repo, project.ID, "Eight", 8)

	if _, err := repo.AddSprintMember(ctx, sprint.ID, models.KindStory, story.ID, "tester"); err != nil {
		t.Fatalf("Failed to add member: %v", err)
	}
	if _, err := repo.StartSprint(ctx, sprint.ID); err != nil {
		t.Fatalf("Failed to start sprint: %v", err)
	}

	snapshot, err := repo.CompleteSprint(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to complete sprint: %v", err)
	}
	if snapshot.CommittedPoints() != 8 {
		t.Errorf("Expected committed 8 in snapshot, got %d", snapshot.CommittedPoints())
	}

	completed, err := repo.GetSprintByID(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to get sprint: %v", err)
	}
	if completed.Status != models.SprintCompleted {
		t.Errorf("Expected completed status, got %s", completed.Status)
	}

	// Completing again is an invalid transition
	if _, err := repo.CompleteSprint(ctx, sprint.ID); err == nil {
		t.Error("Expected double completion to fail")
	}

	// Later edits to the story do not rewrite the snapshot
	if err := repo.UpdateStory(ctx, story.ID, models.StoryPatch{Points: models.SetInt(20)}, "tester"); err != nil {
		t.Fatalf("Failed to re-point story: %v", err)
	}
	frozen, err := repo.GetLatestSprintSnapshot(ctx, sprint.ID)
	if err != nil {
		t.Fatalf("Failed to get snapshot: %v", err)
	}
	if frozen.CommittedPoints() != 8 {
		t.Errorf("Expected snapshot frozen at 8, got %d", frozen.CommittedPoints())
	}
}

func TestSprintRepo_CompleteRequiresActive(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	sprint := createTestSprint(t, repo, project.ID, "Sprint 1")

	_, err := repo.CompleteSprint(ctx, sprint.ID)
	if err == nil {
		t.Fatal("Expected completing a planning sprint to fail")
	}
	if !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestSprintRepo_ListCompletedNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")

	names := []string{"Sprint 1", "Sprint 2", "Sprint 3"}
	for i, name := range names {
		sprint := createTestSprint(t, repo, project.ID, name)
		// Stagger the windows so end_date ordering is deterministic
		start := sprint.StartDate.AddDate(0, 0, 14*i)
		end := sprint.EndDate.AddDate(0, 0, 14*i)
		if err := repo.UpdateSprint(ctx, sprint.ID, models.SprintPatch{StartDate: &start, EndDate: &end}); err != nil {
			t.Fatalf("Failed to shift sprint window: %v", err)
		}
		if _, err := repo.StartSprint(ctx, sprint.ID); err != nil {
			t.Fatalf("Failed to start sprint: %v", err)
		}
		if _, err := repo.CompleteSprint(ctx, sprint.ID); err != nil {
			t.Fatalf("Failed to complete sprint: %v", err)
		}
	}

	recent, err := repo.ListCompletedSprints(ctx, project.ID, 2)
	if err != nil {
		t.Fatalf("Failed to list completed sprints: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 sprints, got %d", len(recent))
	}
	if recent[0].Name != "Sprint 3" || recent[1].Name != "Sprint 2" {
		t.Errorf("Expected newest first, got %s then %s", recent[0].Name, recent[1].Name)
	}
}
