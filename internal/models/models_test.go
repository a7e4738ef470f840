package models

import (
	"testing"
	"time"
)

// ============================================================================
// Status Transition Tests
// ============================================================================

func TestCanTransition_AllowedMoves(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusTodo, StatusInProgress},
		{StatusTodo, StatusBlocked},
		{StatusInProgress, StatusReview},
		{StatusInProgress, StatusDone},
		{StatusInProgress, StatusBlocked},
		{StatusInProgress, StatusTodo},
		{StatusReview, StatusDone},
		{StatusReview, StatusInProgress},
		{StatusReview, StatusBlocked},
		{StatusBlocked, StatusTodo},
		{StatusBlocked, StatusInProgress},
		{StatusDone, StatusTodo},
	}

	for _, tt := range tests {
		if !CanTransition(KindStory, tt.from, tt.to) {
			t.Errorf("Expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}
}

func TestCanTransition_ForbiddenMoves(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusTodo, StatusDone},
		{StatusTodo, StatusReview},
		{StatusBlocked, StatusDone},
		{StatusBlocked, StatusReview},
		{StatusDone, StatusInProgress},
		{StatusDone, StatusReview},
		{StatusDone, StatusBlocked},
	}

	for _, tt := range tests {
		if CanTransition(KindTask, tt.from, tt.to) {
			t.Errorf("Expected %s -> %s to be forbidden", tt.from, tt.to)
		}
	}
}

func TestCanTransition_SameStatusIsNoop(t *testing.T) {
	for _, s := range []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked} {
		if !CanTransition(KindBug, s, s) {
			t.Errorf("Expected %s -> %s to be allowed as a no-op", s, s)
		}
	}
}

func TestCanTransition_RejectsNonWorkItemKinds(t *testing.T) {
	if CanTransition(KindProject, StatusTodo, StatusInProgress) {
		t.Error("Expected project kind to have no status transitions")
	}
	if CanTransition(KindSprint, StatusTodo, StatusInProgress) {
		t.Error("Expected sprint kind to have no status transitions")
	}
}

func TestCanTransition_RejectsUnknownStatus(t *testing.T) {
	if CanTransition(KindStory, Status("archived"), StatusTodo) {
		t.Error("Expected unknown source status to be rejected")
	}
	if CanTransition(KindStory, StatusTodo, Status("shipped")) {
		t.Error("Expected unknown target status to be rejected")
	}
}

// ============================================================================
// Sprint Transition Tests
// ============================================================================

func TestCanTransitionSprint(t *testing.T) {
	tests := []struct {
		from    SprintStatus
		to      SprintStatus
		allowed bool
	}{
		{SprintPlanning, SprintActive, true},
		{SprintPlanning, SprintCancelled, true},
		{SprintActive, SprintCompleted, true},
		{SprintPlanning, SprintCompleted, false},
		{SprintActive, SprintCancelled, false},
		{SprintActive, SprintPlanning, false},
		{SprintCompleted, SprintActive, false},
		{SprintCompleted, SprintPlanning, false},
		{SprintCancelled, SprintPlanning, false},
		{SprintCancelled, SprintActive, false},
		{SprintActive, SprintActive, true},
	}

	for _, tt := range tests {
		got := CanTransitionSprint(tt.from, tt.to)
		if got != tt.allowed {
			t.Errorf("CanTransitionSprint(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

// ============================================================================
// Enum Validity Tests
// ============================================================================

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusTodo, StatusInProgress, StatusReview, StatusDone, StatusBlocked} {
		if !s.IsValid() {
			t.Errorf("Expected status %s to be valid", s)
		}
	}
	if Status("open").IsValid() {
		t.Error("Expected 'open' to be invalid")
	}
	if Status("").IsValid() {
		t.Error("Expected empty status to be invalid")
	}
}

func TestPriority_IsValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		if !p.IsValid() {
			t.Errorf("Expected priority %s to be valid", p)
		}
	}
	if Priority("urgent").IsValid() {
		t.Error("Expected 'urgent' to be invalid")
	}
}

func TestTaskType_IsValid(t *testing.T) {
	for _, tt := range []TaskType{TaskTypeDevelopment, TaskTypeTesting, TaskTypeDocs, TaskTypeResearch} {
		if !tt.IsValid() {
			t.Errorf("Expected task type %s to be valid", tt)
		}
	}
	if TaskType("design").IsValid() {
		t.Error("Expected 'design' to be invalid")
	}
}

func TestEntityKind_IsRelatable(t *testing.T) {
	for _, k := range []EntityKind{KindProject, KindEpic, KindStory, KindTask, KindBug} {
		if !k.IsRelatable() {
			t.Errorf("Expected kind %s to be relatable", k)
		}
	}
	if KindSprint.IsRelatable() {
		t.Error("Expected sprint kind to not be relatable")
	}
}

func TestRelationshipType_GraphSemantic(t *testing.T) {
	tests := []struct {
		rel      RelationshipType
		semantic bool
	}{
		{RelBlocks, true},
		{RelBlockedBy, true},
		{RelDependsOn, true},
		{RelRelatedTo, false},
		{RelClonedFrom, false},
	}

	for _, tt := range tests {
		if tt.rel.GraphSemantic() != tt.semantic {
			t.Errorf("GraphSemantic(%s) = %v, want %v", tt.rel, !tt.semantic, tt.semantic)
		}
	}
}

func TestSecurityEventType_IsValid(t *testing.T) {
	for _, e := range []SecurityEventType{EventUnauthorizedAccess, EventProjectViolation, EventConflictDetected} {
		if !e.IsValid() {
			t.Errorf("Expected event type %s to be valid", e)
		}
	}
	if SecurityEventType("login").IsValid() {
		t.Error("Expected 'login' to be invalid")
	}
}

// ============================================================================
// Patch Helper Tests
// ============================================================================

func TestNullableInt_SetAndClear(t *testing.T) {
	var zero NullableInt
	if zero.Set {
		t.Error("Expected zero NullableInt to be unset")
	}

	set := SetInt(7)
	if !set.Set || !set.Valid || set.Int64 != 7 {
		t.Errorf("Expected set value 7, got %+v", set)
	}

	cleared := ClearInt()
	if !cleared.Set || cleared.Valid {
		t.Errorf("Expected cleared value, got %+v", cleared)
	}
}

// ============================================================================
// Sprint Window Tests
// ============================================================================

func TestSprint_TotalDays(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	s := Sprint{StartDate: start, EndDate: start.AddDate(0, 0, 5)}
	if got := s.TotalDays(); got != 5 {
		t.Errorf("Expected 5 day window, got %d", got)
	}

	partial := Sprint{StartDate: start, EndDate: start.Add(60 * time.Hour)}
	if got := partial.TotalDays(); got != 3 {
		t.Errorf("Expected partial day to round up to 3, got %d", got)
	}

	sameDay := Sprint{StartDate: start, EndDate: start}
	if got := sameDay.TotalDays(); got != 1 {
		t.Errorf("Expected degenerate window to clamp to 1, got %d", got)
	}

	inverted := Sprint{StartDate: start, EndDate: start.AddDate(0, 0, -3)}
	if got := inverted.TotalDays(); got != 1 {
		t.Errorf("Expected inverted window to clamp to 1, got %d", got)
	}
}
