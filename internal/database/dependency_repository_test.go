package database

import (
	"context"
	"errors"
	"testing"

	"github.com/mfigueroa/backlog/internal/models"
)

func TestDependencyRepo_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")
	b := createTestStory(t, repo, project.ID, "B")

	dep, err := repo.CreateDependency(ctx, a.ID, b.ID, models.DependencyBlockedBy)
	if err != nil {
		t.Fatalf("Failed to create dependency: %v", err)
	}
	if dep.StoryID != a.ID || dep.DependsOnStoryID != b.ID {
		t.Errorf("Expected edge %d -> %d, got %d -> %d", a.ID, b.ID, dep.StoryID, dep.DependsOnStoryID)
	}
	if dep.DepType != models.DependencyBlockedBy {
		t.Errorf("Expected type blocked_by, got %s", dep.DepType)
	}

	deps, err := repo.ListDependencies(ctx, models.DependencyFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Failed to list dependencies: %v", err)
	}
	if len(deps) != 1 {
		t.Errorf("Expected 1 dependency, got %d", len(deps))
	}
}

func TestDependencyRepo_UniquePerOrderedPair(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")
	b := createTestStory(t, repo, project.ID, "B")

	if _, err := repo.CreateDependency(ctx, a.ID, b.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Failed to create dependency: %v", err)
	}
	if _, err := repo.CreateDependency(ctx, a.ID, b.ID, models.DependencyBlocks); err == nil {
		t.Error("Expected duplicate ordered pair to fail")
	}
}

func TestDependencyRepo_RejectsSelfLoop(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")

	_, err := repo.CreateDependency(ctx, a.ID, a.ID, models.DependencyBlocks)
	if err == nil {
		t.Fatal("Expected self-loop to be rejected")
	}
	if !errors.Is(err, models.ErrCircularDependency) {
		t.Errorf("Expected ErrCircularDependency, got %v", err)
	}
}

func TestDependencyRepo_RejectsCycleAndLeavesEdgesUnchanged(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")
	b := createTestStory(t, repo, project.ID, "B")
	c := createTestStory(t, repo, project.ID, "C")

	// A -> B -> C
	if _, err := repo.CreateDependency(ctx, a.ID, b.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Failed to create A -> B: %v", err)
	}
	if _, err := repo.CreateDependency(ctx, b.ID, c.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Failed to create B -> C: %v", err)
	}

	// C -> A would close the loop
	_, err := repo.CreateDependency(ctx, c.ID, a.ID, models.DependencyBlockedBy)
	if err == nil {
		t.Fatal("Expected cycle to be rejected")
	}
	if !errors.Is(err, models.ErrCircularDependency) {
		t.Errorf("Expected ErrCircularDependency, got %v", err)
	}

	deps, err := repo.ListDependencies(ctx, models.DependencyFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Failed to list dependencies: %v", err)
	}
	if len(deps) != 2 {
		t.Errorf("Expected edge set unchanged at 2 edges, got %d", len(deps))
	}
}

func TestDependencyRepo_AllowsDiamond(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")
	b := createTestStory(t, repo, project.ID, "B")
	c := createTestStory(t, repo, project.ID, "C")
	d := createTestStory(t, repo, project.ID, "D")

	// A -> B -> D and A -> C -> D share a sink but close no loop
	edges := [][2]int64{{a.ID, b.ID}, {b.ID, d.ID}, {a.ID, c.ID}, {c.ID, d.ID}}
	for _, e := range edges {
		if _, err := repo.CreateDependency(ctx, e[0], e[1], models.DependencyBlockedBy); err != nil {
			t.Fatalf("Failed to create %d -> %d: %v", e[0], e[1], err)
		}
	}
}

func TestDependencyRepo_RejectsCrossProject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	alpha := createTestProject(t, repo, "alpha")
	beta := createTestProject(t, repo, "beta")
	mine := createTestStory(t, repo, alpha.ID, "Mine")
	theirs := createTestStory(t, repo, beta.ID, "Theirs")

	_, err := repo.CreateDependency(ctx, mine.ID, theirs.ID, models.DependencyBlockedBy)
	if err == nil {
		t.Fatal("Expected cross-project dependency to be rejected")
	}
	if !errors.Is(err, models.ErrCrossProject) {
		t.Errorf("Expected ErrCrossProject, got %v", err)
	}
}

func TestDependencyRepo_DeleteByPairThenReinsert(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")
	b := createTestStory(t, repo, project.ID, "B")

	if _, err := repo.CreateDependency(ctx, a.ID, b.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Failed to create dependency: %v", err)
	}
	if err := repo.DeleteDependencyByPair(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Failed to delete dependency: %v", err)
	}

	// Removing the edge makes the reverse direction legal
	if _, err := repo.CreateDependency(ctx, b.ID, a.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Expected reverse edge after deletion, got: %v", err)
	}
}

func TestDependencyRepo_StoryDeleteRemovesEdges(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")
	b := createTestStory(t, repo, project.ID, "B")

	if _, err := repo.CreateDependency(ctx, a.ID, b.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Failed to create dependency: %v", err)
	}
	if err := repo.DeleteStory(ctx, b.ID); err != nil {
		t.Fatalf("Failed to delete story: %v", err)
	}

	deps, err := repo.ListDependencies(ctx, models.DependencyFilter{ProjectID: project.ID})
	if err != nil {
		t.Fatalf("Failed to list dependencies: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("Expected edges removed with their story, got %d", len(deps))
	}
}

func TestGraphRepo_WouldCreateCycle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	project := createTestProject(t, repo, "alpha")
	a := createTestStory(t, repo, project.ID, "A")
	b := createTestStory(t, repo, project.ID, "B")
	c := createTestStory(t, repo, project.ID, "C")

	if _, err := repo.CreateDependency(ctx, a.ID, b.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Failed to create A -> B: %v", err)
	}
	if _, err := repo.CreateDependency(ctx, b.ID, c.ID, models.DependencyBlockedBy); err != nil {
		t.Fatalf("Failed to create B -> C: %v", err)
	}

	nodeA := GraphNode{Kind: models.KindStory, ID: a.ID}
	nodeC := GraphNode{Kind: models.KindStory, ID: c.ID}

	cycle, err := repo.WouldCreateCycle(ctx, project.ID, nodeC, nodeA)
	if err != nil {
		t.Fatalf("Failed to check cycle: %v", err)
	}
	if !cycle {
		t.Error("Expected C -> A to be reported as a cycle")
	}

	ok, err := repo.WouldCreateCycle(ctx, project.ID, nodeA, nodeC)
	if err != nil {
		t.Fatalf("Failed to check cycle: %v", err)
	}
	if ok {
		t.Error("Expected A -> C to be cycle-free")
	}

	self, err := repo.WouldCreateCycle(ctx, project.ID, nodeA, nodeA)
	if err != nil {
		t.Fatalf("Failed to check self-loop: %v", err)
	}
	if !self {
		t.Error("Expected self-loop to be reported as a cycle")
	}
}
