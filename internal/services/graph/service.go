package graph

import (
	"context"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/access"
)

// Service defines dependency and relationship edge operations. Edges of
// ordering types live in one combined graph per project, and that graph
// must stay acyclic; annotation edges never participate.
type Service interface {
	// Story dependencies
	AddDependency(ctx context.Context, pctx *access.Context, req AddDependencyRequest) (*models.Dependency, error)
	RemoveDependency(ctx context.Context, pctx *access.Context, storyID, dependsOnStoryID int64) error
	ListDependencies(ctx context.Context, pctx *access.Context, req ListDependenciesRequest) ([]*models.Dependency, error)

	// Typed relationships
	AddRelationship(ctx context.Context, pctx *access.Context, req AddRelationshipRequest) (*models.Relationship, error)
	RemoveRelationship(ctx context.Context, pctx *access.Context, relationshipID int64) error
	ListRelationships(ctx context.Context, pctx *access.Context, req ListRelationshipsRequest) ([]*models.Relationship, error)

	// WouldCreateCycle answers the advisory question without writing: would
	// the edge source → target close a loop in the project's graph?
	WouldCreateCycle(ctx context.Context, pctx *access.Context, sourceKind models.EntityKind, sourceID int64, targetKind models.EntityKind, targetID int64) (bool, error)
}

// AddDependencyRequest encapsulates a story dependency edge. DepType
// defaults to blocks when empty.
type AddDependencyRequest struct {
	StoryID          int64
	DependsOnStoryID int64
	DepType          models.DependencyType
}

// ListDependenciesRequest narrows a dependency listing. The project scope
// always comes from the resolved context.
type ListDependenciesRequest struct {
	StoryID *int64
}

// AddRelationshipRequest encapsulates a typed edge between two entities.
// RelType defaults to related_to when empty.
type AddRelationshipRequest struct {
	SourceKind models.EntityKind
	SourceID   int64
	TargetKind models.EntityKind
	TargetID   int64
	RelType    models.RelationshipType
}

// ListRelationshipsRequest narrows a relationship listing.
type ListRelationshipsRequest struct {
	SourceKind models.EntityKind
	SourceID   *int64
	RelType    models.RelationshipType
}

// service implements Service interface
type service struct {
	repo        database.DataStore
	guard       access.Service
	eventClient events.EventPublisher
}

// NewService creates a new graph service. Every edge mutation runs both
// endpoints through the access guard before touching the edge set.
func NewService(repo database.DataStore, guard access.Service, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		guard:       guard,
		eventClient: eventClient,
	}
}

// AddDependency inserts the edge storyID → dependsOnStoryID. Insertion and
// the acyclicity check run in one transaction; on rejection the edge set is
// exactly as it was.
func (s *service) AddDependency(ctx context.Context, pctx *access.Context, req AddDependencyRequest) (*models.Dependency, error) {
	if req.StoryID <= 0 || req.DependsOnStoryID <= 0 {
		return nil, ErrInvalidStoryID
	}
	if req.StoryID == req.DependsOnStoryID {
		return nil, ErrSelfDependency
	}
	depType := req.DepType
	if depType == "" {
		depType = models.DependencyBlocks
	}
	if !depType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDependencyType, req.DepType)
	}

	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, req.StoryID); err != nil {
		return nil, err
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, req.DependsOnStoryID); err != nil {
		return nil, err
	}

	dep, err := s.repo.CreateDependency(ctx, req.StoryID, req.DependsOnStoryID, depType)
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return dep, nil
}

// RemoveDependency deletes the edge storyID → dependsOnStoryID.
func (s *service) RemoveDependency(ctx context.Context, pctx *access.Context, storyID, dependsOnStoryID int64) error {
	if storyID <= 0 || dependsOnStoryID <= 0 {
		return ErrInvalidStoryID
	}

	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, storyID); err != nil {
		return err
	}
	if err := s.guard.CheckAccess(ctx, pctx, models.KindStory, dependsOnStoryID); err != nil {
		return err
	}

	if err := s.repo.DeleteDependencyByPair(ctx, storyID, dependsOnStoryID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// ListDependencies returns the project's dependency edges. The listing is
// scoped at the query, so a foreign story filter yields nothing rather
// than leaking.
func (s *service) ListDependencies(ctx context.Context, pctx *access.Context, req ListDependenciesRequest) ([]*models.Dependency, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}

	deps, err := s.repo.ListDependencies(ctx, models.DependencyFilter{
		ProjectID: pctx.ProjectID,
		StoryID:   req.StoryID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list dependencies: %w", err)
	}
	return deps, nil
}

// AddRelationship inserts a typed edge between two entities in the
// context's project. Graph-semantic types share the acyclicity guarantee
// with story dependencies; annotation types skip the check.
func (s *service) AddRelationship(ctx context.Context, pctx *access.Context, req AddRelationshipRequest) (*models.Relationship, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}
	if req.SourceID <= 0 || req.TargetID <= 0 {
		return nil, ErrInvalidEntityID
	}
	if !req.SourceKind.IsRelatable() {
		return nil, fmt.Errorf("%w: %q", ErrKindNotRelatable, req.SourceKind)
	}
	if !req.TargetKind.IsRelatable() {
		return nil, fmt.Errorf("%w: %q", ErrKindNotRelatable, req.TargetKind)
	}
	if req.SourceKind == req.TargetKind && req.SourceID == req.TargetID {
		return nil, ErrSelfRelation
	}
	relType := req.RelType
	if relType == "" {
		relType = models.RelRelatedTo
	}
	if !relType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRelationType, req.RelType)
	}

	if err := s.guard.CheckAccess(ctx, pctx, req.SourceKind, req.SourceID); err != nil {
		return nil, err
	}
	if err := s.guard.CheckAccess(ctx, pctx, req.TargetKind, req.TargetID); err != nil {
		return nil, err
	}

	rel, err := s.repo.CreateRelationship(ctx, &models.Relationship{
		ProjectID:  pctx.ProjectID,
		SourceKind: req.SourceKind,
		SourceID:   req.SourceID,
		TargetKind: req.TargetKind,
		TargetID:   req.TargetID,
		RelType:    relType,
	})
	if err != nil {
		return nil, err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return rel, nil
}

// RemoveRelationship deletes a typed edge. The edge is guarded through its
// source endpoint: the edge's project is the source's project, so a foreign
// edge denies the same way any foreign entity does.
func (s *service) RemoveRelationship(ctx context.Context, pctx *access.Context, relationshipID int64) error {
	if relationshipID <= 0 {
		return ErrInvalidRelationshipID
	}

	rel, err := s.repo.GetRelationshipByID(ctx, relationshipID)
	if err != nil {
		return err
	}
	if err := s.guard.CheckAccess(ctx, pctx, rel.SourceKind, rel.SourceID); err != nil {
		return err
	}

	if err := s.repo.DeleteRelationship(ctx, relationshipID); err != nil {
		return err
	}

	s.publishChangeEvent(pctx.ProjectID)
	return nil
}

// ListRelationships returns the project's typed edges, scoped at the query.
func (s *service) ListRelationships(ctx context.Context, pctx *access.Context, req ListRelationshipsRequest) ([]*models.Relationship, error) {
	if pctx == nil {
		return nil, access.ErrNoContext
	}

	rels, err := s.repo.ListRelationships(ctx, models.RelationshipFilter{
		ProjectID:  pctx.ProjectID,
		SourceKind: req.SourceKind,
		SourceID:   req.SourceID,
		RelType:    req.RelType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}

// WouldCreateCycle reports whether the edge source → target would close a
// loop, without mutating anything. The answer is advisory: by the time the
// caller acts on it the graph may have moved, and the transactional check
// at insert remains the authority.
func (s *service) WouldCreateCycle(ctx context.Context, pctx *access.Context, sourceKind models.EntityKind, sourceID int64, targetKind models.EntityKind, targetID int64) (bool, error) {
	if sourceID <= 0 || targetID <= 0 {
		return false, ErrInvalidEntityID
	}
	if err := s.guard.CheckAccess(ctx, pctx, sourceKind, sourceID); err != nil {
		return false, err
	}
	if err := s.guard.CheckAccess(ctx, pctx, targetKind, targetID); err != nil {
		return false, err
	}

	return s.repo.WouldCreateCycle(ctx, pctx.ProjectID,
		database.GraphNode{Kind: sourceKind, ID: sourceID},
		database.GraphNode{Kind: targetKind, ID: targetID},
	)
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
