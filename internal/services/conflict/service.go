package conflict

import (
	"context"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/models"
	"github.com/mfigueroa/backlog/internal/services/access"
)

// Service defines advisory concurrent-edit detection. The detector warns,
// records, and steps aside: it never blocks a write.
type Service interface {
	// Detect reports whether the entity was last modified by someone other
	// than the context's actor. A hit is recorded in the security log; the
	// caller decides what to do with the flag, and a write should proceed
	// either way.
	Detect(ctx context.Context, pctx *access.Context, kind models.EntityKind, entityID int64) (bool, error)
}

// service implements Service interface
type service struct {
	repo        database.DataStore
	eventClient events.EventPublisher
}

// NewService creates a new conflict detection service
func NewService(repo database.DataStore, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		eventClient: eventClient,
	}
}

// Detect compares the entity's recorded last modifier against the acting
// identity. Kinds without modification tracking always report no conflict.
func (s *service) Detect(ctx context.Context, pctx *access.Context, kind models.EntityKind, entityID int64) (bool, error) {
	if pctx == nil {
		return false, access.ErrNoContext
	}

	lastModifiedBy, err := s.lastModifier(ctx, kind, entityID)
	if err != nil {
		return false, err
	}
	if lastModifiedBy == "" || lastModifiedBy == pctx.Actor() {
		return false, nil
	}

	projectID := pctx.ProjectID
	id := entityID
	event := &models.SecurityEvent{
		EventType:  models.EventConflictDetected,
		Actor:      pctx.Actor(),
		ProjectID:  &projectID,
		EntityKind: kind,
		EntityID:   &id,
		Message:    fmt.Sprintf("%s %d was last modified by %q", kind, entityID, lastModifiedBy),
	}
	if _, err := s.repo.AppendSecurityEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to append conflict event: %v", err)
	}
	s.publishAlert(pctx.ProjectID)

	return true, nil
}

// lastModifier reads the tracked modifier for kinds that carry one. Sprints,
// notes, and projects have no modifier column and never conflict.
func (s *service) lastModifier(ctx context.Context, kind models.EntityKind, entityID int64) (string, error) {
	switch kind {
	case models.KindEpic:
		epic, err := s.repo.GetEpicByID(ctx, entityID)
		if err != nil {
			return "", fmt.Errorf("failed to check conflicts for epic %d: %w", entityID, err)
		}
		return epic.LastModifiedBy, nil
	case models.KindStory:
		story, err := s.repo.GetStoryByID(ctx, entityID)
		if err != nil {
			return "", fmt.Errorf("failed to check conflicts for story %d: %w", entityID, err)
		}
		return story.LastModifiedBy, nil
	case models.KindTask:
		task, err := s.repo.GetTaskByID(ctx, entityID)
		if err != nil {
			return "", fmt.Errorf("failed to check conflicts for task %d: %w", entityID, err)
		}
		return task.LastModifiedBy, nil
	case models.KindBug:
		bug, err := s.repo.GetBugByID(ctx, entityID)
		if err != nil {
			return "", fmt.Errorf("failed to check conflicts for bug %d: %w", entityID, err)
		}
		return bug.LastModifiedBy, nil
	default:
		return "", nil
	}
}

func (s *service) publishAlert(projectID int64) {
	if s.eventClient == nil {
		return
	}
	if err := s.eventClient.SendEvent(events.Event{
		Type:      events.EventSecurityAlert,
		ProjectID: projectID,
	}); err != nil {
		log.Printf("Warning: failed to send conflict alert: %v", err)
	}
}
