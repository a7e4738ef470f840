package access

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/models"
)

// Context is proof that a caller resolved a registered project. Every
// scoped operation takes one; callers obtain it from ResolveContext, which
// makes the security log the single funnel for failed resolutions.
type Context struct {
	ProjectID   int64
	ProjectName string
	Identifier  string
	Caller      string
	ActingAs    string // empty unless the caller acts on another identity's behalf
}

// Actor is the identity charged with the context's actions: ActingAs when
// delegation is in play, otherwise the caller itself.
func (c *Context) Actor() string {
	if c.ActingAs != "" {
		return c.ActingAs
	}
	return c.Caller
}

// Service defines project scoping, isolation enforcement, and audit reads
type Service interface {
	// ResolveContext exchanges a project identifier for a scoped context.
	// An unknown identifier is recorded in the security log and rejected
	// with ErrProjectNotRegistered; a known one bumps the project's
	// last-accessed time.
	ResolveContext(ctx context.Context, identifier, caller, actingAs string) (*Context, error)

	// CheckAccess verifies that an entity belongs to the context's project.
	// A mismatch appends exactly one violation row to the security log and
	// returns ErrAccessDenied. A project entity owns itself, so checking a
	// project id other than the context's own is a violation like any other.
	CheckAccess(ctx context.Context, pctx *Context, kind models.EntityKind, entityID int64) error

	// ListSecurityEvents reads the audit trail, newest first.
	ListSecurityEvents(ctx context.Context, filter models.SecurityEventFilter) ([]*models.SecurityEvent, error)
}

// service implements Service interface
type service struct {
	repo        database.DataStore
	eventClient events.EventPublisher
}

// NewService creates a new access service
func NewService(repo database.DataStore, eventClient events.EventPublisher) Service {
	return &service{
		repo:        repo,
		eventClient: eventClient,
	}
}

// ResolveContext looks up the project behind an identifier and returns the
// scoped context callers need for every project-bound operation.
func (s *service) ResolveContext(ctx context.Context, identifier, caller, actingAs string) (*Context, error) {
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}
	if caller == "" {
		return nil, ErrEmptyCaller
	}

	actor := caller
	if actingAs != "" {
		actor = actingAs
	}

	project, err := s.repo.GetProjectByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.recordEvent(ctx, &models.SecurityEvent{
				EventType:  models.EventUnauthorizedAccess,
				Actor:      actor,
				EntityKind: models.KindProject,
				Message:    fmt.Sprintf("attempt to access unregistered project %q", identifier),
			}, 0)
			return nil, fmt.Errorf("project %q: %w", identifier, ErrProjectNotRegistered)
		}
		return nil, fmt.Errorf("failed to resolve project %q: %w", identifier, err)
	}

	if err := s.repo.TouchProject(ctx, project.ID); err != nil {
		return nil, fmt.Errorf("failed to record access to project %q: %w", identifier, err)
	}

	return &Context{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		Identifier:  project.Identifier,
		Caller:      caller,
		ActingAs:    actingAs,
	}, nil
}

// CheckAccess resolves the entity's owning project and compares it against
// the context. The resolve and the compare are read-only; only a mismatch
// writes, and it writes exactly one row.
func (s *service) CheckAccess(ctx context.Context, pctx *Context, kind models.EntityKind, entityID int64) error {
	if pctx == nil {
		return ErrNoContext
	}
	if !kind.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidEntityKind, kind)
	}

	owner, err := s.repo.ResolveEntityProject(ctx, kind, entityID)
	if err != nil {
		return fmt.Errorf("failed to check access for %s %d: %w", kind, entityID, err)
	}

	if owner != pctx.ProjectID {
		callerProject := pctx.ProjectID
		ownerProject := owner
		id := entityID
		s.recordEvent(ctx, &models.SecurityEvent{
			EventType:       models.EventProjectViolation,
			Actor:           pctx.Actor(),
			ProjectID:       &callerProject,
			TargetProjectID: &ownerProject,
			EntityKind:      kind,
			EntityID:        &id,
			Message: fmt.Sprintf("%s %d belongs to project %d, not project %d",
				kind, entityID, ownerProject, callerProject),
		}, pctx.ProjectID)
		return fmt.Errorf("%s %d: %w", kind, entityID, ErrAccessDenied)
	}

	return nil
}

// ListSecurityEvents reads the audit trail
func (s *service) ListSecurityEvents(ctx context.Context, filter models.SecurityEventFilter) ([]*models.SecurityEvent, error) {
	if filter.EventType != "" && !filter.EventType.IsValid() {
		return nil, fmt.Errorf("invalid event type %q", filter.EventType)
	}
	return s.repo.ListSecurityEvents(ctx, filter)
}

// recordEvent appends an audit row and emits a security alert. Failures
// here are logged and swallowed: the denial the caller sees must come from
// the check itself, never from logging plumbing.
func (s *service) recordEvent(ctx context.Context, event *models.SecurityEvent, projectID int64) {
	if _, err := s.repo.AppendSecurityEvent(ctx, event); err != nil {
		log.Printf("Warning: failed to append security event: %v", err)
	}
	if s.eventClient == nil {
		return
	}
	if err := s.eventClient.SendEvent(events.Event{
		Type:      events.EventSecurityAlert,
		ProjectID: projectID,
	}); err != nil {
		log.Printf("Warning: failed to send security alert: %v", err)
	}
}
