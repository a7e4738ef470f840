package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/mfigueroa/backlog/internal/models"
)

// GraphNode identifies a vertex in a project's directed edge graph.
type GraphNode struct {
	Kind models.EntityKind
	ID   int64
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type rowQueryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// entityProject resolves which project owns (kind, id). Projects resolve to
// themselves; tasks resolve through their owning story.
func entityProject(ctx context.Context, q rowQueryer, kind models.EntityKind, id int64) (int64, error) {
	var query string
	switch kind {
	case models.KindProject:
		query = `SELECT id FROM projects WHERE id = ?`
	case models.KindEpic:
		query = `SELECT project_id FROM epics WHERE id = ?`
	case models.KindStory:
		query = `SELECT project_id FROM stories WHERE id = ?`
	case models.KindTask:
		query = `SELECT s.project_id FROM tasks t JOIN stories s ON t.story_id = s.id WHERE t.id = ?`
	case models.KindBug:
		query = `SELECT project_id FROM bugs WHERE id = ?`
	case models.KindSprint:
		query = `SELECT project_id FROM sprints WHERE id = ?`
	default:
		return 0, fmt.Errorf("unknown entity kind %q", kind)
	}

	var projectID int64
	if err := q.QueryRowContext(ctx, query, id).Scan(&projectID); err != nil {
		return 0, fmt.Errorf("failed to resolve project for %s %d: %w", kind, id, err)
	}
	return projectID, nil
}

// loadForwardEdges builds the forward adjacency over a project's ordering
// edges: story dependencies plus relationships of graph-semantic types.
// related_to and cloned_from rows never enter the adjacency.
func loadForwardEdges(ctx context.Context, q queryer, projectID int64) (map[GraphNode][]GraphNode, error) {
	adj := make(map[GraphNode][]GraphNode)

	rows, err := q.QueryContext(ctx, `
		SELECT d.story_id, d.depends_on_story_id
		FROM dependencies d
		JOIN stories s ON d.story_id = s.id
		WHERE s.project_id = ?`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load dependency edges for project %d: %w", projectID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()
	for rows.Next() {
		var from, to int64
		if err := rows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("failed to scan dependency edge: %w", err)
		}
		source := GraphNode{Kind: models.KindStory, ID: from}
		adj[source] = append(adj[source], GraphNode{Kind: models.KindStory, ID: to})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dependency edges: %w", err)
	}

	relRows, err := q.QueryContext(ctx, `
		SELECT source_kind, source_id, target_kind, target_id
		FROM relationships
		WHERE project_id = ? AND rel_type IN (?, ?, ?)`,
		projectID, models.RelBlocks, models.RelBlockedBy, models.RelDependsOn)
	if err != nil {
		return nil, fmt.Errorf("failed to load relationship edges for project %d: %w", projectID, err)
	}
	defer func() {
		if err := relRows.Close(); err != nil {
			log.Printf("failed to close rows: %v", err)
		}
	}()
	for relRows.Next() {
		var source, target GraphNode
		if err := relRows.Scan(&source.Kind, &source.ID, &target.Kind, &target.ID); err != nil {
			return nil, fmt.Errorf("failed to scan relationship edge: %w", err)
		}
		adj[source] = append(adj[source], target)
	}
	if err := relRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationship edges: %w", err)
	}

	return adj, nil
}

// pathExists reports whether `to` is reachable from `from` along forward
// edges. Breadth-first with a visited set, so a traversal touches each
// vertex and edge at most once. Identical endpoints count as reachable,
// which is what makes a self-loop a degenerate cycle.
func pathExists(adj map[GraphNode][]GraphNode, from, to GraphNode) bool {
	if from == to {
		return true
	}
	visited := map[GraphNode]bool{from: true}
	queue := []GraphNode{from}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		for _, next := range adj[node] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// GraphRepo answers reachability questions over the combined edge graph.
// The mutating edge checks live with the inserts themselves; this exists
// for callers that want the advisory answer without writing anything.
type GraphRepo struct {
	db *sql.DB
}

// WouldCreateCycle reports whether inserting the edge source → target would
// close a loop: true when target already reaches source, or when the edge
// is a self-loop.
func (r *GraphRepo) WouldCreateCycle(ctx context.Context, projectID int64, source, target GraphNode) (bool, error) {
	adj, err := loadForwardEdges(ctx, r.db, projectID)
	if err != nil {
		return false, err
	}
	return pathExists(adj, target, source), nil
}

// ResolveEntityProject returns the project that owns (kind, id).
func (r *GraphRepo) ResolveEntityProject(ctx context.Context, kind models.EntityKind, id int64) (int64, error) {
	return entityProject(ctx, r.db, kind, id)
}
