package database

import (
	"context"
	"database/sql"
	"fmt"
)

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations. Versions must be
// sequential starting from 1; each entry runs at most once and is recorded
// in schema_migrations inside the same transaction.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS projects (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	identifier       TEXT NOT NULL UNIQUE,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	last_accessed_at DATETIME,
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS epics (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id       INTEGER NOT NULL,
	name             TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'todo',
	assigned_to      TEXT NOT NULL DEFAULT '',
	last_modified_by TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS stories (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id          INTEGER NOT NULL,
	epic_id             INTEGER,
	title               TEXT NOT NULL,
	description         TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL DEFAULT 'todo',
	priority            TEXT NOT NULL DEFAULT 'medium',
	points              INTEGER,
	acceptance_criteria TEXT NOT NULL DEFAULT '',
	assigned_to         TEXT NOT NULL DEFAULT '',
	last_modified_by    TEXT NOT NULL DEFAULT '',
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	FOREIGN KEY (epic_id) REFERENCES epics(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	story_id         INTEGER NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	task_type        TEXT NOT NULL DEFAULT 'development',
	status           TEXT NOT NULL DEFAULT 'todo',
	priority         TEXT NOT NULL DEFAULT 'medium',
	points           INTEGER,
	assigned_to      TEXT NOT NULL DEFAULT '',
	last_modified_by TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (story_id) REFERENCES stories(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS bugs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id       INTEGER NOT NULL,
	story_id         INTEGER,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'todo',
	priority         TEXT NOT NULL DEFAULT 'medium',
	points           INTEGER,
	assigned_to      TEXT NOT NULL DEFAULT '',
	last_modified_by TEXT NOT NULL DEFAULT '',
	created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE,
	FOREIGN KEY (story_id) REFERENCES stories(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_epics_project ON epics(project_id);
CREATE INDEX IF NOT EXISTS idx_stories_project ON stories(project_id);
CREATE INDEX IF NOT EXISTS idx_stories_epic ON stories(epic_id);
CREATE INDEX IF NOT EXISTS idx_tasks_story ON tasks(story_id);
CREATE INDEX IF NOT EXISTS idx_bugs_project ON bugs(project_id);
CREATE INDEX IF NOT EXISTS idx_bugs_story ON bugs(story_id);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS dependencies (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	story_id            INTEGER NOT NULL,
	depends_on_story_id INTEGER NOT NULL,
	dep_type            TEXT NOT NULL DEFAULT 'blocks',
	created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (story_id, depends_on_story_id),
	FOREIGN KEY (story_id) REFERENCES stories(id) ON DELETE CASCADE,
	FOREIGN KEY (depends_on_story_id) REFERENCES stories(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS relationships (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id  INTEGER NOT NULL,
	source_kind TEXT NOT NULL,
	source_id   INTEGER NOT NULL,
	target_kind TEXT NOT NULL,
	target_id   INTEGER NOT NULL,
	rel_type    TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (project_id, source_kind, source_id, target_kind, target_id, rel_type),
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notes (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id  INTEGER NOT NULL,
	parent_kind TEXT NOT NULL,
	parent_id   INTEGER NOT NULL,
	author      TEXT NOT NULL DEFAULT '',
	body        TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_dependencies_story ON dependencies(story_id);
CREATE INDEX IF NOT EXISTS idx_dependencies_depends_on ON dependencies(depends_on_story_id);
CREATE INDEX IF NOT EXISTS idx_relationships_project ON relationships(project_id);
CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_kind, source_id);
CREATE INDEX IF NOT EXISTS idx_notes_parent ON notes(parent_kind, parent_id);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS sprints (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id      INTEGER NOT NULL,
	name            TEXT NOT NULL,
	goal            TEXT NOT NULL DEFAULT '',
	start_date      DATETIME NOT NULL,
	end_date        DATETIME NOT NULL,
	capacity_points INTEGER,
	status          TEXT NOT NULL DEFAULT 'planning',
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sprint_memberships (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	sprint_id INTEGER NOT NULL,
	item_kind TEXT NOT NULL,
	item_id   INTEGER NOT NULL,
	added_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	added_by  TEXT NOT NULL DEFAULT '',
	UNIQUE (sprint_id, item_kind, item_id),
	FOREIGN KEY (sprint_id) REFERENCES sprints(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sprint_snapshots (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	sprint_id        INTEGER NOT NULL,
	remaining_points INTEGER NOT NULL,
	completed_points INTEGER NOT NULL,
	added_points     INTEGER NOT NULL DEFAULT 0,
	removed_points   INTEGER NOT NULL DEFAULT 0,
	taken_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (sprint_id) REFERENCES sprints(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_sprints_project ON sprints(project_id, status);
CREATE INDEX IF NOT EXISTS idx_sprint_memberships_sprint ON sprint_memberships(sprint_id);
`,
	},
	{
		// security_log rows carry no foreign keys: audit history must
		// survive deletion of the projects and entities it mentions.
		version: 4,
		sql: `
CREATE TABLE IF NOT EXISTS security_log (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type        TEXT NOT NULL,
	actor             TEXT NOT NULL DEFAULT '',
	project_id        INTEGER,
	target_project_id INTEGER,
	entity_kind       TEXT NOT NULL DEFAULT '',
	entity_id         INTEGER,
	message           TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_security_log_actor ON security_log(actor);
CREATE INDEX IF NOT EXISTS idx_security_log_created ON security_log(created_at);
`,
	},
}

// runMigrations brings the schema up to the latest version. Each pending
// migration runs in its own transaction together with its version marker,
// so a failed migration leaves no partial state behind.
func runMigrations(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	var current sql.NullInt64
	err = db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&current)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if current.Valid && m.version <= int(current.Int64) {
			continue
		}
		err := withTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return fmt.Errorf("migration %d failed: %w", m.version, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, m.version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}
