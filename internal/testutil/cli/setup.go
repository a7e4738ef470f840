// Package cli holds helpers for end-to-end command tests. It lives in its
// own package so service tests importing testutil never pull in cobra.
package cli

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mfigueroa/backlog/internal/config"
)

// SetupCLITest points the CLI at a throwaway config whose database and
// socket live under the test's temp directory. Commands executed after this
// call read that config through the BACKLOG_CONFIG override, so they share
// one database across invocations without touching the host's setup.
func SetupCLITest(t *testing.T) *config.Config {
	t.Helper()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	t.Setenv("BACKLOG_CONFIG", configPath)
	// Pin identity resolution to the config so a BACKLOG_ACTOR on the host
	// machine cannot leak into assertions.
	t.Setenv("BACKLOG_ACTOR", "")

	cfg := &config.Config{
		DatabasePath:   filepath.Join(tmpDir, "backlog.db"),
		SocketPath:     filepath.Join(tmpDir, "backlog.sock"),
		DefaultActor:   "tester",
		VelocityWindow: 3,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	return cfg
}

// VerifyDB opens the test database for direct assertion queries. The CLI
// holds no long-lived handle between commands, so a second connection sees
// every committed write.
func VerifyDB(t *testing.T, cfg *config.Config) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		t.Fatalf("Failed to reach test database: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
