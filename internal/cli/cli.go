package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mfigueroa/backlog/internal/app"
	"github.com/mfigueroa/backlog/internal/config"
	"github.com/mfigueroa/backlog/internal/database"
	"github.com/mfigueroa/backlog/internal/events"
	"github.com/mfigueroa/backlog/internal/services/access"
	"github.com/mfigueroa/backlog/internal/user"
)

// CLI represents the CLI application context
type CLI struct {
	App         *app.App
	Config      *config.Config
	db          *sql.DB
	eventClient events.EventPublisher
}

// NewCLI initializes the CLI with database and optional daemon connection
func NewCLI(ctx context.Context) (*CLI, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Try to connect to daemon (optional - silent fallback)
	var eventClient events.EventPublisher
	client, err := events.NewClient(cfg.SocketPath)
	if err == nil {
		// If the connect fails the daemon isn't running; commands work
		// the same, just without change notifications.
		if err := client.Connect(ctx); err == nil {
			eventClient = client
		}
	}

	application := app.New(database.NewRepository(db), app.WithEventPublisher(eventClient))

	return &CLI{
		App:         application,
		Config:      cfg,
		db:          db,
		eventClient: eventClient,
	}, nil
}

// Scope resolves the acting project context from the command's --project,
// --actor, and --as flags. Every scoped command goes through here, so no
// entity operation can run without a registered project behind it.
func (c *CLI) Scope(ctx context.Context, cmd *cobra.Command) (*access.Context, error) {
	identifier, _ := cmd.Flags().GetString("project")
	actorFlag, _ := cmd.Flags().GetString("actor")
	actingAs, _ := cmd.Flags().GetString("as")

	caller := user.ResolveActor(actorFlag, c.Config.DefaultActor)
	return c.App.Access.ResolveContext(ctx, identifier, caller, actingAs)
}

// Actor resolves the acting identity for unscoped commands.
func (c *CLI) Actor(cmd *cobra.Command) string {
	actorFlag, _ := cmd.Flags().GetString("actor")
	return user.ResolveActor(actorFlag, c.Config.DefaultActor)
}

// Close cleans up CLI resources
func (c *CLI) Close() error {
	if err := c.App.Close(); err != nil {
		return err
	}
	return c.db.Close()
}
