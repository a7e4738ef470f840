package story

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/backlog/internal/cli/epic"
	"github.com/mfigueroa/backlog/internal/cli/project"
	"github.com/mfigueroa/backlog/internal/testutil/cli"
)

func TestUpdateStory_ConflictFlow(t *testing.T) {
	cfg := cli.SetupCLITest(t)

	_, err := cli.ExecuteCLICommand(t, project.RegisterCmd(), "--identifier", "atlas", "--quiet")
	require.NoError(t, err)

	output, err := cli.ExecuteCLICommand(t, CreateCmd(),
		"--project", "atlas", "--title", "Checkout flow", "--points", "5",
		"--actor", "ana", "--quiet")
	require.NoError(t, err)
	storyID := strings.TrimSpace(output)
	require.Regexp(t, `^\d+$`, storyID)

	t.Run("same actor sees no conflict", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, UpdateCmd(), storyID,
			"--project", "atlas", "--status", "in_progress", "--actor", "ana", "--json")
		require.NoError(t, err)

		data := cli.Data(t, cli.ParseJSON(t, output))
		assert.Equal(t, false, data["conflict"])
		assert.Equal(t, "in_progress", data["status"])
	})

	t.Run("cross-actor edit warns, applies, and is logged", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, UpdateCmd(), storyID,
			"--project", "atlas", "--title", "Checkout flow v2", "--actor", "bob", "--json")
		require.NoError(t, err)

		data := cli.Data(t, cli.ParseJSON(t, output))
		assert.Equal(t, true, data["conflict"])
		// Advisory only: the write still lands.
		assert.Equal(t, "Checkout flow v2", data["title"])

		db := cli.VerifyDB(t, cfg)
		var title, lastModifiedBy string
		err = db.QueryRowContext(context.Background(),
			"SELECT title, last_modified_by FROM stories WHERE id = ?", storyID).
			Scan(&title, &lastModifiedBy)
		require.NoError(t, err)
		assert.Equal(t, "Checkout flow v2", title)
		assert.Equal(t, "bob", lastModifiedBy)

		var eventType, actor, entityKind string
		var entityID int64
		err = db.QueryRowContext(context.Background(),
			`SELECT event_type, actor, entity_kind, entity_id FROM security_log
			 WHERE event_type = 'conflict_detected' ORDER BY id DESC LIMIT 1`).
			Scan(&eventType, &actor, &entityKind, &entityID)
		require.NoError(t, err)
		assert.Equal(t, "conflict_detected", eventType)
		assert.Equal(t, "bob", actor)
		assert.Equal(t, "story", entityKind)
		assert.Equal(t, storyID, strconv.FormatInt(entityID, 10))
	})

	t.Run("follow-up edit by the last writer is clean again", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, UpdateCmd(), storyID,
			"--project", "atlas", "--points", "8", "--actor", "bob", "--json")
		require.NoError(t, err)

		data := cli.Data(t, cli.ParseJSON(t, output))
		assert.Equal(t, false, data["conflict"])
	})
}

func TestCreateStory_Integration(t *testing.T) {
	cfg := cli.SetupCLITest(t)

	_, err := cli.ExecuteCLICommand(t, project.RegisterCmd(), "--identifier", "atlas", "--quiet")
	require.NoError(t, err)

	t.Run("orphan story persists without an epic", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, CreateCmd(),
			"--project", "atlas", "--title", "Standalone spike", "--quiet")
		require.NoError(t, err)
		storyID := strings.TrimSpace(output)

		db := cli.VerifyDB(t, cfg)
		var title, status string
		var epicID *int64
		err = db.QueryRowContext(context.Background(),
			"SELECT title, status, epic_id FROM stories WHERE id = ?", storyID).
			Scan(&title, &status, &epicID)
		require.NoError(t, err)
		assert.Equal(t, "Standalone spike", title)
		assert.Equal(t, "todo", status)
		assert.Nil(t, epicID)
	})

	t.Run("epic-linked story carries its estimate", func(t *testing.T) {
		epicOut, err := cli.ExecuteCLICommand(t, epic.CreateCmd(),
			"--project", "atlas", "--name", "Payments", "--quiet")
		require.NoError(t, err)
		epicID := strings.TrimSpace(epicOut)

		output, err := cli.ExecuteCLICommand(t, CreateCmd(),
			"--project", "atlas", "--title", "Card tokenization",
			"--epic", epicID, "--points", "5", "--priority", "high", "--json")
		require.NoError(t, err)

		data := cli.Data(t, cli.ParseJSON(t, output))
		assert.EqualValues(t, 5, data["points"])
		assert.Equal(t, "high", data["priority"])
		require.NotNil(t, data["epic_id"])
	})
}
