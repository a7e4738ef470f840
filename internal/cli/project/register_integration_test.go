package project

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfigueroa/backlog/internal/testutil/cli"
)

func TestRegisterProject_Integration(t *testing.T) {
	cfg := cli.SetupCLITest(t)

	t.Run("quiet mode prints the new ID", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, RegisterCmd(),
			"--identifier", "atlas", "--quiet")
		require.NoError(t, err)

		idStr := strings.TrimSpace(output)
		assert.Regexp(t, `^\d+$`, idStr)

		db := cli.VerifyDB(t, cfg)
		var identifier, name string
		err = db.QueryRowContext(context.Background(),
			"SELECT identifier, name FROM projects WHERE id = ?", idStr).Scan(&identifier, &name)
		require.NoError(t, err)
		assert.Equal(t, "atlas", identifier)
		// Name defaults to the identifier when not given.
		assert.Equal(t, "atlas", name)
	})

	t.Run("json mode returns the envelope", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, RegisterCmd(),
			"--identifier", "zephyr", "--name", "Zephyr Rewrite", "--json")
		require.NoError(t, err)

		data := cli.Data(t, cli.ParseJSON(t, output))
		assert.Equal(t, "zephyr", data["identifier"])
		assert.Equal(t, "Zephyr Rewrite", data["name"])
		assert.NotZero(t, data["id"])
	})

	t.Run("list shows both projects", func(t *testing.T) {
		output, err := cli.ExecuteCLICommand(t, ListCmd(), "--json")
		require.NoError(t, err)

		rows := cli.Rows(t, cli.ParseJSON(t, output))
		require.Len(t, rows, 2)

		identifiers := make([]string, 0, len(rows))
		for _, row := range rows {
			identifiers = append(identifiers, row.(map[string]interface{})["identifier"].(string))
		}
		assert.Contains(t, identifiers, "atlas")
		assert.Contains(t, identifiers, "zephyr")
	})
}

func TestShowProject_Integration(t *testing.T) {
	cli.SetupCLITest(t)

	_, err := cli.ExecuteCLICommand(t, RegisterCmd(), "--identifier", "atlas", "--quiet")
	require.NoError(t, err)

	output, err := cli.ExecuteCLICommand(t, ShowCmd(), "--project", "atlas", "--json")
	require.NoError(t, err)

	data := cli.Data(t, cli.ParseJSON(t, output))
	assert.Equal(t, "atlas", data["identifier"])

	counts, ok := data["counts"].(map[string]interface{})
	require.True(t, ok, "show payload carries entity counts")
	assert.EqualValues(t, 0, counts["epics"])
	assert.EqualValues(t, 0, counts["stories"])
}
