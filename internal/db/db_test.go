package db

import (
	"context"
	"encoding/json"
	"io/fs"
	"strings"
	"testing"

	"github.com/forumhub/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsArePairedCommandLists(t *testing.T) {
	entries, err := fs.ReadDir(migrations, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	names := map[string]bool{}
	for _, e := range entries {
		names[e.Name()] = true

		data, err := fs.ReadFile(migrations, "migrations/"+e.Name())
		require.NoError(t, err)
		var commands []map[string]any
		require.NoError(t, json.Unmarshal(data, &commands), e.Name())
		assert.NotEmpty(t, commands, e.Name())
	}

	for name := range names {
		if strings.HasSuffix(name, ".up.json") {
			assert.True(t, names[strings.TrimSuffix(name, ".up.json")+".down.json"], "missing down for %s", name)
		}
	}
}

func TestConnectRequiresURI(t *testing.T) {
	_, err := Connect(context.Background(), config.DatabaseConfig{})
	assert.EqualError(t, err, "mongo uri is required")
}
