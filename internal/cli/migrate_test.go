package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommand_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data", "navegante.db")

	for i := 0; i < 2; i++ {
		buf := &bytes.Buffer{}
		cmd := NewMigrateCommand(&RootOptions{Format: "json", Database: dbPath})
		cmd.SetOut(buf)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{})
		require.NoError(t, cmd.Execute(), "run %d", i)

		var response struct {
			Status string        `json:"status"`
			Data   MigrateResult `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &response))
		assert.Equal(t, "ok", response.Status)
		assert.Equal(t, dbPath, response.Data.Path)
		assert.Equal(t, 2, response.Data.SchemaVersion)
	}
}

func TestMigrateCommand_Text(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "navegante.db")
	buf := &bytes.Buffer{}
	cmd := NewMigrateCommand(&RootOptions{Format: "text", Database: dbPath})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "Database "+dbPath+" is at schema version 2\n", buf.String())
}
