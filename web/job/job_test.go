package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dboika/folio/config"
	"github.com/dboika/folio/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearLogsJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	require.NoError(t, os.WriteFile(path+".prev", []byte("ancient\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("line 1\nline 2\n"), 0o644))

	NewClearLogsJob(path).Run()

	prev, err := os.ReadFile(path + ".prev")
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", string(prev))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestClearLogsJobMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "folio.log")
	assert.NotPanics(t, NewClearLogsJob(path).Run)
	_, err := os.Stat(path + ".prev")
	assert.True(t, os.IsNotExist(err))
}

func TestCheckpointJob(t *testing.T) {
	cfg := config.GetDefaultDatabaseConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "folio.db")
	db, err := database.Open(cfg)
	require.NoError(t, err)
	defer database.Close(db)

	assert.NotPanics(t, NewCheckpointJob(db).Run)
}
