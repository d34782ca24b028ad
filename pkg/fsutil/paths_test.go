package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataDir_HonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := GetDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, AppName), got)

	db, err := GetDatabasePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, AppName, "catalog.db"), db)
}
