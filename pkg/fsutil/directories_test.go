package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureFileDir(t *testing.T) {
	root := t.TempDir()

	tests := []struct {
		name string
		file string
	}{
		{name: "game directory", file: filepath.Join(root, "games", "gothic", "setup.exe")},
		{name: "nested extras", file: filepath.Join(root, "games", "witcher", "extras", "manual.pdf")},
		{name: "existing parent", file: filepath.Join(root, "catalog.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, EnsureFileDir(tt.file))
			dir := filepath.Dir(tt.file)
			assert.DirExists(t, dir)
			assert.NoFileExists(t, tt.file)

			if runtime.GOOS != "windows" && dir != root {
				info, err := os.Stat(dir)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(DirModeDefault), info.Mode().Perm()&os.FileMode(DirModeDefault))
			}
		})
	}
}

func TestEnsureDir_ReadOnlyParent(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permissions are not enforced")
	}

	readonly := filepath.Join(t.TempDir(), "readonly")
	require.NoError(t, os.Mkdir(readonly, 0o555))

	assert.Error(t, EnsureDir(filepath.Join(readonly, "games")))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "setup.exe")
	require.NoError(t, os.WriteFile(file, []byte("x"), FileModeDefault))

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "missing"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FileExists(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsReadable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "manual.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), FileModeDefault))

	assert.True(t, IsReadable(file))
	assert.True(t, IsReadable(dir))
	assert.False(t, IsReadable(filepath.Join(dir, "missing")))
}
