package devenv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "go.mod"))
	require.NoError(t, err)

	resolved, err := ResolvePath("<dev_state>/snapshots.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "snapshots.db"), resolved)

	resolved, err = ResolvePath("relative/file.db")
	require.NoError(t, err)
	require.Equal(t, "relative/file.db", resolved)
}

func TestIsWorkspaceRoot(t *testing.T) {
	dir := t.TempDir()
	require.False(t, isWorkspaceRoot(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module other\n"), 0600))
	require.False(t, isWorkspaceRoot(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module marketwatch-backend\n\ngo 1.22.2\n"), 0600))
	require.True(t, isWorkspaceRoot(dir))
}
