package cli

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the root command with args and captures stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	execErr := cmd.Execute()

	w.Close()
	os.Stdout = old

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out), execErr
}

func TestRootCmd_Structure(t *testing.T) {
	cmd := NewRootCmd()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	assert.True(t, names["scan"], "root command should expose scan")
	assert.True(t, names["find"], "root command should expose find")
	assert.True(t, names["snapshots"], "root command should expose snapshots")
}

func TestScanCmd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("world"), 0o644))

	t.Run("prints a parseable JSON document", func(t *testing.T) {
		out, err := runCommand(t, "scan", root, "--depth", "-1")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))

		require.Contains(t, doc, "a.txt")
		require.Contains(t, doc, "sub")

		file, ok := doc["a.txt"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(5), file["size"])
		assert.Contains(t, file, "modified_time")

		sub, ok := doc["sub"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, sub, "b.txt")
	})

	t.Run("depth zero prints an empty document", func(t *testing.T) {
		out, err := runCommand(t, "scan", root, "--depth", "0")
		require.NoError(t, err)
		assert.Equal(t, "{}\n", out)
	})

	t.Run("human readable sizes are strings", func(t *testing.T) {
		out, err := runCommand(t, "scan", root, "--human-readable")
		require.NoError(t, err)

		var doc map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &doc))

		file, ok := doc["a.txt"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "5 B", file["size"])
	})

	t.Run("missing path fails", func(t *testing.T) {
		_, err := runCommand(t, "scan", filepath.Join(root, "missing"))
		assert.Error(t, err)
	})
}

func TestSnapshotWorkflow(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hi"), 0o644))
	dbPath := filepath.Join(t.TempDir(), "snapshots.db")

	t.Run("list is empty before any snapshot", func(t *testing.T) {
		out, err := runCommand(t, "snapshots", "list", "--db", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, "no snapshots stored")
	})

	t.Run("scan with snapshot stores the tree", func(t *testing.T) {
		_, err := runCommand(t, "scan", root, "--snapshot", "--db", dbPath)
		require.NoError(t, err)

		out, err := runCommand(t, "snapshots", "list", "--db", dbPath)
		require.NoError(t, err)
		assert.Contains(t, out, root)
	})

	t.Run("find from snapshot resolves paths without rescanning", func(t *testing.T) {
		nested := filepath.Join(root, "deep")
		require.NoError(t, os.Mkdir(nested, 0o755))

		_, err := runCommand(t, "scan", root, "--snapshot", "--db", dbPath)
		require.NoError(t, err)

		// Remove the directory on disk so only the snapshot can resolve it
		require.NoError(t, os.Remove(nested))

		out, err := runCommand(t, "find", "--from-snapshot", "--db", dbPath, nested)
		require.NoError(t, err)
		assert.Contains(t, out, nested)
	})

	t.Run("backup writes a copy of the database", func(t *testing.T) {
		dest := t.TempDir()

		out, err := runCommand(t, "snapshots", "backup", "--db", dbPath, "--dest", dest)
		require.NoError(t, err)
		assert.Contains(t, out, dest)

		entries, err := os.ReadDir(dest)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, entries[0].Name(), "snapshots_backup_")
	})
}

func TestFindCmd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))

	t.Run("exact lookup prints the directory", func(t *testing.T) {
		target := filepath.Join(root, "a", "b")
		out, err := runCommand(t, "find", root, target)
		require.NoError(t, err)
		assert.Contains(t, out, target)
	})

	t.Run("prefix lookup prints every match", func(t *testing.T) {
		out, err := runCommand(t, "find", root, filepath.Join(root, "a"), "--prefix")
		require.NoError(t, err)
		assert.Contains(t, out, filepath.Join(root, "a"))
		assert.Contains(t, out, filepath.Join(root, "a", "b"))
	})

	t.Run("no match errors", func(t *testing.T) {
		_, err := runCommand(t, "find", root, "/definitely/not/there")
		assert.Error(t, err)
	})
}
