package render

import (
	"strings"
	"testing"
	"time"

	"github.com/ZanzyTHEbar/treescope/treescope/trees"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(name string, size int64, modified time.Time) *trees.FileNode {
	return &trees.FileNode{
		Path: "/fixture/" + name,
		Name: name,
		Metadata: trees.Metadata{
			Size:       size,
			ModifiedAt: modified,
			NodeType:   trees.File,
		},
	}
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1234, "1.2 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
		{3 * 1024 * 1024 * 1024 * 1024 * 1024, "3.0 PB"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, HumanSize(tc.size), "size %d", tc.size)
	}
}

func TestHumanTime(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 42, 0, time.UTC)
	assert.Equal(t, "2024-03-07 09:05", HumanTime(ts))
}

func TestFileEntry(t *testing.T) {
	modified := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)

	t.Run("raw mode emits bytes and unix seconds", func(t *testing.T) {
		entry := FileEntry(newTestFile("a.txt", 2048, modified), false)

		size, ok := entry.Get("size")
		require.True(t, ok)
		assert.Equal(t, int64(2048), size)

		mtime, ok := entry.Get("modified_time")
		require.True(t, ok)
		assert.Equal(t, modified.Unix(), mtime)
	})

	t.Run("human mode emits formatted strings", func(t *testing.T) {
		entry := FileEntry(newTestFile("a.txt", 2048, modified), true)

		size, ok := entry.Get("size")
		require.True(t, ok)
		assert.Equal(t, "2.0 KB", size)

		mtime, ok := entry.Get("modified_time")
		require.True(t, ok)
		assert.Equal(t, "2024-01-15 12:30", mtime)
	})

	t.Run("file without readable metadata renders empty", func(t *testing.T) {
		file := &trees.FileNode{Path: "/fixture/broken.txt", Name: "broken.txt"}
		entry := FileEntry(file, false)
		assert.Equal(t, 0, entry.Len())
	})
}

func TestTree(t *testing.T) {
	modified := time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)

	t.Run("interleaves directories and files case-insensitively", func(t *testing.T) {
		root := trees.NewDirectoryNode("/fixture", nil)
		root.AddChildDirectory("Zoo")
		root.AddChildDirectory("apps")
		root.AddFile(newTestFile("beta.txt", 1, modified))
		root.AddFile(newTestFile("Alpha.txt", 1, modified))

		out, err := ToJSON(Tree(root, false))
		require.NoError(t, err)

		doc := string(out)
		order := []string{`"Alpha.txt"`, `"apps"`, `"beta.txt"`, `"Zoo"`}
		last := -1
		for _, key := range order {
			idx := strings.Index(doc, key)
			require.GreaterOrEqual(t, idx, 0, "expected %s in output", key)
			assert.Greater(t, idx, last, "%s out of order", key)
			last = idx
		}
	})

	t.Run("nil and empty nodes render as empty objects", func(t *testing.T) {
		out, err := ToJSON(Tree(nil, false))
		require.NoError(t, err)
		assert.Equal(t, "{}", string(out))

		empty := trees.NewDirectoryNode("/fixture/empty", nil)
		out, err = ToJSON(Tree(empty, false))
		require.NoError(t, err)
		assert.Equal(t, "{}", string(out))
	})
}

func TestToJSON(t *testing.T) {
	modified := time.Unix(1700000000, 0)

	t.Run("uses four space indentation", func(t *testing.T) {
		root := trees.NewDirectoryNode("/fixture", nil)
		root.AddChildDirectory("A")
		root.AddFile(newTestFile("b.txt", 10, modified))

		out, err := ToJSON(Tree(root, false))
		require.NoError(t, err)

		expected := "{\n" +
			"    \"A\": {},\n" +
			"    \"b.txt\": {\n" +
			"        \"size\": 10,\n" +
			"        \"modified_time\": 1700000000\n" +
			"    }\n" +
			"}"
		assert.Equal(t, expected, string(out))
	})

	t.Run("does not escape html characters in names", func(t *testing.T) {
		root := trees.NewDirectoryNode("/fixture", nil)
		root.AddFile(newTestFile("a&b<c>.txt", 1, modified))

		out, err := ToJSON(Tree(root, false))
		require.NoError(t, err)

		assert.Contains(t, string(out), `"a&b<c>.txt"`)
		assert.NotContains(t, string(out), `\u0026`)
		assert.NotContains(t, string(out), `\u003c`)
		assert.NotContains(t, string(out), `\u003e`)
	})
}
