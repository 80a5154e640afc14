package trees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryNode_JSONRoundTrip(t *testing.T) {
	root := NewDirectoryNode("/data", nil)
	root.Metadata = Metadata{NodeType: Directory, ModifiedAt: time.Now()}

	sub, err := root.AddChildDirectory("photos")
	require.NoError(t, err)

	sub.AddFile(&FileNode{
		Path:      "/data/photos/cat.jpg",
		Name:      "cat.jpg",
		Extension: ".jpg",
		Metadata: Metadata{
			Size:       4096,
			ModifiedAt: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			NodeType:   File,
		},
	})

	data, err := root.MarshalJSON()
	require.NoError(t, err)

	restored := &DirectoryNode{}
	require.NoError(t, restored.UnMarshalJSON(data))

	assert.Equal(t, "/data", restored.Path)
	require.Len(t, restored.Children, 1)

	photos := restored.Children[0]
	assert.Equal(t, "/data/photos", photos.Path)
	assert.Equal(t, root.Path, photos.Parent.Path, "parent pointers should be restored")

	require.Len(t, photos.Files, 1)
	file := photos.Files[0]
	assert.Equal(t, "cat.jpg", file.Name)
	assert.Equal(t, int64(4096), file.Metadata.Size)
	assert.Equal(t, File, file.Metadata.NodeType)
}

func TestDirectoryNode_Structure(t *testing.T) {
	t.Run("Name returns the path base", func(t *testing.T) {
		node := NewDirectoryNode("/a/b/c", nil)
		assert.Equal(t, "c", node.Name())
	})

	t.Run("AddChildDirectory builds the child path from the parent", func(t *testing.T) {
		parent := NewDirectoryNode("/a", nil)
		child, err := parent.AddChildDirectory("b")
		require.NoError(t, err)

		assert.Equal(t, "/a/b", child.Path)
		assert.Equal(t, parent, child.Parent)
		assert.Contains(t, parent.Children, child)
	})

	t.Run("AddFile appends to the Files slice", func(t *testing.T) {
		node := NewDirectoryNode("/a", nil)
		node.AddFile(&FileNode{Path: "/a/x.txt", Name: "x.txt"})
		node.AddFile(&FileNode{Path: "/a/y.txt", Name: "y.txt"})

		require.Len(t, node.Files, 2)
		assert.Equal(t, "x.txt", node.Files[0].Name)
	})

	t.Run("String renders an indented listing", func(t *testing.T) {
		node := NewDirectoryNode("/a", nil)
		node.AddChildDirectory("b")
		node.AddFile(&FileNode{Path: "/a/x.txt", Name: "x.txt"})

		out := node.String()
		assert.Contains(t, out, "a")
		assert.Contains(t, out, "b")
		assert.Contains(t, out, "x.txt")
	})
}
