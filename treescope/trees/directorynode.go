package trees

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// DirectoryNode represents a single directory in the DirectoryTree.
// Children holds subdirectories, Files holds the regular files directly inside.
type DirectoryNode struct {
	Path     string
	Type     NodeType
	Parent   *DirectoryNode
	Children []*DirectoryNode
	Files    []*FileNode
	Metadata Metadata
}

// FileNode represents a regular file inside a DirectoryNode
type FileNode struct {
	Path      string
	Name      string
	Extension string
	Metadata  Metadata
}

// NewDirectoryNode creates a directory node with the given path and parent
func NewDirectoryNode(path string, parent *DirectoryNode) *DirectoryNode {
	return &DirectoryNode{
		Path:     filepath.Clean(path),
		Type:     Directory,
		Parent:   parent,
		Children: []*DirectoryNode{},
		Files:    []*FileNode{},
	}
}

// AddFile appends a file node to the directory
func (node *DirectoryNode) AddFile(file *FileNode) {
	node.Files = append(node.Files, file)
}

// AddChildDirectory creates and attaches a child directory named name
func (node *DirectoryNode) AddChildDirectory(name string) (*DirectoryNode, error) {
	if name == "" {
		return nil, fmt.Errorf("directory name cannot be empty")
	}
	child := NewDirectoryNode(filepath.Join(node.Path, name), node)
	node.Children = append(node.Children, child)
	return child, nil
}

// Name returns the base name of the directory
func (node *DirectoryNode) Name() string {
	return filepath.Base(node.Path)
}

// GetPath implements TreeNode
func (node *DirectoryNode) GetPath() string { return node.Path }

// GetName implements TreeNode
func (node *DirectoryNode) GetName() string { return node.Name() }

// GetMetadata implements TreeNode
func (node *DirectoryNode) GetMetadata() *Metadata { return &node.Metadata }

// IsDirectory implements TreeNode
func (node *DirectoryNode) IsDirectory() bool { return true }

// GetPath implements TreeNode
func (f *FileNode) GetPath() string { return f.Path }

// GetName implements TreeNode
func (f *FileNode) GetName() string { return f.Name }

// GetMetadata implements TreeNode
func (f *FileNode) GetMetadata() *Metadata { return &f.Metadata }

// IsDirectory implements TreeNode
func (f *FileNode) IsDirectory() bool { return false }

// String renders the subtree as an indented listing, directories first
func (node *DirectoryNode) String() string {
	var sb strings.Builder
	node.writeString(&sb, 0)
	return sb.String()
}

func (node *DirectoryNode) writeString(sb *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s/\n", indent, node.Name())
	for _, child := range node.Children {
		child.writeString(sb, depth+1)
	}
	for _, file := range node.Files {
		fmt.Fprintf(sb, "%s  %s\n", indent, file.Name)
	}
}

// directoryNodeJSON is the wire shape for DirectoryNode serialization
type directoryNodeJSON struct {
	Path     string               `json:"path"`
	Type     string               `json:"type"`
	Metadata Metadata             `json:"metadata"`
	Files    []fileNodeJSON       `json:"files,omitempty"`
	Children []*directoryNodeJSON `json:"children,omitempty"`
}

type fileNodeJSON struct {
	Path      string   `json:"path"`
	Name      string   `json:"name"`
	Extension string   `json:"extension"`
	Metadata  Metadata `json:"metadata"`
}

func (node *DirectoryNode) toJSONNode() *directoryNodeJSON {
	out := &directoryNodeJSON{
		Path:     node.Path,
		Type:     node.Type.String(),
		Metadata: node.Metadata,
	}
	for _, file := range node.Files {
		out.Files = append(out.Files, fileNodeJSON{
			Path:      file.Path,
			Name:      file.Name,
			Extension: file.Extension,
			Metadata:  file.Metadata,
		})
	}
	for _, child := range node.Children {
		out.Children = append(out.Children, child.toJSONNode())
	}
	return out
}

func (node *DirectoryNode) fromJSONNode(in *directoryNodeJSON, parent *DirectoryNode) {
	node.Path = in.Path
	node.Type = StringToNodeType(in.Type)
	node.Parent = parent
	node.Metadata = in.Metadata
	node.Children = make([]*DirectoryNode, 0, len(in.Children))
	node.Files = make([]*FileNode, 0, len(in.Files))

	for _, file := range in.Files {
		node.Files = append(node.Files, &FileNode{
			Path:      file.Path,
			Name:      file.Name,
			Extension: file.Extension,
			Metadata:  file.Metadata,
		})
	}
	for _, child := range in.Children {
		childNode := &DirectoryNode{}
		childNode.fromJSONNode(child, node)
		node.Children = append(node.Children, childNode)
	}
}

// MarshalJSON serializes the subtree, including file metadata, recursively
func (node *DirectoryNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(node.toJSONNode())
}

// UnMarshalJSON reconstructs the subtree, restoring parent pointers
func (node *DirectoryNode) UnMarshalJSON(data []byte) error {
	var in directoryNodeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("error unmarshalling directory node: %w", err)
	}
	node.fromJSONNode(&in, nil)
	return nil
}
