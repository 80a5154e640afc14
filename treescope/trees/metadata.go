package trees

import (
	"fmt"
	"os"
	"os/user"
	"strconv"
	"syscall"
	"time"
)

// Metadata holds additional information for each node in the DirectoryTree
type Metadata struct {
	Size        int64       `json:"size"`
	ModifiedAt  time.Time   `json:"modified_at"`
	CreatedAt   time.Time   `json:"created_at"`
	NodeType    NodeType    `json:"node_type"`
	Permissions os.FileMode `json:"permissions"`
	Owner       string      `json:"owner"`
	Tags        []string    `json:"tags"`
}

type NodeType int

const (
	Directory NodeType = iota
	File
)

func NewMetadata(fileinfo os.FileInfo) Metadata {
	// Get file permissions and modification time
	permissions := fileinfo.Mode()
	modifiedAt := fileinfo.ModTime()

	// For Linux, creation time is not typically available. Use zero time or alternative method if needed.
	createdAt := time.Time{}

	// Set NodeType based on file type
	var nodeType NodeType
	if fileinfo.IsDir() {
		nodeType = Directory
	} else {
		nodeType = File
	}

	return Metadata{
		Size:        fileinfo.Size(),
		ModifiedAt:  modifiedAt,
		CreatedAt:   createdAt,
		NodeType:    nodeType,
		Permissions: permissions,
		Owner:       getFileOwner(fileinfo),
		Tags:        []string{},
	}
}

// Validate checks that the metadata describes a stat-able filesystem entry
func (m *Metadata) Validate() error {
	if m.Size < 0 {
		return fmt.Errorf("size cannot be negative")
	}
	if m.ModifiedAt.IsZero() {
		return fmt.Errorf("modified time cannot be zero")
	}
	if m.NodeType != File && m.NodeType != Directory {
		return fmt.Errorf("invalid node type: %s", m.NodeType.String())
	}
	return nil
}

// Convert NodeType to String
func (n NodeType) String() string {
	switch n {
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return "unknown"
	}
}

// Map string to NodeType
func StringToNodeType(s string) NodeType {
	switch s {
	case "directory":
		return Directory
	case "file":
		return File
	default:
		return -1
	}
}

// getFileOwner retrieves the owner name for a file on Unix-like systems
func getFileOwner(fileinfo os.FileInfo) string {
	// Try to get the owner name from file system info
	if stat, ok := fileinfo.Sys().(*syscall.Stat_t); ok {
		if u, err := user.LookupId(strconv.Itoa(int(stat.Uid))); err == nil {
			return u.Username
		}
		// If lookup fails, return the UID as a string
		return strconv.Itoa(int(stat.Uid))
	}

	// Fallback if we can't get system info
	return "unknown"
}
