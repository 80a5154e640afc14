package trees

import (
	"context"
	"time"
)

// TreeNode represents any node in a tree structure
type TreeNode interface {
	GetPath() string
	GetName() string
	GetMetadata() *Metadata
	IsDirectory() bool
}

// TreeWalker defines operations for traversing tree structures
type TreeWalker interface {
	Walk(ctx context.Context) error
}

// TreeMetrics holds statistical information about the tree
type TreeMetrics struct {
	TotalNodes      int64
	TotalFiles      int64
	TotalSize       int64
	MaxDepth        int
	LastUpdated     time.Time
	ProcessingTime  time.Duration
	OperationCounts map[string]int64
}
