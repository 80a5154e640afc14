package trees

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

type DirectoryTree struct {
	Root      *DirectoryNode
	pathIndex *PatriciaPathIndex // Fast path lookups
	metrics   *TreeMetrics
	logger    *slog.Logger
	mu        sync.Mutex
}

// TreeOption allows for customization of DirectoryTree
type TreeOption func(*DirectoryTree)

// WithRoot sets the root directory for the DirectoryTree
func WithRoot(root string) TreeOption {
	return func(dt *DirectoryTree) {
		dt.Root = NewDirectoryNode(root, nil)
	}
}

// WithRootNode adopts an already built subtree as the tree root
func WithRootNode(root *DirectoryNode) TreeOption {
	return func(dt *DirectoryTree) {
		dt.Root = root
	}
}

// WithLogger sets a custom logger
func WithLogger(logger *slog.Logger) TreeOption {
	return func(dt *DirectoryTree) {
		dt.logger = logger
	}
}

func NewDirectoryTree(opts ...TreeOption) *DirectoryTree {
	dt := &DirectoryTree{
		metrics: &TreeMetrics{
			OperationCounts: make(map[string]int64),
			LastUpdated:     time.Now(),
		},
		logger:    slog.Default(),
		pathIndex: NewPatriciaPathIndex(),
		Root:      NewDirectoryNode("/", nil),
	}

	for _, opt := range opts {
		opt(dt)
	}

	return dt
}

// Walk implements TreeWalker interface with context and metrics
func (dt *DirectoryTree) Walk(ctx context.Context) error {
	start := time.Now()
	defer func() {
		dt.mu.Lock()
		dt.metrics.ProcessingTime = time.Since(start)
		dt.metrics.LastUpdated = time.Now()
		dt.mu.Unlock()
	}()

	dt.logger.Info("starting tree walk",
		"root", dt.Root.Path,
		"operation", "walk",
		"timestamp", start)

	return dt.walkNode(ctx, dt.Root, 0)
}

func (dt *DirectoryTree) walkNode(ctx context.Context, node *DirectoryNode, depth int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	dt.mu.Lock()
	dt.metrics.TotalNodes++
	dt.metrics.MaxDepth = max(dt.metrics.MaxDepth, depth)
	dt.mu.Unlock()

	for _, child := range node.Children {
		if err := dt.walkNode(ctx, child, depth+1); err != nil {
			return err
		}
	}

	return nil
}

// Index inserts every directory node reachable from Root into the path index.
// Called after adopting a scanned subtree via WithRootNode.
func (dt *DirectoryTree) Index() error {
	if dt.Root == nil {
		return fmt.Errorf("cannot index a tree without a root")
	}
	return dt.indexNode(dt.Root)
}

func (dt *DirectoryTree) indexNode(node *DirectoryNode) error {
	if err := dt.AddNode(node); err != nil {
		return err
	}
	for _, child := range node.Children {
		if err := dt.indexNode(child); err != nil {
			return err
		}
	}
	return nil
}

// AddFile adds a file node to the tree at a specified path.
// If intermediate directories don't exist, it creates them.
func (tree *DirectoryTree) AddFile(path string, filePath string, size int64, modifiedAt time.Time) error {
	targetNode := tree.FindOrCreatePath(splitPathSegments(path))

	fileNode := &FileNode{
		Path:      filePath,
		Name:      filepath.Base(filePath),
		Extension: filepath.Ext(filePath),
	}
	targetNode.AddFile(fileNode)

	// Update the directory's metadata and add to indexes
	targetNode.Metadata.Size += size
	targetNode.Metadata.ModifiedAt = modifiedAt

	if err := tree.AddNode(targetNode); err != nil {
		return fmt.Errorf("failed to re-index directory %s after adding file: %w", targetNode.Path, err)
	}

	return nil
}

// AddDirectory adds a directory node to the tree at a specified path
func (tree *DirectoryTree) AddDirectory(path string) (*DirectoryNode, error) {
	if path == "" {
		return nil, fmt.Errorf("directory path cannot be empty")
	}

	node := tree.Root
	segments := splitPathSegments(path)
	for _, segment := range segments {
		found := false
		candidateFull := filepath.Clean(filepath.Join(node.Path, segment))
		for _, child := range node.Children {
			if child.Path == candidateFull && child.Type == Directory {
				node = child
				found = true
				break
			}
		}
		if !found {
			// Create missing directories in path with full-path semantics
			newDir := &DirectoryNode{
				Path:     candidateFull,
				Type:     Directory,
				Parent:   node,
				Children: []*DirectoryNode{},
				Files:    []*FileNode{},
			}
			node.Children = append(node.Children, newDir)

			if err := tree.AddNode(newDir); err != nil {
				return nil, fmt.Errorf("failed to index new directory %s: %w", candidateFull, err)
			}

			node = newDir
		}
	}
	return node, nil
}

// FindOrCreatePath traverses the tree to find or create a directory path
func (tree *DirectoryTree) FindOrCreatePath(path []string) *DirectoryNode {
	current := tree.Root
	for _, dir := range path {
		candidateFull := filepath.Clean(filepath.Join(current.Path, dir))
		var next *DirectoryNode
		for _, child := range current.Children {
			if child.Path == candidateFull {
				next = child
				break
			}
		}
		if next == nil {
			next, _ = current.AddChildDirectory(dir)
		}
		current = next
	}
	return current
}

// Flatten recursively collects all directories and files in a flat list of paths
func (tree *DirectoryTree) Flatten() []string {
	var paths []string
	tree.flattenNode(tree.Root, tree.Root.Path, &paths)
	return paths
}

// flattenNode is a helper function for Flatten, processing each node recursively
func (tree *DirectoryTree) flattenNode(node *DirectoryNode, currentPath string, paths *[]string) {
	*paths = append(*paths, currentPath)

	for _, child := range node.Children {
		// child.Path is already a full path
		tree.flattenNode(child, child.Path, paths)
	}

	for _, file := range node.Files {
		*paths = append(*paths, file.Path)
	}
}

// GetMetrics returns current metrics with concurrency safety
func (dt *DirectoryTree) GetMetrics(ctx context.Context) (*TreeMetrics, error) {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Return a copy to prevent external modifications
	return &TreeMetrics{
		TotalNodes:      dt.metrics.TotalNodes,
		TotalFiles:      dt.metrics.TotalFiles,
		TotalSize:       dt.metrics.TotalSize,
		MaxDepth:        dt.metrics.MaxDepth,
		LastUpdated:     dt.metrics.LastUpdated,
		ProcessingTime:  dt.metrics.ProcessingTime,
		OperationCounts: maps.Clone(dt.metrics.OperationCounts),
	}, nil
}

func (tree *DirectoryTree) String() string {
	return tree.Root.String()
}

func (tree *DirectoryTree) MarshalJSON() ([]byte, error) {
	return tree.Root.MarshalJSON()
}

func (tree *DirectoryTree) UnMarshalJSON(data []byte) error {
	if tree.Root == nil {
		tree.Root = &DirectoryNode{}
	}
	return tree.Root.UnMarshalJSON(data)
}

// FindByPath performs O(k) path lookup using the patricia tree
func (dt *DirectoryTree) FindByPath(path string) (*DirectoryNode, bool) {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	if dt.pathIndex != nil {
		return dt.pathIndex.Lookup(path)
	}

	// Fallback to traditional search
	node := dt.findNodeByPath(dt.Root, path)
	return node, node != nil
}

// FindByPathPrefix finds all nodes with paths starting with the given prefix
func (dt *DirectoryTree) FindByPathPrefix(prefix string) []*DirectoryNode {
	dt.mu.Lock()
	defer dt.mu.Unlock()

	if dt.pathIndex != nil {
		return dt.pathIndex.PrefixLookup(prefix)
	}

	// Fallback to traditional search
	var results []*DirectoryNode
	dt.walkAndCollect(dt.Root, func(node *DirectoryNode) bool {
		return strings.HasPrefix(node.Path, prefix)
	}, &results)
	return results
}

// AddNode adds a directory node to the path index
func (dt *DirectoryTree) AddNode(node *DirectoryNode) error {
	if dt.pathIndex != nil {
		if err := dt.pathIndex.Insert(node); err != nil {
			dt.logger.Error("Failed to insert node into path index", "error", err, "path", node.Path)
		}
	}
	return nil
}

// RemoveNode removes a directory node from the path index
func (dt *DirectoryTree) RemoveNode(path string) bool {
	if dt.pathIndex != nil {
		return dt.pathIndex.Remove(path)
	}
	return false
}

// findNodeByPath performs traditional recursive path search (fallback)
func (dt *DirectoryTree) findNodeByPath(node *DirectoryNode, targetPath string) *DirectoryNode {
	if node == nil {
		return nil
	}

	if node.Path == targetPath {
		return node
	}

	for _, child := range node.Children {
		if result := dt.findNodeByPath(child, targetPath); result != nil {
			return result
		}
	}

	return nil
}

// walkAndCollect performs traditional recursive walk with predicate (fallback)
func (dt *DirectoryTree) walkAndCollect(node *DirectoryNode, predicate func(*DirectoryNode) bool, results *[]*DirectoryNode) {
	if node == nil {
		return
	}

	if predicate(node) {
		*results = append(*results, node)
	}

	for _, child := range node.Children {
		dt.walkAndCollect(child, predicate, results)
	}
}

// splitPathSegments splits a filesystem path into clean, non-empty segments.
// It avoids misuse of filepath.SplitList which is for PATH lists, not components.
func splitPathSegments(p string) []string {
	cleaned := filepath.Clean(p)
	slashed := filepath.ToSlash(cleaned)
	parts := strings.Split(slashed, "/")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s == "" || s == "." {
			continue
		}
		out = append(out, s)
	}
	return out
}
