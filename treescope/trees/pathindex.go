package trees

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/armon/go-radix"
)

// PathIndexStats tracks performance metrics for the path index
type PathIndexStats struct {
	TotalNodes       int64
	PathLookups      int64
	PrefixLookups    int64
	Insertions       int64
	Deletions        int64
	AveragePathDepth float64
	mu               sync.RWMutex
}

// PatriciaPathIndex provides O(k) path lookups using a compressed trie (patricia tree)
// where k is the length of the path being searched, not the number of nodes in the tree
type PatriciaPathIndex struct {
	tree  *radix.Tree               // Core patricia tree for path storage
	mu    sync.RWMutex              // Read-write mutex for concurrent access
	stats *PathIndexStats           // Performance tracking
	nodes map[string]*DirectoryNode // Direct path -> node mapping for verification
}

// NewPatriciaPathIndex creates a new patricia tree-based path index
func NewPatriciaPathIndex() *PatriciaPathIndex {
	return &PatriciaPathIndex{
		tree:  radix.New(),
		stats: &PathIndexStats{},
		nodes: make(map[string]*DirectoryNode),
	}
}

// Insert adds a directory node to the path index
func (idx *PatriciaPathIndex) Insert(node *DirectoryNode) error {
	if node == nil {
		return fmt.Errorf("invalid input: node cannot be nil")
	}

	path := idx.normalizePath(node.Path)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, updated := idx.tree.Insert(path, node)
	idx.nodes[path] = node

	idx.stats.mu.Lock()
	if !updated {
		idx.stats.TotalNodes++
	}
	idx.stats.Insertions++
	idx.updateAverageDepth()
	idx.stats.mu.Unlock()

	slog.Debug("Path index insertion completed",
		"path", path,
		"was_update", updated)

	return nil
}

// Lookup finds a directory node by its exact path
func (idx *PatriciaPathIndex) Lookup(path string) (*DirectoryNode, bool) {
	normalizedPath := idx.normalizePath(path)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	value, found := idx.tree.Get(normalizedPath)

	idx.stats.mu.Lock()
	idx.stats.PathLookups++
	idx.stats.mu.Unlock()

	if !found {
		slog.Debug("Path lookup miss", "path", normalizedPath)
		return nil, false
	}

	return value.(*DirectoryNode), true
}

// PrefixLookup finds all directory nodes whose paths start with the given prefix
func (idx *PatriciaPathIndex) PrefixLookup(prefix string) []*DirectoryNode {
	normalizedPrefix := idx.normalizePath(prefix)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var results []*DirectoryNode

	idx.tree.WalkPrefix(normalizedPrefix, func(key string, value interface{}) bool {
		if node, ok := value.(*DirectoryNode); ok {
			results = append(results, node)
		}
		return false // Continue walking
	})

	idx.stats.mu.Lock()
	idx.stats.PrefixLookups++
	idx.stats.mu.Unlock()

	slog.Debug("Prefix lookup completed",
		"prefix", normalizedPrefix,
		"results_count", len(results))

	return results
}

// Remove deletes a directory node from the path index
func (idx *PatriciaPathIndex) Remove(path string) bool {
	normalizedPath := idx.normalizePath(path)

	idx.mu.Lock()
	defer idx.mu.Unlock()

	_, deleted := idx.tree.Delete(normalizedPath)
	if deleted {
		delete(idx.nodes, normalizedPath)
	}

	idx.stats.mu.Lock()
	if deleted {
		idx.stats.TotalNodes--
	}
	idx.stats.Deletions++
	idx.updateAverageDepth()
	idx.stats.mu.Unlock()

	return deleted
}

// Size returns the total number of nodes in the path index
func (idx *PatriciaPathIndex) Size() int64 {
	idx.stats.mu.RLock()
	defer idx.stats.mu.RUnlock()
	return idx.stats.TotalNodes
}

// GetStats returns a copy of the current path index statistics
func (idx *PatriciaPathIndex) GetStats() PathIndexStats {
	idx.stats.mu.RLock()
	defer idx.stats.mu.RUnlock()

	return PathIndexStats{
		TotalNodes:       idx.stats.TotalNodes,
		PathLookups:      idx.stats.PathLookups,
		PrefixLookups:    idx.stats.PrefixLookups,
		Insertions:       idx.stats.Insertions,
		Deletions:        idx.stats.Deletions,
		AveragePathDepth: idx.stats.AveragePathDepth,
	}
}

// normalizePath ensures consistent path formatting for the index
func (idx *PatriciaPathIndex) normalizePath(path string) string {
	// First replace backslashes with forward slashes (for Windows paths)
	normalized := strings.ReplaceAll(path, "\\", "/")

	// Then clean the path to resolve . and .. elements
	normalized = filepath.ToSlash(filepath.Clean(normalized))

	// Remove trailing slash unless it's the root
	if len(normalized) > 1 && strings.HasSuffix(normalized, "/") {
		normalized = strings.TrimSuffix(normalized, "/")
	}

	return normalized
}

// updateAverageDepth recalculates the average path depth (called with stats mutex held)
func (idx *PatriciaPathIndex) updateAverageDepth() {
	if idx.stats.TotalNodes == 0 {
		idx.stats.AveragePathDepth = 0
		return
	}

	totalDepth := 0
	for path := range idx.nodes {
		depth := strings.Count(path, "/")
		if path != "/" { // Root has depth 0, everything else adds 1
			depth++
		}
		totalDepth += depth
	}

	idx.stats.AveragePathDepth = float64(totalDepth) / float64(idx.stats.TotalNodes)
}
