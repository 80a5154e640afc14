package trees

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector provides metrics collection functionality for tree operations
type MetricsCollector struct {
	mu      sync.Mutex
	metrics atomic.Value // stores *TreeMetrics
	started time.Time
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	mc := &MetricsCollector{
		started: time.Now(),
	}
	mc.metrics.Store(&TreeMetrics{
		OperationCounts: make(map[string]int64),
	})
	return mc
}

// IncrementOperation safely increments operation count using mutex locking
func (mc *MetricsCollector) IncrementOperation(op string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	metrics := mc.metrics.Load().(*TreeMetrics)
	metrics.OperationCounts[op]++
	mc.metrics.Store(metrics)
}

// Current returns the most recent metrics snapshot
func (mc *MetricsCollector) Current() *TreeMetrics {
	return mc.metrics.Load().(*TreeMetrics)
}

// computeTreeMetrics recursively computes metrics starting from the given directory node.
func computeTreeMetrics(node *DirectoryNode, depth int, metrics *TreeMetrics) {
	if node == nil {
		return
	}

	// Include the directory node
	metrics.TotalNodes++
	metrics.TotalSize += node.Metadata.Size
	if depth > metrics.MaxDepth {
		metrics.MaxDepth = depth
	}

	// Process files as part of metrics
	for _, file := range node.Files {
		metrics.TotalNodes++
		metrics.TotalFiles++
		metrics.TotalSize += file.Metadata.Size
	}

	// Process child directories
	for _, child := range node.Children {
		computeTreeMetrics(child, depth+1, metrics)
	}
}

// UpdateMetrics updates tree metrics based on the current state of the DirectoryTree.
func (mc *MetricsCollector) UpdateMetrics(ctx context.Context, tree *DirectoryTree) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	newMetrics := &TreeMetrics{
		OperationCounts: make(map[string]int64),
		LastUpdated:     time.Now(),
	}

	computeTreeMetrics(tree.Root, 0, newMetrics)

	newMetrics.ProcessingTime = time.Since(mc.started)

	mc.metrics.Store(newMetrics)

	return nil
}
