package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ZanzyTHEbar/treescope/treescope/filesystem/common"
	"github.com/ZanzyTHEbar/treescope/treescope/trees"

	"github.com/sourcegraph/conc/pool"
)

// ConcurrentTraverser implements concurrent directory traversal using the
// conc package for worker pool and job management. Directories are processed
// level by level (BFS); each directory is owned by exactly one worker, so the
// resulting tree needs no per-node locking. The produced tree is identical to
// the serial Traverser's for the same options.
type ConcurrentTraverser struct {
	maxWorkers    int
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex
	processedDirs map[string]bool // Track processed directories to avoid duplicates
	timeUtils     *common.TimeUtils
}

// NewConcurrentTraverser creates a new concurrent directory traverser.
// workerCount <= 0 selects a count based on available CPU cores.
func NewConcurrentTraverser(ctx context.Context, workerCount int) *ConcurrentTraverser {
	if workerCount <= 0 {
		// CPU cores * 2 for I/O bound work, bounded for responsiveness
		workerCount = min(max(runtime.NumCPU()*2, 4), 32)
	}

	ctxWithCancel, cancel := context.WithCancel(ctx)

	return &ConcurrentTraverser{
		maxWorkers:    workerCount,
		ctx:           ctxWithCancel,
		cancel:        cancel,
		processedDirs: make(map[string]bool),
		timeUtils:     common.NewTimeUtils(),
	}
}

// Scan performs a concurrent breadth-first traversal rooted at rootPath
func (ct *ConcurrentTraverser) Scan(rootPath string, opts ScanOptions) (*trees.DirectoryNode, error) {
	validation := common.NewValidationUtils()
	if err := validation.ValidatePath(rootPath); err != nil {
		return nil, err
	}
	if err := validation.ValidateDepth(opts.MaxDepth); err != nil {
		return nil, err
	}

	rootPath = common.NewPathUtils().NormalizePath(rootPath)

	info, err := os.Lstat(rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrSourceNotExist, rootPath)
		}
		return nil, common.NewErrorUtils().HandleOperationError(err, "stat", rootPath, true)
	}
	if !info.IsDir() {
		// Non-directory roots gain nothing from concurrency
		return NewTraverser().Scan(ct.ctx, rootPath, opts)
	}

	rootNode := trees.NewDirectoryNode(rootPath, nil)
	rootNode.Metadata = trees.NewMetadata(info)
	if opts.CollectTags {
		if tagErr := trees.AddTagsToMetadataWithFilename(&rootNode.Metadata, filepath.Base(rootPath)); tagErr != nil {
			slog.Warn("Failed to tag root metadata", "path", rootPath, "error", tagErr)
		}
	}

	ignored := loadIgnoreChecker(rootPath, opts.IgnorePatterns)

	stats := &TraversalStats{StartTime: ct.timeUtils.GetCurrentTime()}

	// Process directories level by level using BFS with a bounded pool
	currentLevel := []*trees.DirectoryNode{rootNode}

	for depth := 0; len(currentLevel) > 0; depth++ {
		// A node at level L lists its entries only while L < maxDepth
		if opts.MaxDepth != -1 && depth >= opts.MaxDepth {
			break
		}

		nextLevel := make([]*trees.DirectoryNode, 0)
		var nextLevelMu sync.Mutex

		// Create a new pool for this level to avoid reusing closed pools
		levelPool := pool.New().WithMaxGoroutines(ct.maxWorkers).WithContext(ct.ctx)

		for _, dirNode := range currentLevel {
			levelPool.Go(func(ctx context.Context) error {
				children, err := ct.processDirectoryNode(ctx, dirNode, opts, ignored, stats)
				if err != nil {
					atomic.AddInt64(&stats.ErrorsFound, 1)
					slog.Warn("Error processing directory",
						"path", dirNode.Path,
						"error", err)
					return nil
				}

				atomic.AddInt64(&stats.DirsProcessed, 1)

				nextLevelMu.Lock()
				nextLevel = append(nextLevel, children...)
				nextLevelMu.Unlock()

				return nil
			})
		}

		// Wait for all directories at this level to be processed
		if err := levelPool.Wait(); err != nil {
			return nil, err
		}

		currentLevel = nextLevel
	}

	stats.EndTime = ct.timeUtils.GetCurrentTime()
	ct.logPerformanceStats(rootPath, stats)

	return rootNode, nil
}

// processDirectoryNode lists a single directory and attaches children and files
func (ct *ConcurrentTraverser) processDirectoryNode(ctx context.Context, dirNode *trees.DirectoryNode, opts ScanOptions, ignored IgnoreChecker, stats *TraversalStats) ([]*trees.DirectoryNode, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Check if already processed (prevent duplicates)
	ct.mu.RLock()
	if ct.processedDirs[dirNode.Path] {
		ct.mu.RUnlock()
		return nil, nil
	}
	ct.mu.RUnlock()

	ct.mu.Lock()
	ct.processedDirs[dirNode.Path] = true
	ct.mu.Unlock()

	entries, err := os.ReadDir(dirNode.Path)
	if err != nil {
		// Unreadable directories render empty, matching the serial walk
		slog.Warn("Permission denied or unreadable directory",
			"path", dirNode.Path,
			"error", err)
		return nil, nil
	}

	sortEntries(entries)

	children := preallocateChildren(entries)

	for _, entry := range entries {
		name := entry.Name()
		childPath := filepath.Join(dirNode.Path, name)

		if opts.SkipHidden && strings.HasPrefix(name, ".") {
			slog.Debug("Skipping hidden entry", "path", childPath)
			continue
		}
		if ignored != nil && ignored.MatchesPath(childPath) {
			slog.Debug("Ignoring entry", "path", childPath)
			continue
		}

		isDir, isFile := classifyEntry(entry, childPath, opts.FollowSymlinks)

		switch {
		case isDir:
			childDir := trees.NewDirectoryNode(childPath, dirNode)
			if info, infoErr := entryInfo(entry, childPath, opts.FollowSymlinks); infoErr == nil {
				childDir.Metadata = trees.NewMetadata(info)
				if opts.CollectTags {
					if tagErr := trees.AddTagsToMetadataWithFilename(&childDir.Metadata, name); tagErr != nil {
						slog.Warn("Failed to tag directory metadata", "path", childPath, "error", tagErr)
					}
				}
			} else {
				atomic.AddInt64(&stats.ErrorsFound, 1)
				slog.Warn("Cannot access directory info", "path", childPath, "error", infoErr)
			}
			children = append(children, childDir)
			dirNode.Children = append(dirNode.Children, childDir)

		case isFile:
			childFile := &trees.FileNode{
				Path:      childPath,
				Name:      name,
				Extension: strings.ToLower(filepath.Ext(name)),
			}
			if info, infoErr := entryInfo(entry, childPath, opts.FollowSymlinks); infoErr == nil {
				childFile.Metadata = trees.NewMetadata(info)
				if opts.CollectTags {
					if tagErr := trees.AddTagsToMetadataWithFilename(&childFile.Metadata, name); tagErr != nil {
						slog.Warn("Failed to tag file metadata", "path", childPath, "error", tagErr)
					}
				}
			} else {
				atomic.AddInt64(&stats.ErrorsFound, 1)
				slog.Warn("Cannot access file info", "path", childPath, "error", infoErr)
			}
			dirNode.AddFile(childFile)
			atomic.AddInt64(&stats.FilesProcessed, 1)

		default:
			slog.Debug("Skipping non-file, non-dir entry", "path", childPath)
		}
	}

	return children, nil
}

// preallocateChildren performs slice pre-allocation from a quick directory pre-scan
func preallocateChildren(entries []os.DirEntry) []*trees.DirectoryNode {
	dirCount := 0
	for _, entry := range entries {
		if entry.IsDir() {
			dirCount++
		}
	}
	return make([]*trees.DirectoryNode, 0, dirCount)
}

// logPerformanceStats logs traversal performance metrics
func (ct *ConcurrentTraverser) logPerformanceStats(rootPath string, stats *TraversalStats) {
	duration := stats.EndTime - stats.StartTime
	dirsProcessed := atomic.LoadInt64(&stats.DirsProcessed)
	filesProcessed := atomic.LoadInt64(&stats.FilesProcessed)
	errors := atomic.LoadInt64(&stats.ErrorsFound)

	slog.Info("Traversal completed",
		"root", rootPath,
		"dirs", dirsProcessed,
		"files", filesProcessed,
		"duration_ms", duration,
		"workers", ct.maxWorkers,
		"errors", errors)
}

// Cleanup releases resources used by the traverser
func (ct *ConcurrentTraverser) Cleanup() {
	if ct.cancel != nil {
		ct.cancel()
	}
}
