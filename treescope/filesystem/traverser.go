package filesystem

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/treescope/treescope/filesystem/common"
	"github.com/ZanzyTHEbar/treescope/treescope/trees"
)

// Traverser builds an annotated directory tree with a single-threaded
// recursive walk. Entries are visited in case-insensitive name order.
// Unreadable directories are tolerated and rendered empty.
type Traverser struct {
	pathUtils  *common.PathUtils
	validation *common.ValidationUtils
	timeUtils  *common.TimeUtils
	errorUtils *common.ErrorUtils
	logger     *slog.Logger
}

// TraversalStats tracks counters for a completed scan
type TraversalStats struct {
	DirsProcessed  int64
	FilesProcessed int64
	ErrorsFound    int64
	StartTime      int64
	EndTime        int64
}

// NewTraverser creates a serial directory traverser
func NewTraverser() *Traverser {
	return &Traverser{
		pathUtils:  common.NewPathUtils(),
		validation: common.NewValidationUtils(),
		timeUtils:  common.NewTimeUtils(),
		errorUtils: common.NewErrorUtils(),
		logger:     slog.Default(),
	}
}

// Scan builds a directory tree rooted at rootPath honoring opts.
// A rootPath naming a regular file yields a container node holding that
// single file, so rendering still produces {name: metadata}.
func (t *Traverser) Scan(ctx context.Context, rootPath string, opts ScanOptions) (*trees.DirectoryNode, error) {
	if err := t.validation.ValidatePath(rootPath); err != nil {
		return nil, err
	}
	if err := t.validation.ValidateDepth(opts.MaxDepth); err != nil {
		return nil, err
	}

	rootPath = t.pathUtils.NormalizePath(rootPath)

	info, err := os.Lstat(rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrSourceNotExist, rootPath)
		}
		return nil, t.errorUtils.HandleOperationError(err, "stat", rootPath, true)
	}

	stats := &TraversalStats{StartTime: t.timeUtils.GetCurrentTime()}
	defer func() {
		stats.EndTime = t.timeUtils.GetCurrentTime()
		t.logger.Info("Traversal completed",
			"root", rootPath,
			"dirs", stats.DirsProcessed,
			"files", stats.FilesProcessed,
			"errors", stats.ErrorsFound,
			"duration_ms", stats.EndTime-stats.StartTime)
	}()

	// Single-file root: wrap the file in a container node for rendering
	if info.Mode().IsRegular() {
		container := trees.NewDirectoryNode(filepath.Dir(rootPath), nil)
		container.AddFile(t.newFileNode(rootPath, filepath.Base(rootPath), info, opts, stats))
		stats.FilesProcessed++
		return container, nil
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("path is neither a regular file nor a directory: %s", rootPath)
	}

	root := trees.NewDirectoryNode(rootPath, nil)
	root.Metadata = trees.NewMetadata(info)
	if opts.CollectTags {
		if err := trees.AddTagsToMetadataWithFilename(&root.Metadata, filepath.Base(rootPath)); err != nil {
			t.logger.Warn("Failed to tag root metadata", "path", rootPath, "error", err)
		}
	}

	ignored := loadIgnoreChecker(rootPath, opts.IgnorePatterns)

	if err := t.walk(ctx, root, opts.MaxDepth, opts, ignored, stats); err != nil {
		return nil, err
	}
	stats.DirsProcessed++

	return root, nil
}

// walk recursively fills node with sorted directory entries.
// depth counts down, -1 never decrements; 0 stops before listing.
func (t *Traverser) walk(ctx context.Context, node *trees.DirectoryNode, depth int, opts ScanOptions, ignored IgnoreChecker, stats *TraversalStats) error {
	if err := t.validation.ValidateContextCancellation(ctx); err != nil {
		return err
	}

	// Depth budget exhausted: the directory stays empty
	if depth == 0 {
		return nil
	}

	entries, err := os.ReadDir(node.Path)
	if err != nil {
		stats.ErrorsFound++
		t.logger.Warn("Permission denied or unreadable directory",
			"path", node.Path,
			"error", err)
		return nil
	}

	sortEntries(entries)

	nextDepth := depth
	if depth > 0 {
		nextDepth = depth - 1
	}

	for _, entry := range entries {
		name := entry.Name()
		childPath := filepath.Join(node.Path, name)

		if opts.SkipHidden && t.pathUtils.IsHidden(childPath) {
			t.logger.Debug("Skipping hidden entry", "path", childPath)
			continue
		}
		if ignored != nil && ignored.MatchesPath(childPath) {
			t.logger.Debug("Ignoring entry", "path", childPath)
			continue
		}

		isDir, isFile := classifyEntry(entry, childPath, opts.FollowSymlinks)

		switch {
		case isDir:
			child := trees.NewDirectoryNode(childPath, node)
			if info, infoErr := entryInfo(entry, childPath, opts.FollowSymlinks); infoErr == nil {
				child.Metadata = trees.NewMetadata(info)
				if opts.CollectTags {
					if tagErr := trees.AddTagsToMetadataWithFilename(&child.Metadata, name); tagErr != nil {
						t.logger.Warn("Failed to tag directory metadata", "path", childPath, "error", tagErr)
					}
				}
			} else {
				stats.ErrorsFound++
				t.logger.Warn("Cannot access directory info", "path", childPath, "error", infoErr)
			}
			node.Children = append(node.Children, child)
			stats.DirsProcessed++

			if err := t.walk(ctx, child, nextDepth, opts, ignored, stats); err != nil {
				return err
			}

		case isFile:
			info, infoErr := entryInfo(entry, childPath, opts.FollowSymlinks)
			if infoErr != nil {
				stats.ErrorsFound++
				t.logger.Warn("Cannot access file info", "path", childPath, "error", infoErr)
				// File still appears in the tree, with empty metadata
				node.AddFile(&trees.FileNode{
					Path:      childPath,
					Name:      name,
					Extension: strings.ToLower(filepath.Ext(name)),
				})
				continue
			}
			node.AddFile(t.newFileNode(childPath, name, info, opts, stats))
			stats.FilesProcessed++

		default:
			t.logger.Debug("Skipping non-file, non-dir entry", "path", childPath)
		}
	}

	return nil
}

func (t *Traverser) newFileNode(path, name string, info os.FileInfo, opts ScanOptions, stats *TraversalStats) *trees.FileNode {
	file := &trees.FileNode{
		Path:      path,
		Name:      name,
		Extension: strings.ToLower(filepath.Ext(name)),
		Metadata:  trees.NewMetadata(info),
	}
	if opts.CollectTags {
		if err := trees.AddTagsToMetadataWithFilename(&file.Metadata, name); err != nil {
			t.logger.Warn("Failed to tag file metadata", "path", path, "error", err)
		}
	}
	return file
}

// sortEntries orders directory entries case-insensitively by name
func sortEntries(entries []os.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})
}

// classifyEntry determines whether entry is a directory or regular file.
// With followSymlinks, symlinks classify as their target; otherwise they
// fall through to the skipped "other" category along with sockets and devices.
func classifyEntry(entry os.DirEntry, path string, followSymlinks bool) (isDir, isFile bool) {
	if entry.IsDir() {
		return true, false
	}
	if entry.Type().IsRegular() {
		return false, true
	}
	if followSymlinks && entry.Type()&os.ModeSymlink != 0 {
		if info, err := os.Stat(path); err == nil {
			return info.IsDir(), info.Mode().IsRegular()
		}
	}
	return false, false
}

// entryInfo resolves FileInfo for an entry, following the symlink target when asked
func entryInfo(entry os.DirEntry, path string, followSymlinks bool) (os.FileInfo, error) {
	if followSymlinks && entry.Type()&os.ModeSymlink != 0 {
		return os.Stat(path)
	}
	return entry.Info()
}
