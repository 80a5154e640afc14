package filesystem

import (
	internal "github.com/ZanzyTHEbar/treescope/treescope"
)

// ScanOptions configures directory tree scans
type ScanOptions struct {
	MaxDepth       int      // Maximum recursion depth (-1 = unlimited)
	SkipHidden     bool     // Skip dotfiles and dot-directories
	FollowSymlinks bool     // Follow symbolic links (symlinks are skipped otherwise)
	IgnorePatterns []string // Patterns to ignore (gitignore style)
	WorkerCount    int      // Number of concurrent workers (1 = serial walk)
	CollectTags    bool     // Attach category tags to node metadata
}

// DefaultScanOptions returns sensible defaults for scan operations
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		MaxDepth:       internal.DefaultMaxDepth,
		SkipHidden:     false,
		FollowSymlinks: false,
		IgnorePatterns: nil,
		WorkerCount:    1,
		CollectTags:    false,
	}
}
