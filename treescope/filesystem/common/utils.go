package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PathUtils provides path manipulation utilities used across filesystem packages
type PathUtils struct{}

// NewPathUtils creates a new PathUtils instance
func NewPathUtils() *PathUtils {
	return &PathUtils{}
}

// NormalizePath normalizes a file path for cross-platform compatibility
func (pu *PathUtils) NormalizePath(path string) string {
	// Convert to absolute path
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

// IsSubpath checks if child is a subpath of parent
func (pu *PathUtils) IsSubpath(parent, child string) bool {
	parent = pu.NormalizePath(parent)
	child = pu.NormalizePath(child)

	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}

	return !strings.HasPrefix(rel, "..") && rel != "."
}

// IsHidden reports whether the base name of path starts with a dot
func (pu *PathUtils) IsHidden(path string) bool {
	name := filepath.Base(path)
	return len(name) > 1 && strings.HasPrefix(name, ".")
}

// DepthUtils provides depth calculation utilities used across packages
type DepthUtils struct{}

// NewDepthUtils creates a new DepthUtils instance
func NewDepthUtils() *DepthUtils {
	return &DepthUtils{}
}

// CalculateDepth calculates the depth of a path relative to a base path
func (du *DepthUtils) CalculateDepth(basePath, targetPath string) (int, error) {
	relPath, err := filepath.Rel(basePath, targetPath)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate relative path: %w", err)
	}

	if relPath == "." {
		return 0, nil
	}

	if strings.HasPrefix(relPath, "..") {
		return 0, fmt.Errorf("target path is not under base path")
	}

	return strings.Count(relPath, string(os.PathSeparator)) + 1, nil
}

// TimeUtils provides time-related utilities used across packages
type TimeUtils struct{}

// NewTimeUtils creates a new TimeUtils instance
func NewTimeUtils() *TimeUtils {
	return &TimeUtils{}
}

// GetCurrentTime returns current time in milliseconds for performance tracking
func (tu TimeUtils) GetCurrentTime() int64 {
	return time.Now().UnixMilli()
}
