package filesystem

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	internal "github.com/ZanzyTHEbar/treescope/treescope"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreChecker reports whether a path should be excluded from a scan
type IgnoreChecker interface {
	MatchesPath(path string) bool
}

// loadIgnoreChecker compiles the ignore patterns for a scan rooted at rootPath.
// Patterns come from opts.IgnorePatterns plus an optional .treescopeignore file
// at the scan root. Returns nil when there is nothing to ignore.
func loadIgnoreChecker(rootPath string, patterns []string) IgnoreChecker {
	lines := make([]string, 0, len(patterns))
	lines = append(lines, patterns...)

	ignoreFile := filepath.Join(rootPath, internal.DefaultIgnoreFile)
	if data, err := os.ReadFile(ignoreFile); err == nil {
		fileLines := splitIgnoreLines(string(data))
		lines = append(lines, fileLines...)
		slog.Debug("Loaded ignore file",
			"path", ignoreFile,
			"patterns", len(fileLines))
	}

	if len(lines) == 0 {
		return nil
	}

	return ignore.CompileIgnoreLines(lines...)
}

func splitIgnoreLines(data string) []string {
	var lines []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
