// Package cli wires the treescope commands together.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/treescope/treescope/config"

	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the treescope CLI.
// It sets up all subcommands and the shared logging and configuration state.
func NewRootCmd() *cobra.Command {
	var (
		configPath string
		logFile    string
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:   "treescope",
		Short: "treescope - Represent directory trees as JSON documents",
		Long: `treescope scans a directory tree and prints it as a nested JSON document.

Directories become nested objects, files become objects carrying their size
and modification time, and traversal depth, hidden-file handling, and ignore
patterns are all configurable.

Use subcommands to perform different operations:
  - scan: Scan a directory and print its JSON representation
  - find: Look up paths inside a scanned tree
  - snapshots: List, show, and delete stored scan snapshots`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadConfig(configPath); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if logFile == "" {
				logFile = config.AppConfig.Treescope.Log.File
			}

			level := parseLogLevel(config.AppConfig.Treescope.Log.Level)
			if verbose {
				level = slog.LevelDebug
			}

			var out io.Writer = os.Stderr
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("failed to open log file %s: %w", logFile, err)
				}
				out = io.MultiWriter(os.Stderr, f)
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&logFile, "logfile", "", "Also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewFindCmd())
	rootCmd.AddCommand(NewSnapshotsCmd())

	return rootCmd
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
