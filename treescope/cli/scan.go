package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ZanzyTHEbar/treescope/treescope/config"
	"github.com/ZanzyTHEbar/treescope/treescope/db"
	"github.com/ZanzyTHEbar/treescope/treescope/filesystem"
	"github.com/ZanzyTHEbar/treescope/treescope/render"
	"github.com/ZanzyTHEbar/treescope/treescope/trees"

	"github.com/spf13/cobra"
)

// NewScanCmd creates and returns the scan subcommand.
// It scans a directory tree and prints the nested JSON document to stdout.
func NewScanCmd() *cobra.Command {
	var (
		depth          int
		humanReadable  bool
		workers        int
		excludes       []string
		skipHidden     bool
		followSymlinks bool
		collectTags    bool
		showStats      bool
		takeSnapshot   bool
		dbPath         string
	)

	cmd := &cobra.Command{
		Use:   "scan PATH",
		Short: "Scan a directory and print its JSON representation",
		Long: `Scan a directory tree and print it as a nested JSON document.

Directories become nested objects and files become objects with their size
and modification time. A depth of -1 scans without limit; a depth of 0
produces an empty document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scanCfg := config.AppConfig.Treescope.Scan

			opts := filesystem.DefaultScanOptions()
			opts.MaxDepth = scanCfg.MaxDepth
			opts.SkipHidden = scanCfg.SkipHidden
			opts.IgnorePatterns = scanCfg.ExcludePatterns
			opts.WorkerCount = scanCfg.WorkerCount
			if !humanReadable {
				humanReadable = scanCfg.HumanReadable
			}

			if cmd.Flags().Changed("depth") {
				opts.MaxDepth = depth
			}
			if cmd.Flags().Changed("skip-hidden") {
				opts.SkipHidden = skipHidden
			}
			if cmd.Flags().Changed("workers") {
				opts.WorkerCount = workers
			}
			if len(excludes) > 0 {
				opts.IgnorePatterns = append(opts.IgnorePatterns, excludes...)
			}
			opts.FollowSymlinks = followSymlinks
			opts.CollectTags = collectTags

			ctx := cmd.Context()
			root, err := scanTree(ctx, args[0], opts)
			if err != nil {
				return err
			}

			doc := render.Tree(root, humanReadable)
			out, err := render.ToJSON(doc)
			if err != nil {
				return err
			}
			fmt.Println(string(out))

			if showStats || takeSnapshot {
				tree := trees.NewDirectoryTree(trees.WithRootNode(root))

				if showStats {
					if err := printScanStats(ctx, tree); err != nil {
						return err
					}
				}

				if takeSnapshot {
					if err := storeSnapshot(root.Path, tree, dbPath); err != nil {
						return err
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "Maximum traversal depth (-1 for unlimited)")
	cmd.Flags().BoolVarP(&humanReadable, "human-readable", "H", false, "Format sizes and timestamps for humans")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Number of concurrent scan workers")
	cmd.Flags().StringSliceVarP(&excludes, "exclude", "e", nil, "Gitignore-style patterns to skip (repeatable)")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", false, "Skip hidden files and directories")
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "Resolve symlinks when classifying entries")
	cmd.Flags().BoolVar(&collectTags, "tags", false, "Annotate tree metadata with generated tags")
	cmd.Flags().BoolVar(&showStats, "stats", false, "Print tree statistics to stderr after the scan")
	cmd.Flags().BoolVar(&takeSnapshot, "snapshot", false, "Store the scanned tree in the snapshot database")
	cmd.Flags().StringVar(&dbPath, "db", "", "Snapshot database path (default from config)")

	return cmd
}

// scanTree runs the serial traverser for a single worker and the concurrent
// one otherwise.
func scanTree(ctx context.Context, rootPath string, opts filesystem.ScanOptions) (*trees.DirectoryNode, error) {
	if opts.WorkerCount <= 1 {
		return filesystem.NewTraverser().Scan(ctx, rootPath, opts)
	}

	ct := filesystem.NewConcurrentTraverser(ctx, opts.WorkerCount)
	defer ct.Cleanup()
	return ct.Scan(rootPath, opts)
}

func printScanStats(ctx context.Context, tree *trees.DirectoryTree) error {
	collector := trees.NewMetricsCollector()
	if err := collector.UpdateMetrics(ctx, tree); err != nil {
		return fmt.Errorf("failed to compute tree metrics: %w", err)
	}

	metrics := collector.Current()
	fmt.Fprintf(os.Stderr, "nodes: %d\nfiles: %d\ntotal size: %s\nmax depth: %d\n",
		metrics.TotalNodes,
		metrics.TotalFiles,
		render.HumanSize(metrics.TotalSize),
		metrics.MaxDepth,
	)
	return nil
}

func storeSnapshot(rootPath string, tree *trees.DirectoryTree, dbPath string) error {
	if dbPath == "" {
		dbPath = config.AppConfig.Treescope.Database.DSN
	}

	provider, err := db.NewSnapshotProvider(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer provider.Close()

	id, err := provider.TakeSnapshot(rootPath, tree)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}

	slog.Info("Snapshot stored", "id", id, "root_path", rootPath)
	return nil
}
