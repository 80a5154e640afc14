package cli

import (
	"fmt"

	"github.com/ZanzyTHEbar/treescope/treescope/filesystem"
	"github.com/ZanzyTHEbar/treescope/treescope/filesystem/common"
	"github.com/ZanzyTHEbar/treescope/treescope/trees"

	"github.com/spf13/cobra"
)

// NewFindCmd creates and returns the find subcommand.
// It resolves directories by path or prefix, against either a fresh scan
// of ROOT or the latest stored snapshot.
func NewFindCmd() *cobra.Command {
	var (
		byPrefix     bool
		skipHidden   bool
		fromSnapshot bool
		dbPath       string
	)

	cmd := &cobra.Command{
		Use:   "find [ROOT] QUERY",
		Short: "Look up directories inside a scanned tree",
		Long: `Scan ROOT without a depth limit, index the resulting tree, and look up
QUERY in the index. With --prefix, every directory whose path starts with
QUERY is reported; otherwise QUERY must match a directory path exactly.

With --from-snapshot the latest stored snapshot is indexed instead of a
fresh scan, and ROOT is omitted: "find --from-snapshot QUERY".`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[len(args)-1]

			var tree *trees.DirectoryTree
			if fromSnapshot {
				if len(args) != 1 {
					return fmt.Errorf("find --from-snapshot takes only QUERY")
				}

				provider, err := openSnapshotDB(dbPath)
				if err != nil {
					return err
				}
				defer provider.Close()

				latest, err := provider.GetLatestSnapshot()
				if err != nil {
					return fmt.Errorf("failed to load latest snapshot: %w", err)
				}

				tree, err = provider.RestoreSnapshot(latest.ID)
				if err != nil {
					return err
				}
			} else {
				if len(args) != 2 {
					return fmt.Errorf("find requires ROOT and QUERY (or --from-snapshot)")
				}

				opts := filesystem.DefaultScanOptions()
				opts.MaxDepth = -1
				opts.SkipHidden = skipHidden

				root, err := filesystem.NewTraverser().Scan(cmd.Context(), args[0], opts)
				if err != nil {
					return err
				}
				tree = trees.NewDirectoryTree(trees.WithRootNode(root))
			}

			if err := tree.Index(); err != nil {
				return fmt.Errorf("failed to index tree: %w", err)
			}

			pathUtils := common.NewPathUtils()
			depthUtils := common.NewDepthUtils()
			basePath := tree.Root.Path

			var matches []*trees.DirectoryNode
			if byPrefix {
				matches = tree.FindByPathPrefix(query)
			} else if node, found := tree.FindByPath(query); found {
				matches = append(matches, node)
			}

			if len(matches) == 0 {
				return fmt.Errorf("no directory matches %q", query)
			}

			for _, node := range matches {
				if node.Path != basePath && !pathUtils.IsSubpath(basePath, node.Path) {
					continue
				}
				depth, err := depthUtils.CalculateDepth(basePath, node.Path)
				if err != nil {
					depth = 0
				}
				fmt.Printf("%s\tdepth=%d\tdirs=%d\tfiles=%d\n", node.Path, depth, len(node.Children), len(node.Files))
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&byPrefix, "prefix", "p", false, "Match every directory whose path starts with QUERY")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", false, "Skip hidden files and directories")
	cmd.Flags().BoolVar(&fromSnapshot, "from-snapshot", false, "Look up in the latest stored snapshot instead of scanning")
	cmd.Flags().StringVar(&dbPath, "db", "", "Snapshot database path (default from config)")

	return cmd
}
