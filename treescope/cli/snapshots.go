package cli

import (
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/treescope/treescope/config"
	"github.com/ZanzyTHEbar/treescope/treescope/db"
	"github.com/ZanzyTHEbar/treescope/treescope/render"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSnapshotsCmd creates and returns the snapshots subcommand group.
func NewSnapshotsCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Manage stored scan snapshots",
		Long: `List, show, and delete scan snapshots stored in the snapshot database.

Snapshots are created with "scan --snapshot" and hold the full serialized
tree, so "snapshots show" can re-render a past scan without touching the
filesystem.`,
	}

	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Snapshot database path (default from config)")

	cmd.AddCommand(newSnapshotsListCmd(&dbPath))
	cmd.AddCommand(newSnapshotsShowCmd(&dbPath))
	cmd.AddCommand(newSnapshotsDeleteCmd(&dbPath))
	cmd.AddCommand(newSnapshotsBackupCmd(&dbPath))

	return cmd
}

func newSnapshotsListCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := openSnapshotDB(*dbPath)
			if err != nil {
				return err
			}
			defer provider.Close()

			snapshots, err := provider.GetAllSnapshots()
			if err != nil {
				return err
			}

			if len(snapshots) == 0 {
				fmt.Println("no snapshots stored")
				return nil
			}

			for _, snap := range snapshots {
				fmt.Printf("%s\t%s\t%s\n", snap.ID, snap.TakenAt.Format(time.RFC3339), snap.RootPath)
			}
			return nil
		},
	}
}

func newSnapshotsShowCmd(dbPath *string) *cobra.Command {
	var humanReadable bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Re-render a stored snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid snapshot ID %q: %w", args[0], err)
			}

			provider, err := openSnapshotDB(*dbPath)
			if err != nil {
				return err
			}
			defer provider.Close()

			tree, err := provider.RestoreSnapshot(id)
			if err != nil {
				return err
			}

			out, err := render.ToJSON(render.Tree(tree.Root, humanReadable))
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&humanReadable, "human-readable", "H", false, "Format sizes and timestamps for humans")

	return cmd
}

func newSnapshotsDeleteCmd(dbPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid snapshot ID %q: %w", args[0], err)
			}

			provider, err := openSnapshotDB(*dbPath)
			if err != nil {
				return err
			}
			defer provider.Close()

			if err := provider.DeleteSnapshot(id); err != nil {
				return err
			}

			fmt.Printf("deleted snapshot %s\n", id)
			return nil
		},
	}
}

func newSnapshotsBackupCmd(dbPath *string) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a consistent copy of the snapshot database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := openSnapshotDB(*dbPath)
			if err != nil {
				return err
			}
			defer provider.Close()

			backupPath, err := provider.Backup(destDir)
			if err != nil {
				return err
			}

			fmt.Printf("backup written to %s\n", backupPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&destDir, "dest", "", "Directory to write the backup into (default next to the config directory)")

	return cmd
}

func openSnapshotDB(dbPath string) (*db.SnapshotProvider, error) {
	if dbPath == "" {
		dbPath = config.AppConfig.Treescope.Database.DSN
	}

	provider, err := db.NewSnapshotProvider(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	return provider, nil
}
