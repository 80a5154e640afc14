package db

import (
	"github.com/ZanzyTHEbar/treescope/treescope/trees"

	"github.com/google/uuid"
)

// ISnapshotProvider is the interface for snapshot storage operations
// (using I prefix to avoid naming conflict with the concrete provider)
type ISnapshotProvider interface {
	Close() error
	InitSchema() error
	TakeSnapshot(rootPath string, tree *trees.DirectoryTree) (uuid.UUID, error)
	InsertSnapshot(snapshot *Snapshot) (uuid.UUID, error)
	GetSnapshot(id uuid.UUID) (*Snapshot, error)
	GetLatestSnapshot() (*Snapshot, error)
	GetAllSnapshots() ([]Snapshot, error)
	DeleteSnapshot(id uuid.UUID) error
	RestoreSnapshot(snapshotID uuid.UUID) (*trees.DirectoryTree, error)
	Backup(destDir string) (string, error)
}
