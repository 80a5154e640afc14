package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZanzyTHEbar/treescope/treescope/trees"

	"github.com/google/uuid"
)

// Snapshot is a point-in-time record of a scanned directory tree.
// DirectoryState holds the tree serialized as JSON.
type Snapshot struct {
	ID             uuid.UUID
	TakenAt        time.Time
	RootPath       string
	DirectoryState []byte
}

type snapshotJSON struct {
	ID             string `json:"id"`
	TakenAt        string `json:"taken_at"`
	RootPath       string `json:"root_path"`
	DirectoryState []byte `json:"directory_state"`
}

// TakeSnapshot serializes the tree and stores it, returning the new snapshot ID.
func (p *SnapshotProvider) TakeSnapshot(rootPath string, tree *trees.DirectoryTree) (uuid.UUID, error) {
	state, err := tree.MarshalJSON()
	if err != nil {
		return uuid.Nil, fmt.Errorf("error marshalling directory tree: %w", err)
	}

	snapshot := &Snapshot{
		ID:             uuid.New(),
		TakenAt:        time.Now(),
		RootPath:       rootPath,
		DirectoryState: state,
	}

	if _, err := p.InsertSnapshot(snapshot); err != nil {
		return uuid.Nil, err
	}

	return snapshot.ID, nil
}

// InsertSnapshot adds a snapshot row, filling in ID and timestamp when unset.
func (p *SnapshotProvider) InsertSnapshot(snapshot *Snapshot) (uuid.UUID, error) {
	if snapshot.ID == uuid.Nil {
		snapshot.ID = uuid.New()
	}

	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = time.Now()
	}

	_, err := p.db.Exec(
		"INSERT INTO snapshots (id, taken_at, root_path, directory_state) VALUES (?, ?, ?, ?)",
		snapshot.ID.String(),
		snapshot.TakenAt.Format(time.RFC3339),
		snapshot.RootPath,
		snapshot.DirectoryState,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return snapshot.ID, nil
}

// RestoreSnapshot loads a stored snapshot back into a directory tree.
func (p *SnapshotProvider) RestoreSnapshot(snapshotID uuid.UUID) (*trees.DirectoryTree, error) {
	snapshot, err := p.GetSnapshot(snapshotID)
	if err != nil {
		return nil, fmt.Errorf("error getting snapshot: %w", err)
	}

	tree := trees.NewDirectoryTree()
	if err := tree.UnMarshalJSON(snapshot.DirectoryState); err != nil {
		return nil, fmt.Errorf("error unmarshalling directory tree: %w", err)
	}

	return tree, nil
}

// GetSnapshot retrieves a specific snapshot by ID.
func (p *SnapshotProvider) GetSnapshot(id uuid.UUID) (*Snapshot, error) {
	row := p.db.QueryRow("SELECT id, taken_at, root_path, directory_state FROM snapshots WHERE id = ?", id.String())
	return scanSnapshot(row)
}

// GetLatestSnapshot retrieves the most recent snapshot.
func (p *SnapshotProvider) GetLatestSnapshot() (*Snapshot, error) {
	row := p.db.QueryRow("SELECT id, taken_at, root_path, directory_state FROM snapshots ORDER BY taken_at DESC LIMIT 1")
	return scanSnapshot(row)
}

// GetAllSnapshots retrieves all snapshots, newest first.
func (p *SnapshotProvider) GetAllSnapshots() ([]Snapshot, error) {
	rows, err := p.db.Query("SELECT id, taken_at, root_path, directory_state FROM snapshots ORDER BY taken_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, *snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during snapshot iteration: %w", err)
	}

	return snapshots, nil
}

// DeleteSnapshot removes a snapshot by ID.
func (p *SnapshotProvider) DeleteSnapshot(id uuid.UUID) error {
	_, err := p.db.Exec("DELETE FROM snapshots WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*Snapshot, error) {
	var snapshot Snapshot
	var id string
	var takenAt string

	if err := row.Scan(&id, &takenAt, &snapshot.RootPath, &snapshot.DirectoryState); err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot ID: %w", err)
	}
	snapshot.ID = parsed

	snapshot.TakenAt, err = time.Parse(time.RFC3339, takenAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
	}

	return &snapshot, nil
}

func (sn *Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotJSON{
		ID:             sn.ID.String(),
		TakenAt:        sn.TakenAt.Format(time.RFC3339),
		RootPath:       sn.RootPath,
		DirectoryState: sn.DirectoryState,
	})
}

func (sn *Snapshot) UnMarshalJSON(data []byte) error {
	var snap snapshotJSON

	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("error unmarshalling snapshot: %w", err)
	}

	takenAt, err := time.Parse(time.RFC3339, snap.TakenAt)
	if err != nil {
		return fmt.Errorf("error parsing time: %w", err)
	}

	sn.ID, err = uuid.Parse(snap.ID)
	if err != nil {
		return fmt.Errorf("error parsing snapshot ID: %w", err)
	}
	sn.TakenAt = takenAt
	sn.RootPath = snap.RootPath
	sn.DirectoryState = snap.DirectoryState

	return nil
}
