package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	internal "github.com/ZanzyTHEbar/treescope/treescope"

	_ "github.com/tursodatabase/go-libsql"
)

// SnapshotProvider stores scanned directory trees in a local libSQL database
// so earlier scans can be listed and re-rendered later.
type SnapshotProvider struct {
	db *sql.DB
}

// NewSnapshotProvider opens or initializes the snapshot database at dbPath.
// An empty dbPath falls back to the default location under the config directory.
func NewSnapshotProvider(dbPath string) (*SnapshotProvider, error) {
	if dbPath == "" {
		dbPath = internal.DefaultSnapshotDBPath
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("could not create snapshot database directory: %v", err)
	}

	slog.Debug("Snapshot database path", "path", dbPath)

	db, err := ConnectToDB(dbPath)
	if err != nil {
		return nil, err
	}

	provider := &SnapshotProvider{db: db}
	if err := provider.init(); err != nil {
		db.Close()
		return nil, err
	}
	return provider, nil
}

// ConnectToDB opens a libSQL connection to a local database file.
func ConnectToDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("libsql", "file:"+dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", dbPath, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database at %s: %w", dbPath, err)
	}

	return db, nil
}

// init sets up the snapshot table.
func (p *SnapshotProvider) init() error {
	_, err := p.db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY UNIQUE,
		taken_at TEXT NOT NULL,
		root_path TEXT NOT NULL,
		directory_state BLOB
	)`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return nil
}

// Close closes the snapshot database connection.
func (p *SnapshotProvider) Close() error {
	return p.db.Close()
}

// InitSchema implements ISnapshotProvider.InitSchema
func (p *SnapshotProvider) InitSchema() error {
	return p.init()
}

// Backup creates a consistent copy of the snapshot database under destDir
// and returns the path to the backup file. An empty destDir falls back to a
// backups directory next to the config directory.
func (p *SnapshotProvider) Backup(destDir string) (string, error) {
	if p.db == nil {
		return "", fmt.Errorf("cannot backup: database connection is nil")
	}

	backupDir := destDir
	if backupDir == "" {
		backupDir = filepath.Join(internal.DefaultConfigPath, "backups")
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return "", fmt.Errorf("could not create backup directory: %v", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(backupDir, fmt.Sprintf("snapshots_backup_%s.db", timestamp))

	// VACUUM INTO is SQLite-specific and produces a consistent copy
	_, err := p.db.Exec(fmt.Sprintf("VACUUM INTO '%s'", backupPath))
	if err != nil {
		return "", fmt.Errorf("backup failed: %v", err)
	}

	slog.Info("Snapshot database backup created", "path", backupPath)
	return backupPath, nil
}
