package backup

import "time"

// Config controls periodic database snapshots.
type Config struct {
	Enabled  bool
	Interval time.Duration
	LocalDir string
	KeepLast int

	// Ext is the snapshot file extension, ".duckdb" or ".db".
	Ext string
}

// Snapshotter is the minimal DB snapshot contract used by Manager.
// Both model.Backend implementations satisfy it.
type Snapshotter interface {
	DBPath() string
	SnapshotTo(dstPath string) error
}
