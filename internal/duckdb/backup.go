package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInMemoryStore indicates the store uses an in-memory DB and cannot be snapshotted.
var ErrInMemoryStore = errors.New("duckdb: in-memory store cannot be snapshotted")

// snapshotAlias names the snapshot database while it is attached.
const snapshotAlias = "invite_snapshot"

// DBPath returns the configured DuckDB path. Empty means in-memory DB.
func (s *Store) DBPath() string { return s.dbPath }

// SnapshotTo writes a consistent copy of the database to dstPath by
// attaching a fresh file and copying every table into it. Writes wait for
// the copy; the file only appears at dstPath once it is complete.
func (s *Store) SnapshotTo(dstPath string) error {
	if s.dbPath == "" {
		return ErrInMemoryStore
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp := dstPath + ".tmp"
	_ = os.Remove(tmp)

	err := s.Exclusive(func(db *sql.DB) error {
		ctx := context.Background()
		conn, err := db.Conn(ctx)
		if err != nil {
			return err
		}
		defer conn.Close()

		attach := fmt.Sprintf("ATTACH %s AS %s", quote(tmp), snapshotAlias)
		if _, err := conn.ExecContext(ctx, attach); err != nil {
			return fmt.Errorf("attach: %w", err)
		}
		_, copyErr := conn.ExecContext(ctx, "COPY FROM DATABASE "+s.catalog(ctx, conn)+" TO "+snapshotAlias)
		_, detachErr := conn.ExecContext(ctx, "DETACH "+snapshotAlias)
		if copyErr != nil {
			return fmt.Errorf("copy database: %w", copyErr)
		}
		return detachErr
	})
	if err != nil {
		_ = os.Remove(tmp)
		_ = os.Remove(tmp + ".wal")
		return fmt.Errorf("snapshot: %w", err)
	}
	return os.Rename(tmp, dstPath)
}

// catalog is the name DuckDB gave the store's own database, which follows
// the file name.
func (s *Store) catalog(ctx context.Context, conn *sql.Conn) string {
	var name string
	if err := conn.QueryRowContext(ctx, "SELECT current_database()").Scan(&name); err != nil || name == "" {
		return strings.TrimSuffix(filepath.Base(s.dbPath), filepath.Ext(s.dbPath))
	}
	return name
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
