// Package sqlite is the pure-Go alternative backend. It shares the schema
// and queries of the DuckDB store and is selected with backend: sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/heyojules/invite/internal/migrate"
	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/sqlstore"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

var _ model.Backend = (*Store)(nil)

// ErrInMemoryStore indicates the store uses an in-memory DB and cannot be snapshotted.
var ErrInMemoryStore = errors.New("sqlite: in-memory store cannot be snapshotted")

// Store is a SQLite-backed model.Backend.
type Store struct {
	*sqlstore.Store
	dbPath string
}

// NewStore opens or creates a SQLite database. An empty dbPath keeps the
// database in memory on a single connection.
func NewStore(dbPath string, logger *zap.Logger, queryTimeout ...time.Duration) (*Store, error) {
	dsn := ":memory:"
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if dbPath == "" {
		// Every new connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := migrate.NewRunner(db, logger).Run(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	var qt time.Duration
	if len(queryTimeout) > 0 {
		qt = queryTimeout[0]
	}
	return &Store{Store: sqlstore.New(db, qt), dbPath: dbPath}, nil
}

// DBPath returns the database file path. Empty means in-memory DB.
func (s *Store) DBPath() string { return s.dbPath }

// SnapshotTo writes a consistent copy of the database to dstPath with
// VACUUM INTO.
func (s *Store) SnapshotTo(dstPath string) error {
	if s.dbPath == "" {
		return ErrInMemoryStore
	}
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	// VACUUM INTO refuses to overwrite.
	tmp := dstPath + ".tmp"
	_ = os.Remove(tmp)

	err := s.Exclusive(func(db *sql.DB) error {
		_, err := db.Exec("VACUUM INTO '" + strings.ReplaceAll(tmp, "'", "''") + "'")
		return err
	})
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("vacuum into: %w", err)
	}
	return os.Rename(tmp, dstPath)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB().Close()
}
