package duckdb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/heyojules/invite/internal/migrate"
	"github.com/heyojules/invite/internal/model"
	"github.com/heyojules/invite/internal/sqlstore"

	_ "github.com/duckdb/duckdb-go/v2"
	"go.uber.org/zap"
)

var _ model.Backend = (*Store)(nil)

// Store manages the DuckDB database connection. Record queries come from
// the embedded sqlstore.Store.
type Store struct {
	*sqlstore.Store
	dbPath string
}

// NewStore opens or creates a DuckDB database.
// If dbPath is empty, an in-memory database is used.
// An optional queryTimeout can be passed; it defaults to 30s.
func NewStore(dbPath string, logger *zap.Logger, queryTimeout ...time.Duration) (*Store, error) {
	dsn := ""
	if dbPath != "" {
		// Ensure parent directory exists
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, err
		}
		dsn = dbPath
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, err
	}

	if err := migrate.NewRunner(db, logger).Run(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	var qt time.Duration
	if len(queryTimeout) > 0 {
		qt = queryTimeout[0]
	}

	return &Store{
		Store:  sqlstore.New(db, qt),
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.DB().Close()
}
