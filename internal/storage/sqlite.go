package storage

import (
	"context"

	"github.com/spetersoncode/countdown/internal/db"
)

// SQLiteKV stores values in the kv table of a countdown database.
type SQLiteKV struct {
	db   *db.DB
	repo *db.KVRepo
}

// OpenSQLite opens (creating and migrating if needed) the database at path.
// An empty path uses db.DefaultDBPath.
func OpenSQLite(path string) (*SQLiteKV, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, err
	}
	return NewSQLiteKV(database), nil
}

// NewSQLiteKV wraps an already migrated database.
func NewSQLiteKV(database *db.DB) *SQLiteKV {
	return &SQLiteKV{db: database, repo: db.NewKVRepo(database.DB)}
}

// DB returns the underlying database.
func (s *SQLiteKV) DB() *db.DB { return s.db }

// Path returns the database file path.
func (s *SQLiteKV) Path() string { return s.db.Path() }

// Get implements KV.
func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.repo.Get(ctx, key)
}

// Set implements KV.
func (s *SQLiteKV) Set(ctx context.Context, key string, value []byte) error {
	return s.repo.Set(ctx, key, value)
}

// Close implements KV.
func (s *SQLiteKV) Close() error { return s.db.Close() }
