package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (words, bigrams, ingestions)
// 1 - Added index on bigrams.second_id
const currentSchemaVersion = 1

// DefaultPath is the store file used when no path is configured.
const DefaultPath = "bigrams.db"

// sidecarSuffixes lists files SQLite may create next to the store.
var sidecarSuffixes = []string{"-journal", "-wal", "-shm"}

// Store is a handle to the persisted word and bigram tables.
// A Store owns a single connection; it is not meant for concurrent writers.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - DELETE journal mode, so the store stays a single file between runs
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	// Open database (creates file if doesn't exist)
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, newError("open store", KindOpen, err)
	}

	// Verify connection works
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, newError("open store", KindOpen, err)
	}

	// SQLite only supports one writer at a time, and pragmas are
	// per-connection, so keep exactly one connection around.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, newError("open store", KindOpen, err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, newError("apply schema", KindSchema, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection. Calling Close more than once is safe;
// any other method called after Close returns a *StorageError.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the file the store was opened from.
func (s *Store) Path() string {
	return s.path
}

// Reset deletes the store file at path together with any SQLite sidecar
// files. A missing file is not an error. The next Open recreates an empty
// schema.
func Reset(path string) error {
	for _, p := range append([]string{path}, sidecars(path)...) {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return newError("reset store", KindReset, err)
		}
	}
	return nil
}

func sidecars(path string) []string {
	out := make([]string, 0, len(sidecarSuffixes))
	for _, suffix := range sidecarSuffixes {
		out = append(out, path+suffix)
	}
	return out
}

// Batch runs fn inside a single transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so a failed batch leaves no words or
// bigrams behind.
//
// The store holds one connection: fn must use the *Batch it is given, not
// the Store, or it will block.
func (s *Store) Batch(ctx context.Context, fn func(*Batch) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newError("begin batch", KindWrite, err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Batch{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return newError("commit batch", KindWrite, err)
	}
	return nil
}

// Batch is a transaction-scoped view of the store.
type Batch struct {
	tx *sql.Tx
}

// ResolveWord is Store.ResolveWord within the batch's transaction.
func (b *Batch) ResolveWord(ctx context.Context, word string) (int64, error) {
	return resolveWord(ctx, b.tx, word)
}

// AccumulateBigram is Store.AccumulateBigram within the batch's transaction.
func (b *Batch) AccumulateBigram(ctx context.Context, firstID, secondID int64) error {
	return accumulateBigram(ctx, b.tx, firstID, secondID)
}

// RecordIngestion is Store.RecordIngestion within the batch's transaction.
func (b *Batch) RecordIngestion(ctx context.Context, ing Ingestion) error {
	return recordIngestion(ctx, b.tx, ing)
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = DELETE",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist, runs migrations and checks
// that the tables have the columns this package queries.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return verifySchema(db)
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version > currentSchemaVersion {
		return fmt.Errorf("store schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 adds the second_id index for stores created before v1.
// New stores already get it from schema.sql.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_bigrams_second_id
		ON bigrams(second_id)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifySchema catches files whose tables exist under the same names but
// with different columns.
func verifySchema(db *sql.DB) error {
	probes := []string{
		"SELECT id, string FROM words LIMIT 0",
		"SELECT first_id, second_id, count FROM bigrams LIMIT 0",
		"SELECT seq, id, source, tokens, pairs FROM ingestions LIMIT 0",
	}
	for _, probe := range probes {
		rows, err := db.Query(probe)
		if err != nil {
			return fmt.Errorf("schema mismatch: %w", err)
		}
		rows.Close()
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
