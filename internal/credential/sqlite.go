// ABOUTME: SQLite-backed credential store using modernc.org/sqlite
// ABOUTME: Keeps access_token and token_type as rows of a key/value table

package credential

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the credential in a SQLite key/value table.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at path.
// Use ":memory:" for a throwaway database in tests.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "credential", "backend", "sqlite")

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS client_state (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug("credential database ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Set implements Store. Both keys are written in one transaction.
func (s *SQLiteStore) Set(c Credential) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	upsert := `
		INSERT INTO client_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	for _, kv := range [][2]string{{KeyAccessToken, c.Token}, {KeyTokenType, c.TokenType}} {
		if _, err := tx.Exec(upsert, kv[0], kv[1], now); err != nil {
			return fmt.Errorf("writing %s: %w", kv[0], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing credential: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *SQLiteStore) Get() (Credential, bool) {
	token, ok := s.lookup(KeyAccessToken)
	if !ok {
		return Credential{}, false
	}
	tokenType, _ := s.lookup(KeyTokenType)
	c := Credential{Token: token, TokenType: tokenType}
	if c.IsZero() {
		return Credential{}, false
	}
	return c, true
}

func (s *SQLiteStore) lookup(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM client_state WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("reading credential", "key", key, "error", err)
		}
		return "", false
	}
	return value, true
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM client_state WHERE key IN (?, ?)`, KeyAccessToken, KeyTokenType)
	if err != nil {
		return fmt.Errorf("clearing credential: %w", err)
	}
	return nil
}
