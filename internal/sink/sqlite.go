package sink

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// SQLite driver for local materialization.
	_ "github.com/mattn/go-sqlite3"

	"sumoflow/internal/domain"
)

// SQLite materializes extracted records into a local SQLite file, one table
// per stream with the full record stored as JSON. Useful for ad hoc local
// inspection of an extraction without a downstream loader.
type SQLite struct {
	db       *sql.DB
	prepared map[string]bool
}

// NewSQLite opens (or creates) the SQLite database at path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite sink %s: %w", path, err)
	}
	return &SQLite{db: db, prepared: make(map[string]bool)}, nil
}

// WriteSchema creates the stream's table if needed. The schema itself is
// stored alongside so the file is self-describing.
func (s *SQLite) WriteSchema(stream string, schema *domain.Schema, keyProperties []string) error {
	if err := s.ensureTable(stream); err != nil {
		return err
	}
	encoded, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("encode schema for %s: %w", stream, err)
	}
	keys, err := json.Marshal(keyProperties)
	if err != nil {
		return fmt.Errorf("encode key properties for %s: %w", stream, err)
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO _schemas (stream, schema, key_properties) VALUES (?, ?, ?)`,
		stream, string(encoded), string(keys),
	)
	if err != nil {
		return fmt.Errorf("store schema for %s: %w", stream, err)
	}
	return nil
}

// WriteRecord appends one record to the stream's table.
func (s *SQLite) WriteRecord(stream string, record domain.Record) error {
	if err := s.ensureTable(stream); err != nil {
		return err
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", stream, err)
	}
	_, err = s.db.Exec(
		fmt.Sprintf(`INSERT INTO %s (written_at, record) VALUES (?, ?)`, quoteIdent(stream)),
		time.Now().UTC().Format(time.RFC3339), string(encoded),
	)
	if err != nil {
		return fmt.Errorf("insert record into %s: %w", stream, err)
	}
	return nil
}

// WriteState is a no-op for the SQLite sink; there is no incremental state
// to track.
func (s *SQLite) WriteState(map[string]interface{}) error { return nil }

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ensureTable(stream string) error {
	if s.prepared[stream] {
		return nil
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS _schemas (
		stream TEXT PRIMARY KEY,
		schema TEXT,
		key_properties TEXT
	)`)
	if err != nil {
		return fmt.Errorf("create _schemas table: %w", err)
	}
	_, err = s.db.Exec(fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		written_at TEXT,
		record TEXT
	)`, quoteIdent(stream)))
	if err != nil {
		return fmt.Errorf("create table for %s: %w", stream, err)
	}
	s.prepared[stream] = true
	return nil
}

// quoteIdent quotes a stream name as a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
