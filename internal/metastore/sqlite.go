package metastore

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/modeler/internal/apperr"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS metadata (
	kind       TEXT NOT NULL,
	name       TEXT NOT NULL,
	blob       BLOB NOT NULL,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (kind, name)
);

CREATE INDEX IF NOT EXISTS idx_metadata_kind ON metadata(kind);
`

// SQLite is a Store backed by a SQLite database file.
type SQLite struct {
	conn *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (or creates) the SQLite database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("metastore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("metastore: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("metastore: apply schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.conn.Close()
}

// Get implements Store.
func (s *SQLite) Get(kind Kind, name string) ([]byte, error) {
	var blob []byte
	err := s.conn.QueryRow(`SELECT blob FROM metadata WHERE kind = ? AND name = ?`, string(kind), name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound.New(string(kind), name)
	}
	if err != nil {
		return nil, apperr.ErrStoreFailure.Wrap(err, "get "+string(kind))
	}
	return blob, nil
}

// Put implements Store.
func (s *SQLite) Put(kind Kind, name string, blob []byte) error {
	_, err := s.conn.Exec(`
		INSERT INTO metadata (kind, name, blob, checksum, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(kind, name) DO UPDATE SET
			blob       = excluded.blob,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, string(kind), name, blob, Checksum(blob))
	if err != nil {
		return apperr.ErrStoreFailure.Wrap(err, "put "+string(kind))
	}
	return nil
}

// Create implements Store. The insert and the conflict check are one
// statement, so concurrent creators of the same name see exactly one winner.
func (s *SQLite) Create(kind Kind, name string, blob []byte) error {
	res, err := s.conn.Exec(`
		INSERT INTO metadata (kind, name, blob, checksum)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(kind, name) DO NOTHING
	`, string(kind), name, blob, Checksum(blob))
	if err != nil {
		return apperr.ErrStoreFailure.Wrap(err, "create "+string(kind))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.ErrStoreFailure.Wrap(err, "create "+string(kind))
	}
	if n == 0 {
		return apperr.ErrNameConflict.New(string(kind), name)
	}
	return nil
}

// List implements Store.
func (s *SQLite) List(kind Kind) ([]string, error) {
	rows, err := s.conn.Query(`SELECT name FROM metadata WHERE kind = ? ORDER BY name`, string(kind))
	if err != nil {
		return nil, apperr.ErrStoreFailure.Wrap(err, "list "+string(kind))
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, apperr.ErrStoreFailure.Wrap(err, "list "+string(kind))
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Delete implements Store.
func (s *SQLite) Delete(kind Kind, name string) error {
	if _, err := s.conn.Exec(`DELETE FROM metadata WHERE kind = ? AND name = ?`, string(kind), name); err != nil {
		return apperr.ErrStoreFailure.Wrap(err, "delete "+string(kind))
	}
	return nil
}

// Checksums implements Store.
func (s *SQLite) Checksums(kind Kind) (map[string]string, error) {
	rows, err := s.conn.Query(`SELECT name, checksum FROM metadata WHERE kind = ?`, string(kind))
	if err != nil {
		return nil, apperr.ErrStoreFailure.Wrap(err, "checksums "+string(kind))
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var n, cs string
		if err := rows.Scan(&n, &cs); err != nil {
			return nil, apperr.ErrStoreFailure.Wrap(err, "checksums "+string(kind))
		}
		out[n] = cs
	}
	return out, rows.Err()
}
