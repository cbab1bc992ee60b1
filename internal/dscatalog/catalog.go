// Package dscatalog indexes the files DS writes: a sqlite-backed log
// of (telemetry set, filename, open time, close time, byte count) that
// ground tooling can query without touching the telemetry files
// themselves. It is a supplement to DS's hot write path, never
// consulted by it.
package dscatalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Catalog persists a record of every file DS has opened.
type Catalog struct {
	db *sql.DB
}

// Open opens (creating if necessary) a sqlite database at path and
// runs its migration.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ds catalog: %w", err)
	}
	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ds catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS files (
			tlm_set_id   INTEGER NOT NULL,
			filename     TEXT NOT NULL,
			opened_at    TIMESTAMP NOT NULL,
			closed_at    TIMESTAMP,
			byte_count   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (tlm_set_id, filename)
		)
	`)
	return err
}

// RecordOpen inserts a row for a freshly created file.
func (c *Catalog) RecordOpen(tlmSetID uint16, filename string, openedAt time.Time) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO files (tlm_set_id, filename, opened_at, byte_count) VALUES (?, ?, ?, 0)`,
		tlmSetID, filename, openedAt,
	)
	return err
}

// RecordClose updates the close time and final byte count for a
// previously opened file.
func (c *Catalog) RecordClose(tlmSetID uint16, filename string, closedAt time.Time, byteCount uint32) error {
	_, err := c.db.Exec(
		`UPDATE files SET closed_at = ?, byte_count = ? WHERE tlm_set_id = ? AND filename = ?`,
		closedAt, byteCount, tlmSetID, filename,
	)
	return err
}

// FileRecord is one row of the catalog.
type FileRecord struct {
	TlmSetID  uint16
	Filename  string
	OpenedAt  time.Time
	ClosedAt  sql.NullTime
	ByteCount uint32
}

// ListForSet returns every catalog row for a telemetry set, oldest first.
func (c *Catalog) ListForSet(tlmSetID uint16) ([]FileRecord, error) {
	rows, err := c.db.Query(
		`SELECT tlm_set_id, filename, opened_at, closed_at, byte_count
		 FROM files WHERE tlm_set_id = ? ORDER BY opened_at ASC`,
		tlmSetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FileRecord
	for rows.Next() {
		var r FileRecord
		if err := rows.Scan(&r.TlmSetID, &r.Filename, &r.OpenedAt, &r.ClosedAt, &r.ByteCount); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database handle.
func (c *Catalog) Close() error {
	return c.db.Close()
}
