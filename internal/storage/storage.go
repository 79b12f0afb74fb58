// Package storage keeps ingested matches and their spatial facts (one row per
// tracked object per frame) in SQLite. The analysis reads spatial_fact back as
// a single full scan ordered by timestamp.
package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const memoryPath = ":memory:"

// DB is the tracking store behind ingest, analyze, list and sql.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the tracking database at path and applies the
// schema. ":memory:" gives a private in-memory store, used by tests.
func Open(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == memoryPath {
		// Each pooled connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// dsn enables WAL so a long ingest does not block concurrent readers, and a
// busy timeout so those readers wait instead of failing with SQLITE_BUSY.
func dsn(path string) string {
	if path == memoryPath {
		return memoryPath
	}
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(5000)")
	return "file:" + path + "?" + q.Encode()
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
