// Package sqlite holds the small amount of database plumbing the tools need:
// catalog reads, statement execution into plain Go values, and the
// append-only query history.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // register driver
)

// Conn is the subset of database/sql the tools use. *sql.DB, *sql.Conn and
// *sql.Tx all satisfy it. The caller owns the connection.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Open opens a SQLite database file for a CLI session.
// A single pooled connection keeps session state (temp tables, pragmas)
// consistent across tool calls.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", path, err)
	}
	return db, nil
}
