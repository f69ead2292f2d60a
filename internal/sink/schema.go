// Package sink is the event sink: it implements validate.EventSink over
// SQLite, owns the currently-failed-kind dedup bitmap the core's contract
// assumes, and renders a per-cycle incident digest as Markdown.
package sink

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// createEventsTable mirrors the teacher's events table shape: one append-only
// row per posted outcome, keyed by service name rather than a remote host id
// since every service here is local to this daemon.
const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	service_name TEXT NOT NULL,
	kind TEXT NOT NULL,
	state TEXT NOT NULL,
	action TEXT NOT NULL,
	message TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const createEventsIndex = `
CREATE INDEX IF NOT EXISTS idx_events_service_time
	ON events(service_name, created_at DESC);`

// initSchema creates the sink's tables. Safe to call on every startup --
// IF NOT EXISTS makes it idempotent, the same contract InitDB relies on.
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(createEventsTable); err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}
	if _, err := db.Exec(createEventsIndex); err != nil {
		return fmt.Errorf("creating events index: %w", err)
	}
	return nil
}

// Open opens (creating if necessary) the SQLite event log at dbPath.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening event database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging event database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Printf("[WARN] failed to enable WAL mode on event database: %v", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
