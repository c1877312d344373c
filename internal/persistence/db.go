// Package persistence provides SQLite-based save storage: the full world
// snapshot as a versioned JSON blob plus an append-only news log queryable
// after restarts.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/outpost-sim/outpost/internal/effects"
	"github.com/outpost-sim/outpost/internal/engine"
)

// ErrNoSave signals that the database holds no snapshot yet.
var ErrNoSave = errors.New("no saved world")

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		payload TEXT NOT NULL,
		saved_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		headline TEXT NOT NULL,
		category TEXT NOT NULL,
		severity INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_news_tick ON news(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot replaces the stored world snapshot.
func (db *DB) SaveSnapshot(snap *engine.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = db.conn.Exec(`INSERT INTO snapshots (id, version, tick, payload, saved_at)
		VALUES (1, ?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			version = excluded.version,
			tick = excluded.tick,
			payload = excluded.payload,
			saved_at = excluded.saved_at`,
		snap.Version, snap.Tick, string(payload),
	)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.Info("world saved", "tick", snap.Tick, "bytes", len(payload))
	return nil
}

// LoadSnapshot reads the stored world snapshot, ErrNoSave when absent.
func (db *DB) LoadSnapshot() (*engine.Snapshot, error) {
	var payload string
	err := db.conn.Get(&payload, "SELECT payload FROM snapshots WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSave
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap engine.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

// AppendNews writes news items to the append-only log.
func (db *DB) AppendNews(items []effects.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, n := range items {
		_, err := tx.Exec(
			"INSERT INTO news (tick, headline, category, severity) VALUES (?, ?, ?, ?)",
			n.Tick, n.Headline, n.Category, n.Severity,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// newsRow maps the news table for sqlx scanning.
type newsRow struct {
	Tick     uint64 `db:"tick"`
	Headline string `db:"headline"`
	Category string `db:"category"`
	Severity uint8  `db:"severity"`
}

// RecentNews returns the most recent N news items, newest first.
func (db *DB) RecentNews(limit int) ([]effects.NewsItem, error) {
	var rows []newsRow
	err := db.conn.Select(&rows,
		"SELECT tick, headline, category, severity FROM news ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	items := make([]effects.NewsItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, effects.NewsItem{
			Tick:     r.Tick,
			Headline: r.Headline,
			Category: r.Category,
			Severity: effects.Severity(r.Severity),
		})
	}
	return items, nil
}

// SaveMeta stores a key-value pair.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM meta WHERE key = ?", key)
	return value, err
}
