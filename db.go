package main

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// QueryLog is one answered query in the history table. Records
// themselves are never persisted; the history is operational
// diagnostics only.
type QueryLog struct {
	ID         int64
	Query      string
	Strategy   string
	Format     string
	Matched    int
	Failed     bool
	DurationMs int64
	AskedAt    time.Time
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS query_history (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		query       TEXT NOT NULL,
		strategy    TEXT NOT NULL DEFAULT '',
		format      TEXT NOT NULL DEFAULT '',
		matched     INTEGER NOT NULL DEFAULT 0,
		failed      INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		asked_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_qh_asked_at ON query_history(asked_at);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func InsertQueryLog(db *sql.DB, entry QueryLog) error {
	failed := 0
	if entry.Failed {
		failed = 1
	}
	_, err := db.Exec(
		`INSERT INTO query_history (query, strategy, format, matched, failed, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Query, entry.Strategy, entry.Format, entry.Matched, failed, entry.DurationMs,
	)
	return err
}

func RecentQueryLogs(db *sql.DB, limit int) ([]QueryLog, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := db.Query(
		`SELECT id, query, strategy, format, matched, failed, duration_ms, asked_at
		 FROM query_history ORDER BY asked_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []QueryLog
	for rows.Next() {
		var entry QueryLog
		var failed int
		if err := rows.Scan(&entry.ID, &entry.Query, &entry.Strategy, &entry.Format, &entry.Matched, &failed, &entry.DurationMs, &entry.AskedAt); err != nil {
			return nil, err
		}
		entry.Failed = failed != 0
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// FormatQueryHistory renders recent history for the shell.
func FormatQueryHistory(logs []QueryLog) string {
	if len(logs) == 0 {
		return "No queries yet."
	}
	var b strings.Builder
	for _, entry := range logs {
		query := entry.Query
		if len(query) > 80 {
			query = query[:80] + "..."
		}
		b.WriteString(entry.AskedAt.Format("2006-01-02 15:04"))
		b.WriteString("  ")
		b.WriteString(query)
		b.WriteString("  (")
		b.WriteString(entry.Format)
		b.WriteString(", ")
		b.WriteString(entry.Strategy)
		if entry.Failed {
			b.WriteString(", extraction failed")
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
