// Package history keeps a local SQLite log of every notification the
// catalog controller emitted, so past failures and changes can be reviewed
// with `shelf log`.
package history

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/shelf/internal/catalog"
	_ "modernc.org/sqlite"
)

// FileName is the database file inside the config dir
const FileName = "history.db"

// timeFormat has fixed width so timestamps order lexically
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded notification
type Entry struct {
	ID        string            `json:"id"`
	Time      time.Time         `json:"time"`
	Severity  catalog.Severity  `json:"severity"`
	Operation catalog.Operation `json:"operation"`
	Message   string            `json:"message"`
	Email     string            `json:"email,omitempty"`
}

// Recorder writes notifications to the history database. It implements
// catalog.Notifier so it can sit next to the UI notifier.
type Recorder struct {
	conn  *sql.DB
	path  string
	email func() string
}

// Open opens (creating if needed) the history database in dir.
func Open(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	path := filepath.Join(dir, FileName)

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	// Enable WAL mode so `shelf log` can read while a browser session writes
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	r := &Recorder{conn: conn, path: path}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return r, nil
}

// Path returns the database file location.
func (r *Recorder) Path() string { return r.path }

// Close closes the database.
func (r *Recorder) Close() error {
	return r.conn.Close()
}

// SetIdentity sets a function returning the signed-in email recorded with
// each entry.
func (r *Recorder) SetIdentity(email func() string) {
	r.email = email
}

func (r *Recorder) migrate() error {
	if _, err := r.conn.Exec(schema); err != nil {
		return err
	}
	var version string
	err := r.conn.QueryRow("SELECT value FROM schema_info WHERE key = 'version'").Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return err
	}
	if v, _ := strconv.Atoi(version); v >= SchemaVersion {
		return nil
	}
	_, err = r.conn.Exec(`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', ?)`,
		strconv.Itoa(SchemaVersion))
	return err
}

// Notify records n. Write failures are logged, never surfaced to the user.
func (r *Recorder) Notify(n catalog.Notification) {
	if _, err := r.Record(n); err != nil {
		slog.Warn("history: record notification", "err", err)
	}
}

// Record stores n and returns the stored entry.
func (r *Recorder) Record(n catalog.Notification) (Entry, error) {
	e := Entry{
		ID:        uuid.NewString(),
		Time:      n.Time,
		Severity:  n.Severity,
		Operation: n.Operation,
		Message:   n.Message,
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if r.email != nil {
		e.Email = r.email()
	}
	_, err := r.conn.Exec(`
		INSERT INTO entries (id, timestamp, severity, operation, message, email)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Time.UTC().Format(timeFormat), string(e.Severity), string(e.Operation), e.Message, e.Email)
	if err != nil {
		return Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

// Filter narrows Recent results. Zero values match everything.
type Filter struct {
	Severity catalog.Severity
	Since    time.Time
}

// Recent returns up to limit entries, newest first.
func (r *Recorder) Recent(limit int, f Filter) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, timestamp, severity, operation, message, email FROM entries WHERE 1=1`
	var args []any
	if f.Severity != "" {
		query += ` AND severity = ?`
		args = append(args, string(f.Severity))
	}
	if !f.Since.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, f.Since.UTC().Format(timeFormat))
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			ts, severity, opStr string
		)
		if err := rows.Scan(&e.ID, &ts, &severity, &opStr, &e.Message, &e.Email); err != nil {
			return nil, err
		}
		e.Time, err = time.Parse(timeFormat, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		e.Severity = catalog.Severity(severity)
		e.Operation = catalog.Operation(opStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes entries older than before. A zero time deletes everything.
func (r *Recorder) Clear(before time.Time) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if before.IsZero() {
		res, err = r.conn.Exec(`DELETE FROM entries`)
	} else {
		res, err = r.conn.Exec(`DELETE FROM entries WHERE timestamp < ?`, before.UTC().Format(timeFormat))
	}
	if err != nil {
		return 0, fmt.Errorf("clear entries: %w", err)
	}
	return res.RowsAffected()
}
