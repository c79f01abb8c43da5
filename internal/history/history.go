// Package history keeps a SQLite log of transcript resolutions.
package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its FS, dialect and logger in package globals.
var gooseMu sync.Mutex

// Entry is one resolution outcome.
type Entry struct {
	ID         int64           `json:"id"`
	VideoID    string          `json:"video_id"`
	Success    bool            `json:"success"`
	Method     string          `json:"method,omitempty"`
	Language   string          `json:"language,omitempty"`
	Error      string          `json:"error,omitempty"`
	Attempts   json.RawMessage `json:"attempts,omitempty"`
	Cached     bool            `json:"cached,omitempty"`
	DurationMs int64           `json:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Filter narrows List results.
type Filter struct {
	VideoID    string
	FailedOnly bool
	Limit      int
}

// Stats aggregates the whole log.
type Stats struct {
	Total     int            `json:"total"`
	Successes int            `json:"successes"`
	Failures  int            `json:"failures"`
	ByMethod  map[string]int `json:"by_method"`
}

// Store is a SQLite-backed resolution log.
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.go_transcript/history.db.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".go_transcript", "history.db")
}

// Open opens (or creates) the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("history: mkdir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrations)
	goose.SetLogger(log.New(io.Discard, "", 0))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends e to the log and returns its id. A zero CreatedAt means now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.VideoID == "" {
		return 0, errors.New("history: video id is required")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	attempts := string(e.Attempts)
	if attempts == "" {
		attempts = "[]"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO resolutions (video_id, success, method, language, error, attempts, cached, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VideoID, e.Success, e.Method, e.Language, e.Error, attempts, e.Cached, e.DurationMs,
		e.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("history: insert: %w", err)
	}
	return res.LastInsertId()
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var where []string
	var args []any
	if f.VideoID != "" {
		where = append(where, "video_id = ?")
		args = append(args, f.VideoID)
	}
	if f.FailedOnly {
		where = append(where, "success = 0")
	}
	q := `SELECT id, video_id, success, method, language, error, attempts, cached, duration_ms, created_at FROM resolutions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                    Entry
			method, lang, errMsg sql.NullString
			attempts, createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.VideoID, &e.Success, &method, &lang, &errMsg, &attempts, &e.Cached, &e.DurationMs, &createdAt); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.Method, e.Language, e.Error = method.String, lang.String, errMsg.String
		e.Attempts = json.RawMessage(attempts)
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Stats counts entries overall and per successful method.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT success, COALESCE(method, ''), COUNT(*) FROM resolutions GROUP BY success, method`)
	if err != nil {
		return nil, fmt.Errorf("history: stats: %w", err)
	}
	defer rows.Close()

	st := &Stats{ByMethod: map[string]int{}}
	for rows.Next() {
		var (
			success bool
			method  string
			n       int
		)
		if err := rows.Scan(&success, &method, &n); err != nil {
			return nil, fmt.Errorf("history: stats scan: %w", err)
		}
		st.Total += n
		if success {
			st.Successes += n
			st.ByMethod[method] += n
		} else {
			st.Failures += n
		}
	}
	return st, rows.Err()
}
