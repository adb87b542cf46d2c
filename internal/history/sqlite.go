package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // registers the sqlite database driver
)

const driverName = "sqlite"

// SQLite is a SQLite-backed history store.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening history database %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session TEXT NOT NULL,
			line TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS history_session ON history (session);
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating history table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Append adds a line entered in the given session.
func (s *SQLite) Append(session, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("INSERT INTO history (session, line, created_at) VALUES (?, ?, ?)",
		session, line, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("storing history line: %w", err)
	}
	return nil
}

// Lines returns up to limit of the most recent lines.
func (s *SQLite) Lines(limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.query(`
		SELECT line FROM (
			SELECT id, line FROM history ORDER BY id DESC LIMIT ?
		) ORDER BY id`, limit)
}

// Session returns all lines of the given session.
func (s *SQLite) Session(session string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.query("SELECT line FROM history WHERE session = ? ORDER BY id", session)
}

// Close closes the database.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing history database: %w", err)
	}
	return nil
}

func (s *SQLite) query(query string, args ...any) ([]string, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, fmt.Errorf("scanning history line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading history rows: %w", err)
	}
	return lines, nil
}
