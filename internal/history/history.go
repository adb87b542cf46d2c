// Package history provides the stores of the REPL line history.
package history

import (
	"github.com/google/uuid"
)

// DefaultLimit is the amount of lines that are loaded into the line editor.
const DefaultLimit = 1000

// Store persists the lines entered in the REPL.
type Store interface {
	// Append adds a line entered in the given session.
	Append(session, line string) error
	// Lines returns up to limit of the most recent lines of all sessions,
	// the oldest line first.
	Lines(limit int) ([]string, error)
	// Session returns all lines of the given session, the oldest line first.
	Session(session string) ([]string, error)
	// Close releases the resources of the store.
	Close() error
}

// NewSession returns a new unique session identifier.
func NewSession() string {
	return uuid.NewString()
}

// Open returns a SQLite store for the given database path, or a memory
// store if the path is empty.
func Open(path string) (Store, error) {
	if path == "" {
		return NewMemory(), nil
	}
	return NewSQLite(path)
}
