package history

import "sync"

type entry struct {
	session string
	line    string
}

// Memory is an in-memory history store.
type Memory struct {
	mu      sync.RWMutex
	entries []entry
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Append adds a line entered in the given session.
func (m *Memory) Append(session, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry{session: session, line: line})
	return nil
}

// Lines returns up to limit of the most recent lines.
func (m *Memory) Lines(limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	start := max(len(m.entries)-limit, 0)
	lines := make([]string, 0, len(m.entries)-start)
	for _, e := range m.entries[start:] {
		lines = append(lines, e.line)
	}
	return lines, nil
}

// Session returns all lines of the given session.
func (m *Memory) Session(session string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var lines []string
	for _, e := range m.entries {
		if e.session == session {
			lines = append(lines, e.line)
		}
	}
	return lines, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
