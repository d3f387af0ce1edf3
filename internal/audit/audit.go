package audit

import (
	"context"
	"sync"
	"time"
)

// Actions recorded for resolved signals.
const (
	ActionApprove = "approve"
	ActionDecline = "decline"
)

// Entry is one recorded resolution.
type Entry struct {
	SyntheticID string `json:"synthetic_id"`
	Action      string `json:"action"`
	Timestamp   string `json:"timestamp"`
}

// Log records signal resolutions. List returns entries newest-first.
type Log interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// NewEntry builds an entry stamped with the current UTC time.
func NewEntry(syntheticID, action string) Entry {
	return Entry{
		SyntheticID: syntheticID,
		Action:      action,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// MemoryLog is the in-process audit log.
type MemoryLog struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLog creates an empty in-memory log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Record implements Log.
func (m *MemoryLog) Record(ctx context.Context, entry Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// List implements Log, newest-first.
func (m *MemoryLog) List(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.entries)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// Close implements Log.
func (m *MemoryLog) Close() error {
	return nil
}
