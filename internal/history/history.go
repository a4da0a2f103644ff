package history

import (
	"sync"
	"time"
)

// Kind classifies a history entry by the surface that produced it.
type Kind string

const (
	KindWeather Kind = "weather"
	KindCrypto  Kind = "crypto"
	KindAgent   Kind = "agent"
)

// Entry is one recorded query/answer pair.
type Entry struct {
	Timestamp string `json:"timestamp"` // UTC, RFC3339
	Kind      Kind   `json:"kind"`
	Query     string `json:"query"`
	Result    any    `json:"result"`
}

// Log is a concurrency-safe, bounded, in-memory history feed.
type Log struct {
	mu    sync.Mutex
	max   int
	items []Entry
}

// NewLog creates a Log keeping at most max entries (0 = unlimited).
func NewLog(max int) *Log {
	return &Log{max: max}
}

// Add records an entry, evicting the oldest beyond the cap.
func (l *Log) Add(kind Kind, query string, result any) {
	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Kind:      kind,
		Query:     query,
		Result:    result,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = append(l.items, entry)
	if l.max > 0 && len(l.items) > l.max {
		over := len(l.items) - l.max
		l.items = l.items[over:]
	}
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(limit int) []Entry {
	if limit <= 0 {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.items)
	if limit > n {
		limit = n
	}

	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, l.items[i])
	}
	return out
}
