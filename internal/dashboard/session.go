package dashboard

import (
	"sync"
	"time"
)

// HistoryPoint is one charted observation for an entity.
type HistoryPoint struct {
	EntityKey string
	TimeLabel string // wall-clock time of day, captured at record time
	Value     float64
}

// SessionStore is the append-only, session-scoped series feeding the trend
// chart. It never evicts: truncation would silently change what the user sees
// as recent history. Keys are exact-match (server-canonical city casing,
// lower-cased coin ids).
type SessionStore struct {
	mu     sync.Mutex
	points []HistoryPoint
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Record appends one point for the entity, labeled with the local wall-clock
// time of the observation. Points are never reordered or deduplicated.
func (s *SessionStore) Record(entityKey string, value float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = append(s.points, HistoryPoint{
		EntityKey: entityKey,
		TimeLabel: at.Format("15:04:05"),
		Value:     value,
	})
}

// SeriesFor returns the points recorded for an entity, oldest first.
func (s *SessionStore) SeriesFor(entityKey string) []HistoryPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []HistoryPoint
	for _, p := range s.points {
		if p.EntityKey == entityKey {
			out = append(out, p)
		}
	}
	return out
}

// Size returns the total number of recorded points across all entities.
func (s *SessionStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}
