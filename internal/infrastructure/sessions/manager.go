// Package sessions keeps the orchestration service's in-memory session
// records with TTL-based expiry. Reads on a session slide its expiry forward,
// so long-running executions stay alive as long as someone is polling.
package sessions

import (
	"sync"
	"time"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// Manager is an in-memory session store guarded by a single mutex.
type Manager struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*domain.SessionRecord
}

// NewManager builds a manager. A non-positive ttl falls back to the default
// of one hour. The clock override is for tests.
func NewManager(ttl time.Duration, now func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = domain.DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Manager{
		ttl:      ttl,
		now:      now,
		sessions: make(map[string]*domain.SessionRecord),
	}
}

// Create registers a new session record and stamps its expiry.
func (m *Manager) Create(record domain.SessionRecord) {
	now := m.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.ExpiresAt = now.Add(m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[record.ID] = &record
}

// Get returns a snapshot copy and slides the session's expiry forward.
// Expired sessions are evicted and reported as expired.
func (m *Manager) Get(id string) (domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.sessions[id]
	if !ok {
		return domain.SessionRecord{}, domain.ErrSessionNotFound
	}
	now := m.now()
	if record.Expired(now) {
		delete(m.sessions, id)
		return domain.SessionRecord{}, domain.ErrSessionExpired
	}
	record.ExpiresAt = now.Add(m.ttl)
	return snapshot(record), nil
}

// Update applies the mutation under the store's lock. The session's UpdatedAt
// and expiry are refreshed after the mutation runs.
func (m *Manager) Update(id string, mutate func(*domain.SessionRecord)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	now := m.now()
	if record.Expired(now) {
		delete(m.sessions, id)
		return domain.ErrSessionExpired
	}
	mutate(record)
	record.UpdatedAt = now
	record.ExpiresAt = now.Add(m.ttl)
	return nil
}

// ListActive returns snapshots of all unexpired sessions.
func (m *Manager) ListActive() []domain.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	records := make([]domain.SessionRecord, 0, len(m.sessions))
	for id, record := range m.sessions {
		if record.Expired(now) {
			delete(m.sessions, id)
			continue
		}
		records = append(records, snapshot(record))
	}
	return records
}

// CleanupExpired evicts expired sessions and returns how many were removed.
func (m *Manager) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, record := range m.sessions {
		if record.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// snapshot deep-copies the mutable slices so callers can never alias the
// stored record.
func snapshot(record *domain.SessionRecord) domain.SessionRecord {
	out := *record
	out.Workflows = append([]string(nil), record.Workflows...)
	out.Steps = append([]domain.ExecutionStep(nil), record.Steps...)
	if record.Parameters != nil {
		out.Parameters = make(map[string]string, len(record.Parameters))
		for k, v := range record.Parameters {
			out.Parameters[k] = v
		}
	}
	if record.Clarification != nil {
		q := *record.Clarification
		out.Clarification = &q
	}
	return out
}

var _ ports.SessionStore = (*Manager)(nil)
