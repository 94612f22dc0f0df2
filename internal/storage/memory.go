package storage

import (
	"context"
	"sync"
	"time"

	"github.com/presencematic/whatsapp-orders/internal/models"
)

// MemoryStore holds sessions in memory for the lifetime of the process
type MemoryStore struct {
	sessions map[string]*models.Session
	mu       sync.RWMutex

	// ttl is how long an untouched session stays readable; zero keeps it forever
	ttl time.Duration
	now func() time.Time
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, sender string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[sender]
	if !exists {
		return nil, ErrSessionNotFound
	}

	// Expired sessions stay invisible until the sweeper removes them
	if m.ttl > 0 && session.ExpiredAt(m.now().Add(-m.ttl)) {
		return nil, ErrSessionNotFound
	}

	return session.Clone(), nil
}

func (m *MemoryStore) Set(ctx context.Context, sender string, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := session.Clone()
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = m.now()
	}
	m.sessions[sender] = stored
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sender string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sender)
	return nil
}

func (m *MemoryStore) Expire(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for sender, session := range m.sessions {
		if session.ExpiredAt(cutoff) {
			delete(m.sessions, sender)
			removed++
		}
	}
	return removed, nil
}

// Count returns the number of live sessions, skipping expired ones not yet swept
func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.ttl <= 0 {
		return len(m.sessions), nil
	}

	cutoff := m.now().Add(-m.ttl)
	live := 0
	for _, session := range m.sessions {
		if !session.ExpiredAt(cutoff) {
			live++
		}
	}
	return live, nil
}
