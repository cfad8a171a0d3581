package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"doc-qa/internal/document"
)

// MemoryStore keeps sessions in process memory with a sliding TTL.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

type memorySession struct {
	s        Session
	lastSeen time.Time
}

// NewMemoryStore creates a store; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, sessions: make(map[string]*memorySession)}
}

func (m *MemoryStore) Create(_ context.Context) (*Session, error) {
	now := m.now()
	ms := &memorySession{s: Session{ID: uuid.NewString(), CreatedAt: now}, lastSeen: now}
	m.mu.Lock()
	m.sessions[ms.s.ID] = ms
	m.mu.Unlock()
	return snapshot(&ms.s), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, err := m.touch(id)
	if err != nil {
		return nil, err
	}
	return snapshot(&ms.s), nil
}

func (m *MemoryStore) Append(_ context.Context, id string, entries ...Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, err := m.touch(id)
	if err != nil {
		return err
	}
	ms.s.Transcript = append(ms.s.Transcript, entries...)
	return nil
}

func (m *MemoryStore) SetDraft(_ context.Context, id, draft string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, err := m.touch(id)
	if err != nil {
		return err
	}
	ms.s.Draft = draft
	return nil
}

func (m *MemoryStore) SetDocument(_ context.Context, id string, doc *document.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, err := m.touch(id)
	if err != nil {
		return err
	}
	ms.s.Document = doc
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// touch must be called with mu held.
func (m *MemoryStore) touch(id string) (*memorySession, error) {
	ms, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := m.now()
	if m.ttl > 0 && now.Sub(ms.lastSeen) >= m.ttl {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	ms.lastSeen = now
	return ms, nil
}

func snapshot(s *Session) *Session {
	cp := *s
	cp.Transcript = append([]Entry(nil), s.Transcript...)
	return &cp
}
