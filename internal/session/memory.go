package session

import (
	"context"
	"sync"

	"github.com/mkortel/goblog/internal/utils"
)

// MemoryStore is an in-memory Store used by tests. It ignores TTLs;
// expiry behavior belongs to the Redis implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]uint64)}
}

func (s *MemoryStore) Create(_ context.Context, userID uint64, _ bool) (string, error) {
	id, err := utils.RandomHex(32)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.sessions[id] = userID
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryStore) Resolve(_ context.Context, id string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[id]
	if !ok {
		return 0, ErrNoSession
	}
	return userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) DeleteAllForUser(_ context.Context, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, uid := range s.sessions {
		if uid == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}

// Count reports the number of live sessions. Test helper.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
