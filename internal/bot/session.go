package bot

import (
	"sync"

	"github.com/spotfetch/spotfetch/internal/models"
)

// SessionStore maps a chat id to that chat's most recently loaded snapshot.
//
// Entries are overwritten on every new playlist link and live for the process
// lifetime. Reads and writes from concurrently handled messages are safe;
// a user racing their own messages observes last-write-wins.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*models.Snapshot
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*models.Snapshot)}
}

// Get returns the snapshot for a chat id, with a presence flag.
func (s *SessionStore) Get(chatID int64) (*models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.sessions[chatID]
	return snapshot, ok
}

// Put stores a snapshot for a chat id, replacing any prior entry.
func (s *SessionStore) Put(chatID int64, snapshot *models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[chatID] = snapshot
}

// Len reports the number of chats with a session.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
