package api

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/junepark678/ebsi-csat/internal/sidebar"
)

type session struct {
	controller *sidebar.Controller
	lastSeen   time.Time
}

// SessionStore keeps one controller per sidebar instance.
type SessionStore struct {
	newController func() *sidebar.Controller

	mu       sync.Mutex
	sessions map[string]*session
}

func NewSessionStore(newController func() *sidebar.Controller) *SessionStore {
	return &SessionStore{
		newController: newController,
		sessions:      make(map[string]*session),
	}
}

func (s *SessionStore) Create() (string, *sidebar.Controller) {
	id := uuid.New().String()
	ctrl := s.newController()

	s.mu.Lock()
	s.sessions[id] = &session{controller: ctrl, lastSeen: time.Now()}
	s.mu.Unlock()

	return id, ctrl
}

func (s *SessionStore) Get(id string) (*sidebar.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = time.Now()
	return sess.controller, true
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
func (s *SessionStore) Sweep(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
