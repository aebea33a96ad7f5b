package services

import (
	"sync"

	"github.com/dmitrijs2005/easydrink/internal/client/models"
)

// SessionState is what the UI routes on. While IsLoading is true the identity
// is unknown and neither signed-in nor signed-out views should be shown.
type SessionState struct {
	User      *models.User
	IsLoading bool
}

// SessionStore is the single owned cell holding the session. It is fed only
// by the identity adapter it is bound to.
type SessionStore struct {
	notify sync.Mutex

	mu     sync.RWMutex
	state  SessionState
	closed bool
	nextID uint64
	subs   map[uint64]func(SessionState)

	ready     chan struct{}
	readyOnce sync.Once

	unsubscribe func()
	closeOnce   sync.Once
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		state: SessionState{IsLoading: true},
		subs:  make(map[uint64]func(SessionState)),
		ready: make(chan struct{}),
	}
}

// Bind subscribes the store to observe, typically AuthService.ObserveSession.
// The first notification ends loading; later ones only replace the user.
func (s *SessionStore) Bind(observe func(func(*models.User)) func()) {
	unsub := observe(s.onSession)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsub()
		return
	}
	s.unsubscribe = unsub
	s.mu.Unlock()
}

func (s *SessionStore) onSession(u *models.User) {
	s.notify.Lock()
	defer s.notify.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state = SessionState{User: u}
	state := s.state
	subs := make([]func(SessionState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	s.readyOnce.Do(func() { close(s.ready) })
	for _, fn := range subs {
		fn(state)
	}
}

func (s *SessionStore) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CurrentUser returns nil while loading or when signed out.
func (s *SessionStore) CurrentUser() *models.User {
	return s.State().User
}

// Ready is closed once the initial session is known.
func (s *SessionStore) Ready() <-chan struct{} {
	return s.ready
}

// Subscribe registers fn for state changes. It is not called with the
// current state. fn must not unsubscribe or Close the store.
func (s *SessionStore) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notify.Lock()
			defer s.notify.Unlock()
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Close releases the adapter subscription exactly once. No subscriber is
// called after Close returns.
func (s *SessionStore) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		unsub := s.unsubscribe
		s.unsubscribe = nil
		s.mu.Unlock()

		if unsub != nil {
			unsub()
		}

		// wait for an in-flight delivery
		s.notify.Lock()
		s.notify.Unlock()
	})
}
