// Package session keeps one isolated title registry and view tree per browser.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/pagetitle/internal/services/titled/view"
	"github.com/louisbranch/pagetitle/internal/title"
)

// Session is one browser's mounted view tree. Its registry is never shared
// with another session.
type Session struct {
	id string

	mu       sync.Mutex
	tree     *view.Tree
	lastSeen time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Do runs fn with exclusive access to the session's tree.
func (s *Session) Do(fn func(*view.Tree) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.tree)
}

// Store holds live sessions in memory.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewStore returns a store that discards sessions idle for longer than idle.
// logger receives title diagnostics from every session registry.
func NewStore(idle time.Duration, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
		logger:   logger,
	}
}

// Get returns the live session with id and marks it as seen.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess, true
}

// Create starts a session with a fresh registry and an empty tree.
func (s *Store) Create() *Session {
	sess := &Session{
		id:   uuid.NewString(),
		tree: view.NewTree(title.NewRegistry(title.WithLogger(s.logger))),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.lastSeen = s.now()
	s.sessions[sess.id] = sess
	return sess
}

// GetOrCreate returns the session with id, creating one when it is unknown or
// expired. created reports whether a new session was started.
func (s *Store) GetOrCreate(id string) (sess *Session, created bool) {
	if existing, ok := s.Get(id); ok {
		return existing, false
	}
	return s.Create(), true
}

// Delete unmounts and forgets the session with id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		_ = sess.Do(func(tree *view.Tree) error {
			tree.Unmount()
			return nil
		})
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep discards sessions idle for longer than the store's idle timeout and
// returns how many were removed.
func (s *Store) Sweep() int {
	if s.idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idle)
	s.mu.Lock()
	expired := make([]*Session, 0)
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		_ = sess.Do(func(tree *view.Tree) error {
			tree.Unmount()
			return nil
		})
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug("swept idle title sessions", slog.Int("removed", removed))
			}
		}
	}
}
