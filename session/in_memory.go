package session

import (
	"sync"
	"time"

	"github.com/hupe1980/agentrouter/core"
)

// Options tunes the in-memory store.
type Options struct {
	// TTL evicts sessions whose last update is older than the duration.
	// Eviction is opportunistic: expired sessions are swept on access. Zero
	// disables eviction and sessions live for the process lifetime.
	TTL time.Duration

	// Clock overrides time.Now for TTL checks. Tests only.
	Clock func() time.Time
}

// InMemoryStore is a volatile core.SessionStore keeping sessions in a process
// local map keyed by (user id, session id). It is safe for concurrent access
// and best suited for tests or ephemeral demo servers. Returned sessions are
// cloned so callers cannot mutate internal state.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*core.Session
	locks    map[string]*sessionLock
	opts     Options
}

// sessionLock is a per-key mutex with a waiter count so idle entries can be
// dropped. Lock lifetime is independent of session TTL: an expired session's
// lock stays valid as long as anyone holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{Clock: time.Now}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &InMemoryStore{
		sessions: make(map[string]*core.Session),
		locks:    make(map[string]*sessionLock),
		opts:     opts,
	}
}

// sessionKey builds the composite map key. NUL never occurs in ids coming
// from callers, so the concatenation is collision free.
func sessionKey(userID, sessionID string) string {
	return userID + "\x00" + sessionID
}

// Get returns a clone of the session for (userID, sessionID), creating it
// lazily on first access.
func (s *InMemoryStore) Get(userID, sessionID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return s.getOrCreateLocked(userID, sessionID).Clone(), nil
}

// AppendExchange commits a completed user/agent turn pair against the live
// session, creating it if needed.
func (s *InMemoryStore) AppendExchange(userID, sessionID string, userTurn, agentTurn core.Turn) error {
	s.mu.Lock()
	sess := s.getOrCreateLocked(userID, sessionID)
	s.mu.Unlock()

	sess.AppendExchange(userTurn, agentTurn)
	return nil
}

// WithLock serializes fn against all other WithLock calls for the same
// session key. Calls for different keys proceed independently.
func (s *InMemoryStore) WithLock(userID, sessionID string, fn func() error) error {
	key := sessionKey(userID, sessionID)

	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sessionLock{}
		s.locks[key] = lock
	}
	lock.refs++
	s.mu.Unlock()

	lock.mu.Lock()
	err := fn()
	lock.mu.Unlock()

	s.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(s.locks, key)
	}
	s.mu.Unlock()

	return err
}

// Len returns the number of live sessions.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.sessions)
}

// getOrCreateLocked allocates and stores a new session when absent; caller
// must hold s.mu.
func (s *InMemoryStore) getOrCreateLocked(userID, sessionID string) *core.Session {
	key := sessionKey(userID, sessionID)
	if sess, ok := s.sessions[key]; ok {
		return sess
	}
	sess := core.NewSession(userID, sessionID)
	s.sessions[key] = sess
	return sess
}

// sweepLocked drops sessions past their TTL; caller must hold s.mu. Lock
// entries are left alone: they are refcounted by WithLock and removing one
// here could let a second same-key caller in while the first still holds it.
func (s *InMemoryStore) sweepLocked() {
	if s.opts.TTL <= 0 {
		return
	}
	cutoff := s.opts.Clock().Add(-s.opts.TTL)
	for key, sess := range s.sessions {
		if sess.UpdatedAt().Before(cutoff) {
			delete(s.sessions, key)
		}
	}
}
