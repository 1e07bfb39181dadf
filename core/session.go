package core

import (
	"sync"
	"time"
)

// Session is the per-(user, session) conversational container: an ordered,
// append-only turn history plus routing metadata. It is safe for concurrent
// access.
//
// Contract:
//   - History is never reordered or truncated; windowing for model context is
//     the caller's concern (see Window)
//   - AppendExchange commits a user/agent turn pair atomically and records
//     the responding agent as LastAgentID
//   - History returns a defensive copy; Clone deep-copies for safe divergence
type Session struct {
	UserID      string    `json:"user_id"`
	SessionID   string    `json:"session_id"`
	Turns       []Turn    `json:"turns"`
	LastAgentID string    `json:"last_agent_id,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
	mu          sync.RWMutex
}

// NewSession creates an empty session for the given user/session pair.
func NewSession(userID, sessionID string) *Session {
	now := time.Now().UTC()
	return &Session{UserID: userID, SessionID: sessionID, Turns: []Turn{}, Created: now, Updated: now}
}

// AppendExchange atomically appends a completed user/agent turn pair and
// updates LastAgentID from the agent turn.
func (s *Session) AppendExchange(userTurn, agentTurn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Turns = append(s.Turns, userTurn, agentTurn)
	s.LastAgentID = agentTurn.AgentID
	s.Updated = time.Now().UTC()
}

// History returns a defensive copy of the full turn history.
func (s *Session) History() []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]Turn, len(s.Turns))
	copy(turns, s.Turns)
	return turns
}

// LastAgent returns the id of the agent that handled the most recent
// completed exchange, if any.
func (s *Session) LastAgent() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastAgentID, s.LastAgentID != ""
}

// Len returns the number of turns in the history.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Turns)
}

// UpdatedAt returns the time of the last mutation.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Updated
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		UserID:      s.UserID,
		SessionID:   s.SessionID,
		Turns:       make([]Turn, len(s.Turns)),
		LastAgentID: s.LastAgentID,
		Created:     s.Created,
		Updated:     s.Updated,
	}
	copy(clone.Turns, s.Turns)
	return clone
}

// SessionStore persists sessions keyed by (user id, session id).
//
// Get creates the session lazily on first access and returns a snapshot
// clone. AppendExchange commits a completed exchange against live state.
// WithLock serializes the given function against all other WithLock calls for
// the same key; calls for different keys proceed independently.
type SessionStore interface {
	Get(userID, sessionID string) (*Session, error)
	AppendExchange(userID, sessionID string, userTurn, agentTurn Turn) error
	WithLock(userID, sessionID string, fn func() error) error
}
