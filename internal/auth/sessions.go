package auth

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// Session is the transient server-side state of one in-flight handshake,
// keyed by the issued user_id. It lives from SRP_INIT until the handshake
// succeeds, fails, expires, or the connection drops.
type Session struct {
	UserID   string
	Username string

	A        []byte // client public ephemeral, wire form
	B        []byte // server public ephemeral, wire form
	Secret   []byte // server secret ephemeral b
	Salt     []byte
	Verifier []byte

	K             []byte // SRP shared key, set on verify
	Authenticated bool

	CreatedAt time.Time
}

// Sessions is the mutex-protected handshake-session table. Entries older
// than the TTL are removed by the sweeper; each is also removed explicitly
// when its handshake resolves.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

// DefaultSessionTTL bounds how long an unfinished handshake may linger.
const DefaultSessionTTL = time.Hour

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{sessions: make(map[string]*Session), ttl: ttl}
}

func (s *Sessions) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.CreatedAt = time.Now()
	s.sessions[sess.UserID] = sess
}

// Get returns the live session for userID or common.ErrInvalidSession.
// An expired entry is treated as absent.
func (s *Sessions) Get(userID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil, common.ErrInvalidSession
	}
	if time.Since(sess.CreatedAt) > s.ttl {
		delete(s.sessions, userID)
		return nil, common.ErrInvalidSession
	}
	return sess, nil
}

// Remove drops a session. Removing an absent id is a no-op.
func (s *Sessions) Remove(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// Count reports the number of stored sessions, expired ones included.
func (s *Sessions) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions every interval until ctx is canceled.
// Run it in its own goroutine.
func (s *Sessions) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sessions) removeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
