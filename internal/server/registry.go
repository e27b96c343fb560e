package server

import (
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

// Recipient is one registry row copied out under lock for lock-free fan-out.
type Recipient struct {
	UserID     string
	Username   string
	Conn       *Conn
	SessionKey []byte
}

type registryEntry struct {
	conn       *Conn
	username   string
	sessionKey []byte
}

// Registry is the table of authenticated connections, indexed by user_id
// and by username. Both keys are unique; a single mutex guards both maps so
// every check-and-insert is atomic.
type Registry struct {
	mu       sync.Mutex
	byID     map[string]*registryEntry
	idByName map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]*registryEntry),
		idByName: make(map[string]string),
	}
}

// Add inserts an authenticated connection. A username that is already
// active fails with common.ErrDuplicateLogin regardless of interleaving.
func (r *Registry) Add(userID, username string, conn *Conn, sessionKey []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.idByName[username]; ok {
		return common.ErrDuplicateLogin
	}
	if _, ok := r.byID[userID]; ok {
		return common.ErrDuplicateLogin
	}

	r.byID[userID] = &registryEntry{conn: conn, username: username, sessionKey: sessionKey}
	r.idByName[username] = userID
	return nil
}

// Remove closes the connection and evicts both indices atomically. It
// returns the username and whether the id was present.
func (r *Registry) Remove(userID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byID[userID]
	if !ok {
		return "", false
	}

	entry.conn.Close()
	delete(r.byID, userID)
	delete(r.idByName, entry.username)
	return entry.username, true
}

// Snapshot returns a copy of all rows for fan-out outside the lock.
func (r *Registry) Snapshot() []Recipient {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Recipient, 0, len(r.byID))
	for id, entry := range r.byID {
		out = append(out, Recipient{
			UserID:     id,
			Username:   entry.username,
			Conn:       entry.conn,
			SessionKey: entry.sessionKey,
		})
	}
	return out
}

// ActiveUsers lists the logged-in users for the INIT payload.
func (r *Registry) ActiveUsers() []protocol.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]protocol.User, 0, len(r.byID))
	for id, entry := range r.byID {
		out = append(out, protocol.User{Username: entry.username, UserID: id})
	}
	return out
}

// Count reports the number of active connections.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

// CloseAll closes every registered connection. Used on shutdown; handlers
// observe the closed sockets and evict their own rows.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.byID {
		entry.conn.Close()
	}
}
