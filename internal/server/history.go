package server

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

// DefaultHistoryLimit bounds the message backlog sent to joining users.
const DefaultHistoryLimit = 100

// History is the bounded FIFO backlog of plaintext chat lines used for the
// INIT snapshot. Oldest entries are evicted at capacity.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []protocol.ChatMessage
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

func (h *History) Append(username, text string, ts time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, protocol.ChatMessage{
		Username:    username,
		Text:        text,
		TimestampMS: ts.UnixMilli(),
	})
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Snapshot copies the backlog under lock, oldest first.
func (h *History) Snapshot() []protocol.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]protocol.ChatMessage, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports the number of retained messages.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
