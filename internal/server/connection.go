// Package server implements the chat server: TCP listener, per-connection
// SRP handshake driver, the active-user registry, and encrypted fan-out of
// chat messages.
package server

import (
	"net"
	"sync"

	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

// Conn wraps a network connection with a write mutex so broadcast workers
// and the connection's own handler never interleave frames. Close is
// idempotent: the registry and the handler may both close.
type Conn struct {
	netConn   net.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func NewConn(c net.Conn) *Conn {
	return &Conn{netConn: c}
}

// Send writes one frame. Safe for concurrent use.
func (c *Conn) Send(m protocol.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.WritePacket(c.netConn, m)
}

// Read blocks until the next frame arrives. Only the connection's own
// handler goroutine reads.
func (c *Conn) Read() (protocol.MsgType, []byte, error) {
	return protocol.ReadPacket(c.netConn)
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.netConn.Close()
	})
	return c.closeErr
}

func (c *Conn) RemoteAddr() string {
	return c.netConn.RemoteAddr().String()
}
