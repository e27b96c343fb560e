// Package client implements the chat client: the SRP handshake over a TCP
// connection, AEAD encryption of outgoing lines, and dispatch of incoming
// frames to the terminal UI.
package client

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
	"github.com/dmitrijs2005/gophchat/internal/srp"
)

// Handler receives decoded server frames. Methods are called from the
// receive goroutine, one at a time.
type Handler interface {
	OnInit(history []protocol.ChatMessage, users []protocol.User)
	OnBroadcast(username, text string, ts time.Time)
	OnUserJoined(username string)
	OnUserLeft(username string)
	OnServerError(text string)
}

// Client is one authenticated connection to the chat server.
type Client struct {
	conn     net.Conn
	logger   logging.Logger
	username string
	userID   string
	key      []byte
}

// Dial connects to the server without authenticating.
func Dial(addr string, logger logging.Logger) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn, logger: logger.With("module", "client")}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Username returns the authenticated login name, empty before Authenticate.
func (c *Client) Username() string { return c.username }

// Register submits fresh SRP credentials for a new account. The password
// itself never leaves this process.
func (c *Client) Register(username, password string) error {
	salt, verifier := srp.NewCredentials(username, password)

	err := protocol.WritePacket(c.conn, &protocol.SRPRegister{
		Username:    username,
		SaltB64:     cryptox.BytesToBase64(salt),
		VerifierB64: cryptox.BytesToBase64(verifier),
	})
	if err != nil {
		return err
	}

	typ, payload, err := protocol.ReadPacket(c.conn)
	if err != nil {
		return err
	}

	switch typ {
	case protocol.TypeSRPRegisterAck:
		return nil
	case protocol.TypeError:
		var msg protocol.Error
		if err := msg.DecodePayload(payload); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", common.ErrUserAlreadyExists, msg.Text)
	default:
		return fmt.Errorf("%w: %s during registration", common.ErrInvalidState, typ)
	}
}

// Authenticate runs the SRP handshake. An unknown username returns
// common.ErrUserNotFound and leaves the connection open, so the caller may
// Register and retry on the same socket. On success the session key is
// derived and the server's INIT frame is left for Run to consume.
func (c *Client) Authenticate(username, password string) error {
	engine := srp.NewClient(username, password)

	A, err := engine.GenerateA()
	if err != nil {
		return err
	}

	err = protocol.WritePacket(c.conn, &protocol.SRPInit{
		Username: username,
		AB64:     cryptox.BytesToBase64(A),
	})
	if err != nil {
		return err
	}

	typ, payload, err := protocol.ReadPacket(c.conn)
	if err != nil {
		return err
	}

	switch typ {
	case protocol.TypeSRPUserNotFound:
		return common.ErrUserNotFound
	case protocol.TypeSRPChallenge:
	case protocol.TypeError:
		var msg protocol.Error
		if err := msg.DecodePayload(payload); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", common.ErrAuthenticationFailed, msg.Text)
	default:
		return fmt.Errorf("%w: %s during handshake", common.ErrInvalidState, typ)
	}

	var challenge protocol.SRPChallenge
	if err := challenge.DecodePayload(payload); err != nil {
		return err
	}

	B, err := cryptox.Base64ToBytes(challenge.BB64)
	if err != nil {
		return fmt.Errorf("bad challenge encoding: %w", err)
	}
	salt, err := cryptox.Base64ToBytes(challenge.SaltB64)
	if err != nil {
		return fmt.Errorf("bad challenge encoding: %w", err)
	}
	roomSalt, err := cryptox.Base64ToBytes(challenge.RoomSaltB64)
	if err != nil {
		return fmt.Errorf("bad challenge encoding: %w", err)
	}

	M, err := engine.ProcessChallenge(B, salt, roomSalt)
	if err != nil {
		return err
	}

	err = protocol.WritePacket(c.conn, &protocol.SRPResponse{
		UserID: challenge.UserID,
		MB64:   cryptox.BytesToBase64(M),
	})
	if err != nil {
		return err
	}

	typ, payload, err = protocol.ReadPacket(c.conn)
	if err != nil {
		return err
	}

	switch typ {
	case protocol.TypeSRPSuccess:
	case protocol.TypeError:
		var msg protocol.Error
		if err := msg.DecodePayload(payload); err != nil {
			return err
		}
		return fmt.Errorf("%w: %s", common.ErrAuthenticationFailed, msg.Text)
	default:
		return fmt.Errorf("%w: %s during handshake", common.ErrInvalidState, typ)
	}

	var success protocol.SRPSuccess
	if err := success.DecodePayload(payload); err != nil {
		return err
	}

	HAMK, err := cryptox.Base64ToBytes(success.HAMKB64)
	if err != nil {
		return fmt.Errorf("bad proof encoding: %w", err)
	}
	if err := engine.VerifyServer(HAMK); err != nil {
		return err
	}

	c.username = username
	c.userID = challenge.UserID
	c.key = engine.SessionKey()
	return nil
}

// SendMessage encrypts a chat line under the session key and sends it.
func (c *Client) SendMessage(text string) error {
	envelope, err := cryptox.Encrypt([]byte(text), c.key, nil)
	if err != nil {
		return err
	}
	return protocol.WritePacket(c.conn, &protocol.Text{
		CiphertextB64: cryptox.BytesToBase64(envelope),
	})
}

// Disconnect tells the server this client is leaving.
func (c *Client) Disconnect() error {
	return protocol.WritePacket(c.conn, &protocol.Disconnect{})
}

// Run reads frames and dispatches them to the handler until the connection
// ends or ctx is canceled. A nil error means the server closed normally.
func (c *Client) Run(ctx context.Context, handler Handler) error {
	go func() {
		<-ctx.Done()
		c.conn.Close()
	}()

	for {
		typ, payload, err := protocol.ReadPacket(c.conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if err := c.dispatch(ctx, typ, payload, handler); err != nil {
			return err
		}
	}
}

func (c *Client) dispatch(ctx context.Context, typ protocol.MsgType, payload []byte, handler Handler) error {
	switch typ {
	case protocol.TypeInit:
		var init protocol.Init
		if err := init.DecodePayload(payload); err != nil {
			return err
		}
		handler.OnInit(init.Messages, init.Users)

	case protocol.TypeBroadcast:
		var b protocol.Broadcast
		if err := b.DecodePayload(payload); err != nil {
			return err
		}
		envelope, err := cryptox.Base64ToBytes(b.CiphertextB64)
		if err != nil {
			return fmt.Errorf("bad broadcast encoding: %w", err)
		}
		plaintext, err := cryptox.Decrypt(envelope, c.key, nil)
		if err != nil {
			return err
		}
		handler.OnBroadcast(b.Username, string(plaintext), time.UnixMilli(b.TimestampMS))

	case protocol.TypeUserJoined:
		var joined protocol.UserJoined
		if err := joined.DecodePayload(payload); err != nil {
			return err
		}
		handler.OnUserJoined(joined.Username)

	case protocol.TypeUserLeft:
		var left protocol.UserLeft
		if err := left.DecodePayload(payload); err != nil {
			return err
		}
		handler.OnUserLeft(left.Username)

	case protocol.TypeError:
		var msg protocol.Error
		if err := msg.DecodePayload(payload); err != nil {
			return err
		}
		handler.OnServerError(msg.Text)

	default:
		c.logger.Warn(ctx, "unexpected frame", "type", typ)
	}

	return nil
}
