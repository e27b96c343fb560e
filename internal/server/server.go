package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/auth"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

// Server accepts TCP connections and runs one handler goroutine per
// connection: SRP handshake first, then the encrypted message loop.
type Server struct {
	addr          string
	authenticator *auth.Authenticator
	registry      *Registry
	history       *History
	logger        logging.Logger
}

func NewServer(addr string, authenticator *auth.Authenticator, historyLimit int, logger logging.Logger) *Server {
	return &Server{
		addr:          addr,
		authenticator: authenticator,
		registry:      NewRegistry(),
		history:       NewHistory(historyLimit),
		logger:        logger.With("module", "server"),
	}
}

// Addr returns the configured bind address.
func (s *Server) Addr() string { return s.addr }

// Run binds the listener and accepts until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts on an existing listener until ctx is canceled. Cancellation
// closes the listener and every active connection; handler goroutines
// observe the closed sockets and exit.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info(ctx, "listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
		s.registry.CloseAll()
	}()

	for {
		netConn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.logger.Warn(ctx, "accept failed", "error", err)
			continue
		}
		go s.handleConn(ctx, NewConn(netConn))
	}
}

// session is the result of a completed handshake for one connection.
type session struct {
	userID     string
	username   string
	sessionKey []byte
}

func (s *Server) handleConn(ctx context.Context, conn *Conn) {
	defer conn.Close()

	s.logger.Info(ctx, "client connected", "remote", conn.RemoteAddr())

	sess, err := s.handshake(ctx, conn)
	if err != nil {
		s.logger.Warn(ctx, "handshake failed", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer s.authenticator.ClearSession(sess.userID)

	if err := s.registry.Add(sess.userID, sess.username, conn, sess.sessionKey); err != nil {
		s.logger.Warn(ctx, "login rejected", "user", sess.username, "error", err)
		conn.Send(&protocol.Error{Text: "user already logged in"})
		return
	}

	s.logger.Info(ctx, "user joined", "user", sess.username, "user_id", sess.userID)

	if err := s.sendInit(conn); err != nil {
		s.registry.Remove(sess.userID)
		return
	}

	s.broadcastExcept(ctx, sess.userID, &protocol.UserJoined{
		Username: sess.username,
		UserID:   sess.userID,
	})

	s.messageLoop(ctx, conn, sess)

	s.registry.Remove(sess.userID)
	s.broadcastExcept(ctx, sess.userID, &protocol.UserLeft{Username: sess.username})
	s.logger.Info(ctx, "user left", "user", sess.username)
}

// handshake drives the pre-registry phase: registration frames and unknown
// usernames loop on the same socket, everything else either advances the
// handshake or fails it.
func (s *Server) handshake(ctx context.Context, conn *Conn) (*session, error) {
	var challenge *auth.Challenge

init:
	for {
		typ, payload, err := conn.Read()
		if err != nil {
			return nil, err
		}

		switch typ {
		case protocol.TypeSRPRegister:
			if err := s.handleRegister(ctx, conn, payload); err != nil {
				return nil, err
			}

		case protocol.TypeSRPInit:
			challenge, err = s.handleInit(ctx, conn, payload)
			if err != nil {
				return nil, err
			}
			if challenge != nil {
				break init
			}
			// unknown user, the client may register and retry

		default:
			return nil, fmt.Errorf("%w: %s before authentication", common.ErrInvalidState, typ)
		}
	}

	typ, payload, err := conn.Read()
	if err != nil {
		s.authenticator.ClearSession(challenge.UserID)
		return nil, err
	}
	if typ != protocol.TypeSRPResponse {
		s.authenticator.ClearSession(challenge.UserID)
		return nil, fmt.Errorf("%w: expected SRP_RESPONSE, got %s", common.ErrInvalidState, typ)
	}

	var resp protocol.SRPResponse
	if err := resp.DecodePayload(payload); err != nil {
		s.authenticator.ClearSession(challenge.UserID)
		return nil, err
	}
	if resp.UserID != challenge.UserID {
		s.authenticator.ClearSession(challenge.UserID)
		return nil, fmt.Errorf("%w: response for unknown handshake", common.ErrInvalidSession)
	}

	M, err := cryptox.Base64ToBytes(resp.MB64)
	if err != nil {
		s.authenticator.ClearSession(challenge.UserID)
		return nil, fmt.Errorf("bad proof encoding: %w", err)
	}

	success, err := s.authenticator.VerifyAuthentication(ctx, resp.UserID, M)
	if err != nil {
		conn.Send(&protocol.Error{Text: "authentication failed"})
		return nil, err
	}

	if err := conn.Send(&protocol.SRPSuccess{HAMKB64: cryptox.BytesToBase64(success.HAMK)}); err != nil {
		s.authenticator.ClearSession(resp.UserID)
		return nil, err
	}

	return &session{
		userID:     resp.UserID,
		username:   challenge.Username,
		sessionKey: success.SessionKey,
	}, nil
}

func (s *Server) handleRegister(ctx context.Context, conn *Conn, payload []byte) error {
	var reg protocol.SRPRegister
	if err := reg.DecodePayload(payload); err != nil {
		return err
	}

	salt, err := cryptox.Base64ToBytes(reg.SaltB64)
	if err != nil {
		return fmt.Errorf("bad salt encoding: %w", err)
	}
	verifier, err := cryptox.Base64ToBytes(reg.VerifierB64)
	if err != nil {
		return fmt.Errorf("bad verifier encoding: %w", err)
	}

	if err := s.authenticator.Register(ctx, reg.Username, salt, verifier); err != nil {
		if errors.Is(err, common.ErrUserAlreadyExists) {
			// not fatal, the client may log in instead
			return conn.Send(&protocol.Error{Text: "user already exists"})
		}
		return err
	}

	return conn.Send(&protocol.SRPRegisterAck{})
}

// handleInit answers SRP_INIT. A nil challenge with nil error means the
// username was unknown and SRP_USER_NOT_FOUND was sent.
func (s *Server) handleInit(ctx context.Context, conn *Conn, payload []byte) (*auth.Challenge, error) {
	var init protocol.SRPInit
	if err := init.DecodePayload(payload); err != nil {
		return nil, err
	}

	A, err := cryptox.Base64ToBytes(init.AB64)
	if err != nil {
		return nil, fmt.Errorf("bad ephemeral encoding: %w", err)
	}

	challenge, err := s.authenticator.InitAuthentication(ctx, init.Username, A)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			return nil, conn.Send(&protocol.SRPUserNotFound{})
		}
		conn.Send(&protocol.Error{Text: "authentication failed"})
		return nil, err
	}

	err = conn.Send(&protocol.SRPChallenge{
		UserID:      challenge.UserID,
		BB64:        cryptox.BytesToBase64(challenge.B),
		SaltB64:     cryptox.BytesToBase64(challenge.Salt),
		RoomSaltB64: cryptox.BytesToBase64(challenge.RoomSalt),
	})
	if err != nil {
		s.authenticator.ClearSession(challenge.UserID)
		return nil, err
	}

	return challenge, nil
}

func (s *Server) sendInit(conn *Conn) error {
	return conn.Send(&protocol.Init{
		Messages: s.history.Snapshot(),
		Users:    s.registry.ActiveUsers(),
	})
}

// messageLoop relays chat frames until the client disconnects or violates
// the envelope. Unknown frame types are logged and skipped.
func (s *Server) messageLoop(ctx context.Context, conn *Conn, sess *session) {
	for {
		typ, payload, err := conn.Read()
		if err != nil {
			return
		}

		switch typ {
		case protocol.TypeMessage:
			if err := s.handleMessage(ctx, sess, payload); err != nil {
				s.logger.Warn(ctx, "dropping connection", "user", sess.username, "error", err)
				conn.Send(&protocol.Error{Text: "message rejected"})
				return
			}

		case protocol.TypeDisconnect:
			return

		default:
			s.logger.Warn(ctx, "unexpected frame", "user", sess.username, "type", typ)
		}
	}
}

// MaxChatMessageSize bounds one decrypted chat line. The broadcast frame
// carries the base64 AEAD envelope plus a username and timestamp, so the
// plaintext must leave room under protocol.MaxPayloadSize after the
// roughly 4/3 base64 expansion.
const MaxChatMessageSize = 512 << 10

// handleMessage decrypts one chat line under the sender's key and fans it
// out re-encrypted under each recipient's key, sender included.
func (s *Server) handleMessage(ctx context.Context, sess *session, payload []byte) error {
	var msg protocol.Text
	if err := msg.DecodePayload(payload); err != nil {
		return err
	}

	envelope, err := cryptox.Base64ToBytes(msg.CiphertextB64)
	if err != nil {
		return fmt.Errorf("bad ciphertext encoding: %w", err)
	}

	plaintext, err := cryptox.Decrypt(envelope, sess.sessionKey, nil)
	if err != nil {
		return err
	}
	if len(plaintext) > MaxChatMessageSize {
		return fmt.Errorf("%w: chat message of %d bytes", common.ErrFrameTooLarge, len(plaintext))
	}

	now := time.Now()
	s.history.Append(sess.username, string(plaintext), now)

	for _, rcpt := range s.registry.Snapshot() {
		ciphertext, err := cryptox.Encrypt(plaintext, rcpt.SessionKey, nil)
		if err != nil {
			s.logger.Error(ctx, "encrypt for recipient failed", "user", rcpt.Username, "error", err)
			continue
		}

		err = rcpt.Conn.Send(&protocol.Broadcast{
			Username:      sess.username,
			CiphertextB64: cryptox.BytesToBase64(ciphertext),
			TimestampMS:   now.UnixMilli(),
		})
		if err != nil {
			// the recipient's own handler cleans up on its closed socket
			s.logger.Warn(ctx, "broadcast delivery failed", "user", rcpt.Username, "error", err)
		}
	}

	return nil
}

// broadcastExcept sends a frame to every active user but one.
func (s *Server) broadcastExcept(ctx context.Context, exceptUserID string, m protocol.Message) {
	for _, rcpt := range s.registry.Snapshot() {
		if rcpt.UserID == exceptUserID {
			continue
		}
		if err := rcpt.Conn.Send(m); err != nil {
			s.logger.Warn(ctx, "notification delivery failed", "user", rcpt.Username, "error", err)
		}
	}
}
