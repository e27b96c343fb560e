package auth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/srp"
)

// Challenge is the server's answer to SRP_INIT.
type Challenge struct {
	UserID   string
	Username string
	B        []byte
	Salt     []byte
	RoomSalt []byte
}

// Success is the server's answer to a valid SRP_RESPONSE: the proof the
// client uses to authenticate the server, plus the locally derived AEAD key.
type Success struct {
	HAMK       []byte
	SessionKey []byte
}

// Authenticator drives the server half of the SRP-6a handshake over a
// credential store and the transient session table. One instance serves all
// connections concurrently.
type Authenticator struct {
	store    Store
	sessions *Sessions
	roomSalt []byte
	logger   logging.Logger
}

// NewAuthenticator creates an authenticator with a fresh room salt. The salt
// is public: it feeds session-key derivation on both sides.
func NewAuthenticator(store Store, sessions *Sessions, logger logging.Logger) *Authenticator {
	return &Authenticator{
		store:    store,
		sessions: sessions,
		roomSalt: common.GenerateRandByteArray(common.SaltSize),
		logger:   logger.With("module", "auth"),
	}
}

// RoomSalt returns the server-wide salt generated at construction.
func (a *Authenticator) RoomSalt() []byte { return a.roomSalt }

// Register stores a new credential. Duplicate usernames fail with
// common.ErrUserAlreadyExists; the connection may then try to log in instead.
func (a *Authenticator) Register(ctx context.Context, username string, salt, verifier []byte) error {
	if username == "" || len(salt) == 0 || len(verifier) == 0 {
		return fmt.Errorf("%w: empty registration field", common.ErrAuthenticationFailed)
	}
	// the credential file is line-oriented with ':' delimiters, so these
	// characters would produce a record that cannot be read back
	if strings.ContainsAny(username, ":\n\r") {
		return fmt.Errorf("%w: invalid character in username", common.ErrAuthenticationFailed)
	}

	err := a.store.Put(ctx, &Credential{Username: username, Salt: salt, Verifier: verifier})
	if err != nil {
		return err
	}

	a.logger.Info(ctx, "user registered", "user", username)
	return nil
}

// InitAuthentication answers SRP_INIT: it looks up the credential, generates
// the server ephemeral, and parks a handshake session under a fresh user_id.
// An unknown username returns common.ErrUserNotFound so the caller can offer
// registration; A ≡ 0 (mod N) is rejected outright.
func (a *Authenticator) InitAuthentication(ctx context.Context, username string, ABytes []byte) (*Challenge, error) {
	A := new(big.Int).SetBytes(ABytes)
	if err := srp.CheckPublicEphemeral(A); err != nil {
		return nil, err
	}

	cred, err := a.store.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	b := srp.RandomEphemeral()
	v := new(big.Int).SetBytes(cred.Verifier)
	B := srp.ComputeB(b, v)

	sess := &Session{
		UserID:   uuid.NewString(),
		Username: cred.Username,
		A:        ABytes,
		B:        B.Bytes(),
		Secret:   b.Bytes(),
		Salt:     cred.Salt,
		Verifier: cred.Verifier,
	}
	a.sessions.Put(sess)

	return &Challenge{
		UserID:   sess.UserID,
		Username: cred.Username,
		B:        sess.B,
		Salt:     cred.Salt,
		RoomSalt: a.roomSalt,
	}, nil
}

// VerifyAuthentication answers SRP_RESPONSE: it recomputes the shared secret
// for the parked session and compares the client proof in constant time. Any
// failure destroys the session; the caller learns only that authentication
// failed.
func (a *Authenticator) VerifyAuthentication(ctx context.Context, userID string, M []byte) (*Success, error) {
	sess, err := a.sessions.Get(userID)
	if err != nil {
		return nil, err
	}

	A := new(big.Int).SetBytes(sess.A)
	B := new(big.Int).SetBytes(sess.B)
	b := new(big.Int).SetBytes(sess.Secret)
	v := new(big.Int).SetBytes(sess.Verifier)

	u, err := srp.ComputeU(A, B)
	if err != nil {
		a.sessions.Remove(userID)
		return nil, err
	}

	S := srp.ServerSecret(A, v, u, b)
	K := srp.ComputeSessionHash(S)

	expectedM := srp.ComputeM(sess.Username, sess.Salt, A, B, K)
	if !cryptox.ConstantTimeEqual(expectedM, M) {
		a.sessions.Remove(userID)
		a.logger.Warn(ctx, "client proof rejected", "user", sess.Username)
		return nil, fmt.Errorf("%w: client proof mismatch", common.ErrAuthenticationFailed)
	}

	sessionKey, err := cryptox.DeriveSessionKey(K, a.roomSalt)
	if err != nil {
		a.sessions.Remove(userID)
		return nil, err
	}

	sess.K = K
	sess.Authenticated = true

	return &Success{
		HAMK:       srp.ComputeHAMK(A, M, K),
		SessionKey: sessionKey,
	}, nil
}

// ClearSession drops a handshake session, e.g. when the connection ends.
func (a *Authenticator) ClearSession(userID string) {
	a.sessions.Remove(userID)
}
