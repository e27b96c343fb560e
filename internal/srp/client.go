package srp

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
)

// State is the client handshake state.
type State int

const (
	StateInit State = iota
	StateAwaitChallenge
	StateAwaitSuccess
	StateAuthenticated
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateAwaitChallenge:
		return "AWAIT_CHALLENGE"
	case StateAwaitSuccess:
		return "AWAIT_SUCCESS"
	case StateAuthenticated:
		return "AUTHENTICATED"
	case StateFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

// Client drives the client half of the SRP-6a handshake. Instances cannot be
// reused after reaching a terminal state and are not safe for concurrent use.
type Client struct {
	username string
	password string

	state State

	a *big.Int // secret ephemeral
	A *big.Int // public ephemeral g^a mod N

	K          []byte // SRP shared key H(S)
	M          []byte // client proof
	sessionKey []byte // HKDF-derived AEAD key
}

// NewClient creates a handshake for the given identity.
func NewClient(username, password string) *Client {
	return &Client{username: username, password: password, state: StateInit}
}

// State reports the current handshake state.
func (c *Client) State() State { return c.state }

// Authenticated reports whether the server proof has been verified.
func (c *Client) Authenticated() bool { return c.state == StateAuthenticated }

// SessionKey returns the derived AEAD key, or nil before the challenge has
// been processed.
func (c *Client) SessionKey() []byte { return c.sessionKey }

// GenerateA picks the secret ephemeral a and returns A = g^a mod N in wire
// form. Valid only in the INIT state.
func (c *Client) GenerateA() ([]byte, error) {
	if c.state != StateInit {
		return nil, fmt.Errorf("%w: GenerateA in %s", common.ErrInvalidState, c.state)
	}

	c.a = RandomEphemeral()
	c.A = ComputeA(c.a)
	c.state = StateAwaitChallenge

	return c.A.Bytes(), nil
}

// ProcessChallenge consumes the server challenge, computes the shared secret
// and both keys, and returns the client proof M. The room salt feeds the
// session-key derivation. Fails on B ≡ 0 (mod N) and u == 0.
func (c *Client) ProcessChallenge(BBytes, salt, roomSalt []byte) ([]byte, error) {
	if c.state != StateAwaitChallenge {
		return nil, fmt.Errorf("%w: ProcessChallenge in %s", common.ErrInvalidState, c.state)
	}

	B := new(big.Int).SetBytes(BBytes)
	if err := CheckPublicEphemeral(B); err != nil {
		c.state = StateFailed
		return nil, err
	}

	u, err := ComputeU(c.A, B)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}

	x := ComputeX(salt, c.username, c.password)
	S := ClientSecret(B, x, c.a, u)
	c.K = ComputeSessionHash(S)
	c.M = ComputeM(c.username, salt, c.A, B, c.K)

	c.sessionKey, err = cryptox.DeriveSessionKey(c.K, roomSalt)
	if err != nil {
		c.state = StateFailed
		return nil, err
	}

	c.state = StateAwaitSuccess
	return c.M, nil
}

// VerifyServer checks the server proof H_AMK in constant time. On mismatch
// the handshake fails without revealing which byte differed.
func (c *Client) VerifyServer(HAMK []byte) error {
	if c.state != StateAwaitSuccess {
		return fmt.Errorf("%w: VerifyServer in %s", common.ErrInvalidState, c.state)
	}

	expected := ComputeHAMK(c.A, c.M, c.K)
	if !cryptox.ConstantTimeEqual(expected, HAMK) {
		c.state = StateFailed
		return fmt.Errorf("%w: server proof mismatch", common.ErrAuthenticationFailed)
	}

	c.state = StateAuthenticated
	return nil
}
