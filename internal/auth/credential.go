// Package auth implements the server side of authentication: SRP credential
// stores (file- and Postgres-backed), the transient handshake-session table,
// and the authenticator state machine driving init/verify/register.
package auth

import "context"

// Credential is one registered user: the salt and the password verifier
// v = g^x mod N. The password itself is never stored anywhere.
type Credential struct {
	Username string
	Salt     []byte
	Verifier []byte
}

// Store is a credential repository keyed by case-sensitive username.
type Store interface {
	// Get returns the credential for username or common.ErrUserNotFound.
	Get(ctx context.Context, username string) (*Credential, error)

	// Put persists a new credential. A duplicate username fails with
	// common.ErrUserAlreadyExists.
	Put(ctx context.Context, cred *Credential) error

	// Flush writes any buffered state to durable storage. Called on
	// server shutdown; backends with immediate writes may no-op.
	Flush() error
}
