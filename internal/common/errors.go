// Package common defines shared constants and sentinel errors used across
// client and server layers of GophChat. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Credential store errors.
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")

	// Handshake errors.
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrDuplicateLogin       = errors.New("user already logged in")
	ErrInvalidSession       = errors.New("invalid session")
	ErrInvalidState         = errors.New("invalid handshake state")

	// Frame codec errors.
	ErrFrameTooLarge      = errors.New("frame exceeds size limit")
	ErrUnknownMessageType = errors.New("unknown message type")
	ErrBufferUnderflow    = errors.New("buffer underflow")

	// AEAD errors. Decrypt failures are reported opaquely; the cause
	// (tag mismatch, truncation) is never distinguished for callers.
	ErrDecryptFailed = errors.New("decryption failed")
)
