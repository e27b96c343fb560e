package common

import "crypto/rand"

// SessionKeySize is the AEAD key size shared by both sides after a
// successful handshake.
const SessionKeySize = 32

// SaltSize is the size of user salts and of the room salt.
const SaltSize = 16

// GenerateRandByteArray returns size cryptographically secure random bytes.
// A failing system RNG leaves no safe way to continue, so it panics.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return b
}
