// Package cryptox implements the symmetric crypto used by the chat:
// the AES-256-GCM message envelope, HKDF session-key derivation, and
// small byte-encoding helpers shared between client and server.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the AES-256 key size in bytes.
	KeySize = 32
	// IVSize is the GCM nonce size in bytes (96 bits, fresh random per message).
	IVSize = 12
	// TagSize is the GCM authentication tag size in bytes.
	TagSize = 16
)

// sessionKeyInfo is the HKDF context label for session-key derivation.
const sessionKeyInfo = "chat-v1"

// Encrypt seals plaintext under key with AES-256-GCM and returns the wire
// envelope IV || ciphertext || tag. A new random 12-byte IV is generated for
// each call. aad may be nil.
func Encrypt(plaintext, key, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	iv := common.GenerateRandByteArray(IVSize)

	// Seal appends ciphertext+tag after the IV, producing the envelope
	// in one allocation.
	return aesgcm.Seal(iv, iv, plaintext, aad), nil
}

// Decrypt opens an IV || ciphertext || tag envelope. The tag is verified
// before any plaintext is returned; every failure mode is reported as the
// same opaque common.ErrDecryptFailed.
func Decrypt(envelope, key, aad []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(envelope) < IVSize+TagSize {
		return nil, common.ErrDecryptFailed
	}

	iv, ciphertext := envelope[:IVSize], envelope[IVSize:]
	plaintext, err := aesgcm.Open(nil, iv, ciphertext, aad)
	if err != nil {
		return nil, common.ErrDecryptFailed
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// DeriveSessionKey derives the 32-byte AEAD session key from the SRP shared
// key K via HKDF-SHA256. Both sides call this with the same K and room salt,
// so no key material ever crosses the wire.
func DeriveSessionKey(srpKey, roomSalt []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, srpKey, roomSalt, []byte(sessionKeyInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf: %w", err)
	}
	return key, nil
}

// HashSHA256 returns SHA256(v1 || v2 || ... || vn).
func HashSHA256(chunks ...[]byte) []byte {
	h := sha256.New()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// ConstantTimeEqual compares two byte slices without short-circuiting on the
// first differing byte. Differing lengths compare unequal.
func ConstantTimeEqual(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// BytesToHex encodes bytes as lowercase hex.
func BytesToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// HexToBytes decodes a hex string. Leading zero bytes are preserved.
func HexToBytes(s string) ([]byte, error) {
	return hex.DecodeString(s)
}

// BytesToBase64 encodes bytes with the standard RFC 4648 alphabet, unwrapped.
func BytesToBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64ToBytes decodes standard base64.
func Base64ToBytes(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
