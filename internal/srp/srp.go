package srp

import (
	"fmt"
	"math/big"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/cryptox"
)

// EphemeralSize is the byte size of the secret ephemerals a and b (256 bits).
const EphemeralSize = 32

// RandomEphemeral returns a fresh 256-bit secret ephemeral value.
func RandomEphemeral() *big.Int {
	return new(big.Int).SetBytes(common.GenerateRandByteArray(EphemeralSize))
}

// ComputeX derives the private key x = H(salt || H(username ":" password)).
func ComputeX(salt []byte, username, password string) *big.Int {
	inner := cryptox.HashSHA256([]byte(username), []byte(":"), []byte(password))
	return new(big.Int).SetBytes(cryptox.HashSHA256(salt, inner))
}

// ComputeVerifier computes the password verifier v = g^x mod N.
func ComputeVerifier(x *big.Int) *big.Int {
	return new(big.Int).Exp(G, x, N)
}

// ComputeA computes the client public ephemeral A = g^a mod N.
func ComputeA(a *big.Int) *big.Int {
	return new(big.Int).Exp(G, a, N)
}

// ComputeB computes the server public ephemeral B = (k*v + g^b) mod N.
func ComputeB(b, v *big.Int) *big.Int {
	kv := new(big.Int).Mul(k, v)
	kv.Mod(kv, N)

	gb := new(big.Int).Exp(G, b, N)

	B := new(big.Int).Add(kv, gb)
	return B.Mod(B, N)
}

// ComputeU derives the scrambling parameter u = H(A || B). A zero u defeats
// the protocol, so it is rejected.
func ComputeU(A, B *big.Int) (*big.Int, error) {
	u := new(big.Int).SetBytes(cryptox.HashSHA256(A.Bytes(), B.Bytes()))
	if u.Sign() == 0 {
		return nil, fmt.Errorf("%w: u == 0", common.ErrAuthenticationFailed)
	}
	return u, nil
}

// CheckPublicEphemeral rejects public values congruent to zero mod N, which
// would force the shared secret to zero.
func CheckPublicEphemeral(v *big.Int) error {
	if new(big.Int).Mod(v, N).Sign() == 0 {
		return fmt.Errorf("%w: public ephemeral is 0 mod N", common.ErrAuthenticationFailed)
	}
	return nil
}

// ClientSecret computes the client-side shared secret
// S = (B - k*g^x)^(a + u*x) mod N.
func ClientSecret(B, x, a, u *big.Int) *big.Int {
	gx := new(big.Int).Exp(G, x, N)

	kgx := new(big.Int).Mul(k, gx)
	kgx.Mod(kgx, N)

	base := new(big.Int).Sub(B, kgx)
	base.Mod(base, N)

	exponent := new(big.Int).Mul(u, x)
	exponent.Add(exponent, a)

	return new(big.Int).Exp(base, exponent, N)
}

// ServerSecret computes the server-side shared secret S = (A * v^u)^b mod N.
func ServerSecret(A, v, u, b *big.Int) *big.Int {
	vu := new(big.Int).Exp(v, u, N)

	avu := new(big.Int).Mul(A, vu)
	avu.Mod(avu, N)

	return new(big.Int).Exp(avu, b, N)
}

// ComputeSessionHash derives the shared key K = H(S).
func ComputeSessionHash(S *big.Int) []byte {
	return cryptox.HashSHA256(S.Bytes())
}

// ComputeM computes the client proof
// M = H((H(N) XOR H(g)) || H(username) || salt || A || B || K).
func ComputeM(username string, salt []byte, A, B *big.Int, K []byte) []byte {
	hashN := cryptox.HashSHA256(N.Bytes())
	hashG := cryptox.HashSHA256(G.Bytes())

	xored := make([]byte, len(hashN))
	for i := range hashN {
		xored[i] = hashN[i] ^ hashG[i]
	}

	hashUser := cryptox.HashSHA256([]byte(username))

	return cryptox.HashSHA256(xored, hashUser, salt, A.Bytes(), B.Bytes(), K)
}

// ComputeHAMK computes the server proof H_AMK = H(A || M || K).
func ComputeHAMK(A *big.Int, M, K []byte) []byte {
	return cryptox.HashSHA256(A.Bytes(), M, K)
}

// NewCredentials generates a fresh random salt and the matching verifier for
// a registration. The verifier is returned in big-endian wire form.
func NewCredentials(username, password string) (salt, verifier []byte) {
	salt = common.GenerateRandByteArray(common.SaltSize)
	x := ComputeX(salt, username, password)
	return salt, ComputeVerifier(x).Bytes()
}
