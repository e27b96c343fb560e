package srp

import (
	"math/big"
	"testing"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serverRound runs the server half of a handshake against raw client values,
// mirroring what the authenticator does.
func serverRound(t *testing.T, username string, salt, verifier, ABytes []byte) (BBytes []byte, K []byte, expectedM []byte) {
	t.Helper()

	A := new(big.Int).SetBytes(ABytes)
	require.NoError(t, CheckPublicEphemeral(A))

	v := new(big.Int).SetBytes(verifier)
	b := RandomEphemeral()
	B := ComputeB(b, v)

	u, err := ComputeU(A, B)
	require.NoError(t, err)

	S := ServerSecret(A, v, u, b)
	K = ComputeSessionHash(S)
	return B.Bytes(), K, ComputeM(username, salt, A, B, K)
}

func TestHandshake_Roundtrip(t *testing.T) {
	const username, password = "alice", "sesame"
	salt, verifier := NewCredentials(username, password)
	roomSalt := common.GenerateRandByteArray(common.SaltSize)

	client := NewClient(username, password)
	ABytes, err := client.GenerateA()
	require.NoError(t, err)

	BBytes, serverK, expectedM := serverRound(t, username, salt, verifier, ABytes)

	M, err := client.ProcessChallenge(BBytes, salt, roomSalt)
	require.NoError(t, err)

	// both sides agree on K, hence on M
	assert.Equal(t, expectedM, M)
	assert.Equal(t, serverK, client.K)

	// and the client accepts the server proof computed over the same K
	HAMK := ComputeHAMK(new(big.Int).SetBytes(ABytes), M, serverK)
	require.NoError(t, client.VerifyServer(HAMK))
	assert.True(t, client.Authenticated())
	assert.Len(t, client.SessionKey(), 32)
}

func TestHandshake_WrongPasswordRejected(t *testing.T) {
	const username = "bob"
	salt, verifier := NewCredentials(username, "correct horse")

	client := NewClient(username, "battery staple")
	ABytes, err := client.GenerateA()
	require.NoError(t, err)

	BBytes, serverK, expectedM := serverRound(t, username, salt, verifier, ABytes)

	// the client's S is computed over a different x, so neither K nor M match
	M, err := client.ProcessChallenge(BBytes, salt, salt)
	require.NoError(t, err)
	assert.NotEqual(t, expectedM, M)
	assert.NotEqual(t, serverK, client.K)
}

func TestHandshake_FaultyServerKeyDetected(t *testing.T) {
	const username, password = "carol", "pw"
	salt, verifier := NewCredentials(username, password)

	client := NewClient(username, password)
	ABytes, err := client.GenerateA()
	require.NoError(t, err)

	BBytes, serverK, _ := serverRound(t, username, salt, verifier, ABytes)
	M, err := client.ProcessChallenge(BBytes, salt, salt)
	require.NoError(t, err)

	// a server that derived a different K produces a proof the client rejects
	badK := append([]byte{}, serverK...)
	badK[0] ^= 0x01
	HAMK := ComputeHAMK(new(big.Int).SetBytes(ABytes), M, badK)

	err = client.VerifyServer(HAMK)
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
	assert.Equal(t, StateFailed, client.State())
	assert.False(t, client.Authenticated())
}

func TestCheckPublicEphemeral_RejectsZero(t *testing.T) {
	assert.ErrorIs(t, CheckPublicEphemeral(big.NewInt(0)), common.ErrAuthenticationFailed)

	// multiples of N are congruent to zero
	assert.ErrorIs(t, CheckPublicEphemeral(new(big.Int).Set(N)), common.ErrAuthenticationFailed)
	assert.ErrorIs(t, CheckPublicEphemeral(new(big.Int).Lsh(N, 1)), common.ErrAuthenticationFailed)

	assert.NoError(t, CheckPublicEphemeral(big.NewInt(1)))
}

func TestClient_RejectsZeroB(t *testing.T) {
	client := NewClient("dave", "pw")
	_, err := client.GenerateA()
	require.NoError(t, err)

	_, err = client.ProcessChallenge(big.NewInt(0).Bytes(), []byte("salt"), []byte("room"))
	assert.ErrorIs(t, err, common.ErrAuthenticationFailed)
	assert.Equal(t, StateFailed, client.State())
}

func TestClient_StateMachineOrdering(t *testing.T) {
	client := NewClient("erin", "pw")

	// challenge before A
	_, err := client.ProcessChallenge([]byte{1}, []byte("salt"), []byte("room"))
	assert.ErrorIs(t, err, common.ErrInvalidState)

	// proof before challenge
	err = client.VerifyServer([]byte("proof"))
	assert.ErrorIs(t, err, common.ErrInvalidState)

	_, err = client.GenerateA()
	require.NoError(t, err)

	// A twice
	_, err = client.GenerateA()
	assert.ErrorIs(t, err, common.ErrInvalidState)
}

func TestComputeX_MatchesDefinition(t *testing.T) {
	// x = H(salt || H(username ":" password)); sanity-check determinism and
	// sensitivity to each input
	salt := []byte("0123456789abcdef")
	x1 := ComputeX(salt, "alice", "pw")
	x2 := ComputeX(salt, "alice", "pw")
	assert.Equal(t, 0, x1.Cmp(x2))

	assert.NotEqual(t, 0, x1.Cmp(ComputeX(salt, "alice", "pw2")))
	assert.NotEqual(t, 0, x1.Cmp(ComputeX(salt, "alicia", "pw")))
	assert.NotEqual(t, 0, x1.Cmp(ComputeX([]byte("other salt value"), "alice", "pw")))
}

func TestNewCredentials_VerifierMatchesX(t *testing.T) {
	salt, verifier := NewCredentials("frank", "secret")
	assert.Len(t, salt, common.SaltSize)

	x := ComputeX(salt, "frank", "secret")
	want := ComputeVerifier(x)
	assert.Equal(t, want.Bytes(), verifier)
}

func TestRandomEphemeral_Size(t *testing.T) {
	a := RandomEphemeral()
	assert.LessOrEqual(t, a.BitLen(), EphemeralSize*8)
	assert.NotEqual(t, 0, a.Sign())
}
