package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessions_PutGet(t *testing.T) {
	sessions := NewSessions(time.Minute)
	sessions.Put(&Session{UserID: "id-1", Username: "alice"})

	sess, err := sessions.Get("id-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.Username)
	assert.False(t, sess.CreatedAt.IsZero())
}

func TestSessions_GetUnknown(t *testing.T) {
	sessions := NewSessions(time.Minute)
	_, err := sessions.Get("missing")
	assert.ErrorIs(t, err, common.ErrInvalidSession)
}

func TestSessions_ExpiredEntryIsAbsent(t *testing.T) {
	sessions := NewSessions(10 * time.Millisecond)
	sessions.Put(&Session{UserID: "id-1"})

	time.Sleep(20 * time.Millisecond)

	_, err := sessions.Get("id-1")
	assert.ErrorIs(t, err, common.ErrInvalidSession)
	assert.Equal(t, 0, sessions.Count())
}

func TestSessions_RemoveIsIdempotent(t *testing.T) {
	sessions := NewSessions(time.Minute)
	sessions.Put(&Session{UserID: "id-1"})

	sessions.Remove("id-1")
	sessions.Remove("id-1")
	sessions.Remove("never-existed")

	assert.Equal(t, 0, sessions.Count())
}

func TestSessions_RemoveExpiredKeepsLiveEntries(t *testing.T) {
	sessions := NewSessions(50 * time.Millisecond)
	sessions.Put(&Session{UserID: "old"})

	time.Sleep(60 * time.Millisecond)
	sessions.Put(&Session{UserID: "fresh"})

	sessions.removeExpired()

	assert.Equal(t, 1, sessions.Count())
	_, err := sessions.Get("fresh")
	assert.NoError(t, err)
}

func TestSessions_ZeroTTLFallsBackToDefault(t *testing.T) {
	sessions := NewSessions(0)
	assert.Equal(t, DefaultSessionTTL, sessions.ttl)
}
