package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_AppendAndSnapshot(t *testing.T) {
	h := NewHistory(10)
	ts := time.UnixMilli(1700000000000)

	h.Append("alice", "hello", ts)
	h.Append("bob", "hi", ts.Add(time.Second))

	snap := h.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "alice", snap[0].Username)
	assert.Equal(t, "hello", snap[0].Text)
	assert.Equal(t, ts.UnixMilli(), snap[0].TimestampMS)
	assert.Equal(t, "bob", snap[1].Username)
}

func TestHistory_EvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(3)
	for i := 0; i < 5; i++ {
		h.Append("alice", fmt.Sprintf("msg-%d", i), time.Now())
	}

	snap := h.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "msg-2", snap[0].Text)
	assert.Equal(t, "msg-4", snap[2].Text)
}

func TestHistory_SnapshotIsACopy(t *testing.T) {
	h := NewHistory(10)
	h.Append("alice", "original", time.Now())

	snap := h.Snapshot()
	snap[0].Text = "mutated"

	assert.Equal(t, "original", h.Snapshot()[0].Text)
}

func TestHistory_DefaultLimit(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistoryLimit, h.limit)
}
