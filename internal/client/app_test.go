package client

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

func newTestApp(limit int) (*App, *bytes.Buffer) {
	cfg := &config.Config{Username: "alice", HistoryLimit: limit}
	app := NewApp(cfg, discardLogger())
	out := &bytes.Buffer{}
	app.out = out
	return app, out
}

func TestApp_RecordBoundsHistory(t *testing.T) {
	app, _ := newTestApp(3)

	for i := 0; i < 5; i++ {
		app.record(fmt.Sprintf("line-%d", i))
	}

	history := app.History()
	require.Len(t, history, 3)
	assert.Equal(t, "line-2", history[0])
	assert.Equal(t, "line-4", history[2])
}

func TestApp_OnInitTruncatesBacklog(t *testing.T) {
	app, out := newTestApp(2)

	backlog := []protocol.ChatMessage{
		{Username: "bob", Text: "first", TimestampMS: 1000},
		{Username: "bob", Text: "second", TimestampMS: 2000},
		{Username: "bob", Text: "third", TimestampMS: 3000},
	}
	app.OnInit(backlog, []protocol.User{{Username: "alice"}, {Username: "bob"}})

	history := app.History()
	require.Len(t, history, 2)
	assert.Contains(t, history[0], "second")
	assert.Contains(t, history[1], "third")

	assert.Contains(t, out.String(), "online: alice, bob")
}

func TestApp_OnBroadcastPrintsLine(t *testing.T) {
	app, out := newTestApp(10)

	app.OnBroadcast("bob", "hi there", time.UnixMilli(1700000000000))

	assert.Contains(t, out.String(), "bob")
	assert.Contains(t, out.String(), "hi there")
}

func TestApp_JoinAndLeaveNotices(t *testing.T) {
	app, out := newTestApp(10)

	app.OnUserJoined("bob")
	app.OnUserLeft("bob")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "joined the chat")
	assert.Contains(t, lines[1], "left the chat")
}

func TestFormatChatLine(t *testing.T) {
	ts := time.Date(2026, 1, 2, 15, 4, 5, 0, time.Local)

	line := formatChatLine("bob", "hello", ts, false)
	assert.Contains(t, line, "15:04:05")
	assert.Contains(t, line, "bob")
	assert.Contains(t, line, "hello")
	assert.Contains(t, line, ansiCyan)

	self := formatChatLine("alice", "hello", ts, true)
	assert.Contains(t, self, ansiGreen)
}
