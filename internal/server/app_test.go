package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophchat/internal/server/config"
)

func TestNewApp_ToleratesCorruptCredentialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.txt")
	require.NoError(t, os.WriteFile(path, []byte("garbage without delimiters\nalice:0102:0a0b\n"), 0o600))

	cfg := &config.Config{
		ListenAddr:     "127.0.0.1:0",
		CredentialFile: path,
		HistoryLimit:   10,
		SessionTTL:     time.Minute,
	}

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, app.server)
}

func TestNewApp_MissingCredentialFile(t *testing.T) {
	cfg := &config.Config{
		ListenAddr:     "127.0.0.1:0",
		CredentialFile: filepath.Join(t.TempDir(), "absent.txt"),
		HistoryLimit:   10,
		SessionTTL:     time.Minute,
	}

	app, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, app.store)
}
