package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "users.txt", cfg.CredentialFile)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestParseJsonOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	content, err := json.Marshal(JsonConfig{
		CredentialFile:    "alt.txt",
		HistoryLimit:      25,
		SessionTTLMinutes: 5,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	oldArgs := os.Args
	os.Args = []string{"server", "9000", "-c", path}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "alt.txt", cfg.CredentialFile)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	// fields absent from the file keep their defaults
	assert.Equal(t, ":9000", cfg.ListenAddr)
}

func TestParseFlags(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"server", "9000", "-f", "creds.txt", "-l", "10", "-t", "30"}
	defer func() { os.Args = oldArgs }()

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "creds.txt", cfg.CredentialFile)
	assert.Equal(t, 10, cfg.HistoryLimit)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}
