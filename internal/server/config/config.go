// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the chat server.
//
// Fields:
//   - ListenAddr: TCP bind address, set from the positional port argument.
//   - CredentialFile: path of the line-oriented SRP credential store.
//   - DatabaseDSN: PostgreSQL DSN (pgx). When set, it replaces the file store.
//   - HistoryLimit: number of chat messages retained for INIT snapshots.
//   - SessionTTL: lifetime of an unfinished handshake session.
type Config struct {
	ListenAddr     string
	CredentialFile string
	DatabaseDSN    string
	HistoryLimit   int
	SessionTTL     time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":9000"
	c.CredentialFile = "users.txt"
	c.DatabaseDSN = ""
	c.HistoryLimit = 100
	c.SessionTTL = time.Hour
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
