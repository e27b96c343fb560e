package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

// JsonConfig is the DTO for the optional JSON configuration file. TTL is
// expressed in minutes, matching the -t flag.
type JsonConfig struct {
	CredentialFile    string `json:"credential_file"`
	DatabaseDSN       string `json:"database_dsn"`
	HistoryLimit      int    `json:"history_limit"`
	SessionTTLMinutes int    `json:"session_ttl_minutes"`
}

// parseJson overlays configuration values from the JSON file named by the
// -c or -config flag. Absent flag means no file is loaded; an unreadable or
// invalid file panics. Only fields present in the file override defaults.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.CredentialFile != "" {
		config.CredentialFile = c.CredentialFile
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.HistoryLimit > 0 {
		config.HistoryLimit = c.HistoryLimit
	}
	if c.SessionTTLMinutes > 0 {
		config.SessionTTL = time.Duration(c.SessionTTLMinutes) * time.Minute
	}
}
