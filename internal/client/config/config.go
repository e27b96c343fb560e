// Package config handles configuration for the client component.
package config

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

// Config holds runtime settings for the chat client.
//
// Fields:
//   - ServerAddr: host:port of the chat server, set from positional args.
//   - Username: login name, set from positional args.
//   - HistoryLimit: number of chat lines kept for redrawing the screen.
type Config struct {
	ServerAddr   string
	Username     string
	HistoryLimit int
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:9000"
	c.HistoryLimit = 50
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

// JsonConfig is the DTO for the optional JSON configuration file.
type JsonConfig struct {
	HistoryLimit int `json:"history_limit"`
}

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

	if c.HistoryLimit > 0 {
		config.HistoryLimit = c.HistoryLimit
	}
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-l int   local history limit, lines
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-l"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.IntVar(&config.HistoryLimit, "l", config.HistoryLimit, "local history limit, lines")
	_ = fs.Parse(args)
}
