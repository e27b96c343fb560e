package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-f string   credential file path
//	-d string   PostgreSQL DSN (enables the database store)
//	-l int      history limit, messages
//	-t int      handshake session TTL, minutes
//
// The args are first filtered with flagx.FilterArgs so the positional port
// argument and flags owned by other components are ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-d", "-l", "-t"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	ttlMinutes := int(config.SessionTTL / time.Minute)

	fs.StringVar(&config.CredentialFile, "f", config.CredentialFile, "credential file path")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.HistoryLimit, "l", config.HistoryLimit, "history limit, messages")
	fs.IntVar(&ttlMinutes, "t", ttlMinutes, "handshake session TTL, minutes")

	_ = fs.Parse(args)

	if ttlMinutes > 0 {
		config.SessionTTL = time.Duration(ttlMinutes) * time.Minute
	}
}
