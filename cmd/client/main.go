package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/dmitrijs2005/gophchat/internal/client"
	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/logging"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: client <host> <port> <username> [-c config.json] [-l history_limit]")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 4 {
		usage()
	}

	host := os.Args[1]
	port, err := strconv.Atoi(os.Args[2])
	if err != nil || port < 1 || port > 65535 {
		fmt.Fprintf(os.Stderr, "invalid port %q\n", os.Args[2])
		usage()
	}
	username := os.Args[3]
	if username == "" {
		usage()
	}

	cfg := config.LoadConfig()
	cfg.ServerAddr = net.JoinHostPort(host, strconv.Itoa(port))
	cfg.Username = username

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	app := client.NewApp(cfg, logger)
	if err := app.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
