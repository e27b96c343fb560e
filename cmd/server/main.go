package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/dmitrijs2005/gophchat/internal/server"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: server <port> [-f credfile] [-d dsn] [-c config.json] [-l history_limit] [-t ttl_minutes]")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	port, err := strconv.Atoi(os.Args[1])
	if err != nil || port < 1024 || port > 65535 {
		fmt.Fprintf(os.Stderr, "invalid port %q: must be an integer in [1024, 65535]\n", os.Args[1])
		usage()
	}

	cfg := config.LoadConfig()
	cfg.ListenAddr = fmt.Sprintf(":%d", port)

	ctx := context.Background()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}
