package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/auth"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/config"
)

// sweepInterval is how often expired handshake sessions are collected.
const sweepInterval = time.Minute

// App wires the credential store, authenticator, and TCP server together
// and owns graceful shutdown.
type App struct {
	config   *config.Config
	logger   logging.Logger
	store    auth.Store
	sessions *auth.Sessions
	server   *Server
	dbh      interface{ Close() error }
}

// NewApp builds the application from config. A DatabaseDSN selects the
// Postgres store; otherwise credentials live in the file store.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &App{config: cfg, logger: logger}

	if cfg.DatabaseDSN != "" {
		store, db, err := auth.OpenPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.store = store
		app.dbh = db
	} else {
		store := auth.NewFileStore(cfg.CredentialFile)
		skipped, err := store.Load()
		if err != nil {
			// load failure is tolerated, the server starts with an empty store
			logger.Warn(ctx, "credential store unreadable, starting empty", "path", cfg.CredentialFile, "error", err)
		}
		if skipped > 0 {
			logger.Warn(ctx, "skipped malformed credential records", "path", cfg.CredentialFile, "count", skipped)
		}
		app.store = store
	}

	app.sessions = auth.NewSessions(cfg.SessionTTL)
	authenticator := auth.NewAuthenticator(app.store, app.sessions, logger)
	app.server = NewServer(cfg.ListenAddr, authenticator, cfg.HistoryLimit, logger)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the server and blocks until shutdown. Credentials are flushed
// on the way out; a flush failure is returned so the process exits nonzero.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.ListenAddr)

	app.initSignalHandler(cancelFunc)

	go app.sessions.Sweep(ctx, sweepInterval)

	runErr := app.server.Run(ctx)

	if app.dbh != nil {
		app.dbh.Close()
	}

	if err := app.store.Flush(); err != nil {
		return fmt.Errorf("credential flush error: %w", err)
	}

	app.logger.Info(ctx, "shutdown complete")
	return runErr
}
