package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/gophchat/internal/client/config"
	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/protocol"
)

// readPasswordFn is a test seam for the no-echo password prompt.
var readPasswordFn = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

// App is the interactive terminal front end: it authenticates, then runs a
// receive goroutine next to the stdin command loop.
type App struct {
	config *config.Config
	logger logging.Logger
	client *Client

	out io.Writer
	in  io.Reader

	mu      sync.Mutex
	history []string
}

func NewApp(cfg *config.Config, logger logging.Logger) *App {
	return &App{
		config: cfg,
		logger: logger,
		out:    os.Stdout,
		in:     os.Stdin,
	}
}

func (a *App) Run(ctx context.Context) error {
	client, err := Dial(a.config.ServerAddr, a.logger)
	if err != nil {
		return err
	}
	a.client = client
	defer client.Close()

	if err := a.login(); err != nil {
		return err
	}

	a.println(formatSystem(fmt.Sprintf("connected to %s as %s", a.config.ServerAddr, a.config.Username)))
	a.println(formatSystem("type /help for commands"))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	recvErr := make(chan error, 1)
	go func() {
		recvErr <- client.Run(ctx, a)
	}()

	go a.commandLoop(cancel)

	select {
	case err := <-recvErr:
		if err != nil {
			a.println(formatError("connection lost: " + err.Error()))
		}
		return err
	case <-ctx.Done():
		return nil
	}
}

// login runs the handshake; an unknown username transparently offers
// registration on the same connection.
func (a *App) login() error {
	fmt.Fprintf(a.out, "Password: ")
	password, err := readPasswordFn()
	fmt.Fprintln(a.out)
	if err != nil {
		return err
	}

	err = a.client.Authenticate(a.config.Username, string(password))
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrUserNotFound) {
		return err
	}

	fmt.Fprintf(a.out, "User %q not found, registering. Confirm password: ", a.config.Username)
	confirm, err := readPasswordFn()
	fmt.Fprintln(a.out)
	if err != nil {
		return err
	}
	if string(confirm) != string(password) {
		return errors.New("passwords do not match")
	}

	if err := a.client.Register(a.config.Username, string(password)); err != nil {
		return err
	}

	return a.client.Authenticate(a.config.Username, string(password))
}

func (a *App) commandLoop(cancel context.CancelFunc) {
	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/q":
			a.client.Disconnect()
			cancel()
			return

		case "/clear":
			a.mu.Lock()
			a.history = nil
			a.mu.Unlock()
			fmt.Fprint(a.out, ansiClearScreen)

		case "/help":
			a.println(formatSystem("/quit (/q) leave, /clear clear screen, /help this text"))

		default:
			if err := a.client.SendMessage(line); err != nil {
				a.println(formatError("send failed: " + err.Error()))
				cancel()
				return
			}
		}
	}
	// stdin closed
	a.client.Disconnect()
	cancel()
}

// record appends a rendered line to the bounded local history and prints it.
func (a *App) record(line string) {
	a.mu.Lock()
	a.history = append(a.history, line)
	if len(a.history) > a.config.HistoryLimit {
		a.history = a.history[len(a.history)-a.config.HistoryLimit:]
	}
	a.mu.Unlock()

	a.println(line)
}

func (a *App) println(line string) {
	fmt.Fprintln(a.out, line)
}

// History returns a copy of the rendered local backlog.
func (a *App) History() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.history))
	copy(out, a.history)
	return out
}

// Handler implementation, called from the receive goroutine.

func (a *App) OnInit(history []protocol.ChatMessage, users []protocol.User) {
	if len(history) > a.config.HistoryLimit {
		history = history[len(history)-a.config.HistoryLimit:]
	}
	for _, msg := range history {
		a.record(formatChatLine(msg.Username, msg.Text, time.UnixMilli(msg.TimestampMS), msg.Username == a.config.Username))
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.Username)
	}
	a.println(formatSystem("online: " + strings.Join(names, ", ")))
}

func (a *App) OnBroadcast(username, text string, ts time.Time) {
	a.record(formatChatLine(username, text, ts, username == a.config.Username))
}

func (a *App) OnUserJoined(username string) {
	a.println(formatJoin(username))
}

func (a *App) OnUserLeft(username string) {
	a.println(formatLeave(username))
}

func (a *App) OnServerError(text string) {
	a.println(formatError(text))
}
