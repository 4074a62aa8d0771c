// console is the command-line front end of the support console. Each
// invocation behaves like one page load: it restores the stored session,
// runs a single command against the API and prints a plain-text view.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/spec-kit/nexus-console/internal/config"
	"github.com/spec-kit/nexus-console/internal/console"
	"github.com/spec-kit/nexus-console/internal/observability"
	"github.com/spec-kit/nexus-console/internal/persistence"
	"github.com/spec-kit/nexus-console/internal/remote"
	"github.com/spec-kit/nexus-console/internal/session"
)

// keyCookies holds the API session cookies between invocations.
const keyCookies = "nexus_cookies"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		apiURL     string
		driver     string
		noFixtures bool
		logLevel   string
	)

	flagSet := pflag.NewFlagSet("console", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&apiURL, "api", "", "API base URL (default: $API_BASE_URL)")
	flagSet.StringVar(&driver, "storage", "", "session storage driver: file, redis or memory (default: $STORAGE_DRIVER)")
	flagSet.BoolVar(&noFixtures, "no-fixtures", false, "never substitute sample data when the API is unreachable")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help || flagSet.NArg() == 0 {
		printHelp(stderr, flagSet)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if apiURL != "" {
		cfg.Client.BaseURL = apiURL
	}
	if driver != "" {
		cfg.Storage.Driver = driver
	}
	if noFixtures {
		cfg.Client.UseFixtures = false
	}
	cfg.Logger = config.LoggerConfig{Level: logLevel, Output: "stderr"}

	if err := cfg.Client.Validate(); err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	storage, closeStorage, err := persistence.NewStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	client, err := remote.New(cfg.Client.BaseURL, remote.WithLogger(logger))
	if err != nil {
		return err
	}
	if cfg.Client.PersistCookies {
		restoreCookies(ctx, storage, client, logger)
		defer saveCookies(ctx, storage, client, logger)
	}

	c := console.New(console.Dependencies{
		API:     remote.NewAPI(client),
		Session: session.New(storage, logger),
		Logger:  logger,
	}, console.Options{UseFixtures: cfg.Client.UseFixtures})

	c.Boot(ctx)
	cmd := &commandRunner{console: c, out: stdout, warn: stderr}
	err = cmd.run(ctx, flagSet.Arg(0), flagSet.Args()[1:])
	if waitErr := c.Wait(ctx); waitErr != nil {
		logger.Debug("background work interrupted", zap.Error(waitErr))
	}
	return err
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func restoreCookies(ctx context.Context, storage persistence.Storage, client *remote.Client, logger *zap.Logger) {
	raw, ok, err := storage.Get(ctx, keyCookies)
	if err != nil || !ok {
		if err != nil {
			logger.Warn("stored cookies unreadable", zap.Error(err))
		}
		return
	}
	var saved []savedCookie
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		logger.Warn("stored cookies corrupt, ignoring", zap.Error(err))
		return
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value, Path: "/"})
	}
	client.RestoreCookies(cookies)
}

// saveCookies mirrors the jar into storage; an empty jar clears the key so a
// logout does not leave a stale session behind.
func saveCookies(ctx context.Context, storage persistence.Storage, client *remote.Client, logger *zap.Logger) {
	cookies := client.Cookies()
	if len(cookies) == 0 {
		if err := storage.Remove(ctx, keyCookies); err != nil {
			logger.Warn("clearing cookies failed", zap.Error(err))
		}
		return
	}
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	data, err := json.Marshal(saved)
	if err != nil {
		logger.Warn("encoding cookies failed", zap.Error(err))
		return
	}
	if err := storage.Set(ctx, keyCookies, string(data)); err != nil {
		logger.Warn("saving cookies failed", zap.Error(err))
	}
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `console: support operations console.

Usage:
  console [flags] <command> [args]

Commands:
  login <email> <password>     sign in
  logout                       sign out
  whoami                       show the signed-in staff member
  lang <en|hi>                 switch the interface language
  menu                         list the screens available to your role
  dashboard                    show the summary counters
  chats                        list your open conversations
  open <chatID>                show a conversation and mark it read
  send <chatID> <text...>      send a message
  close <chatID>               close a conversation
  tickets [--status S]         list tickets, optionally by status
  ticket-status <id> <status>  change a ticket's status
  assign <id> <assignee>       assign a ticket
  tasks                        show the task board
  move <taskID> <status>       move a task to another column
  staff                        list staff
  role <staffID> <role>        change a staff member's role

Examples:
  console --api http://localhost:5000/api login admin@nexus.com nexus123
  console tickets --status NEW
  console move t1 DOING

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
