package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/signupdesk/internal/adapter/driven/signupapi"
	sqliteadapter "github.com/ericfisherdev/signupdesk/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/signupdesk/internal/adapter/driving/terminal"
	"github.com/ericfisherdev/signupdesk/internal/application"
	"github.com/ericfisherdev/signupdesk/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration and install the logger.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	logger.Debug("config loaded",
		"base_url", cfg.BaseURL,
		"db_path", cfg.DBPath,
		"request_timeout", cfg.RequestTimeout,
		"http_cache", cfg.HTTPCache,
		"encrypted_at_rest", cfg.HasSecretKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode) and migrate it.
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	logger.Debug("database ready", "path", cfg.DBPath, "schema_version", version)

	// 4. Wire driven adapters.
	credentialStore, err := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	if err != nil {
		return err
	}
	api, err := signupapi.NewClient(cfg.BaseURL, signupapi.Options{
		Timeout: cfg.RequestTimeout,
		Cache:   cfg.HTTPCache,
	}, logger)
	if err != nil {
		return err
	}

	// 5. Restore the admin session and build the application.
	session := application.NewSessionStore(credentialStore, cfg.Origin, logger)
	session.Open(ctx)

	screen := terminal.NewScreen(os.Stdout, !color.NoColor)
	lines := terminal.NewLineReader(os.Stdin)
	prompter := terminal.NewPrompter(screen, lines, int(os.Stdin.Fd()))

	messages := application.NewMessageBoard(screen, cfg.MessageTTL)
	view := application.NewActivityView(api, session, screen, messages, logger)
	controller := application.NewSessionController(api, session, view, screen, messages, prompter, logger)

	// 6. Run the shell. A blocked read cannot observe the signal, so the
	// shell runs on its own goroutine. Every request, login and logout
	// included, is tracked by the shell, so Wait returns before the database
	// is closed.
	shell := terminal.NewShell(view, controller, screen, lines, screen, logger)
	done := make(chan error, 1)
	go func() { done <- shell.Run(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		shell.Wait()
		fmt.Fprintln(screen)
		return nil
	}
}

func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
