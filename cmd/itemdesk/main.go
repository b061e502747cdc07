// ABOUTME: Interactive terminal client for the catalog service
// ABOUTME: Loads config, opens the credential store, and runs the REPL

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/2389/itemdesk/internal/config"
	"github.com/2389/itemdesk/internal/credential"
	"github.com/2389/itemdesk/internal/gateway"
)

func main() {
	configPath := flag.String("config", config.Path(), "Config file (YAML, or TOML with a .toml extension)")
	server := flag.String("server", "", "Catalog service URL (overrides config and ITEMDESK_SERVER)")
	flag.Parse()

	if err := run(*configPath, *server); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\nGoodbye!")
}

func run(configPath, server string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if server != "" {
		cfg.Server.BaseURL = server
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}
	}

	logger := setupLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	store, closeStore, err := openStore(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("opening credential store: %w", err)
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	gw := gateway.New(cfg.Server.BaseURL, store,
		gateway.WithTimeout(cfg.Server.Timeout),
		gateway.WithLogger(logger),
	)

	fmt.Printf("itemdesk connected to %s\n", gw.BaseURL())
	if _, ok := store.Get(); ok {
		fmt.Println("Auth: credential loaded (type 'whoami' for details)")
	} else {
		fmt.Println("Auth: none (type 'login' or 'register')")
	}
	fmt.Println("Type 'help' for commands. Ctrl+C to quit.")

	opts := appOptions{
		Gateway:       gw,
		Creds:         store,
		Logger:        logger,
		In:            os.Stdin,
		Out:           os.Stdout,
		Color:         !color.NoColor,
		RedirectDelay: cfg.Session.RedirectDelay,
	}
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		opts.ReadSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			fmt.Println()
			return string(b), err
		}
	}

	return newApp(ctx, opts).run()
}

// openStore builds the configured credential backend.
func openStore(cfg config.CredentialsConfig) (credential.Store, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendMemory:
		return credential.NewMemoryStore(), noop, nil

	case config.BackendSQLite:
		path := cfg.Path
		if path == "" {
			path = filepath.Join(filepath.Dir(credential.DefaultFilePath()), "state.db")
		}
		store, err := credential.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Warn("closing credential database", "error", err)
			}
		}, nil

	default:
		path := cfg.Path
		if path == "" {
			path = credential.DefaultFilePath()
		}
		return credential.NewFileStore(path), noop, nil
	}
}
