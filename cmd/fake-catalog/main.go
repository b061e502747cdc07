// ABOUTME: Development fake of the catalog service for running itemdesk locally
// ABOUTME: Usage: fake-catalog [-addr localhost:8000] [-origins http://localhost:5173] [-seed 3]

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/2389/itemdesk/internal/fakeserver"
)

func main() {
	addr := flag.String("addr", "localhost:8000", "HTTP listen address")
	secret := flag.String("secret", os.Getenv("FAKE_CATALOG_SECRET"), "JWT signing secret (default: FAKE_CATALOG_SECRET or a development value)")
	origins := flag.String("origins", "http://localhost:5173", "Comma-separated CORS origins, empty to disable")
	ttl := flag.Duration("ttl", 30*time.Minute, "Access token lifetime")
	seed := flag.Int("seed", 3, "Number of demo items to create at startup")
	verbose := flag.Bool("v", false, "Log every request")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*addr, *secret, *origins, *ttl, *seed, logger); err != nil {
		logger.Error("fake-catalog failed", "error", err)
		os.Exit(1)
	}
}

func run(addr, secret, origins string, ttl time.Duration, seed int, logger *slog.Logger) error {
	if secret == "" {
		secret = "fake-catalog-development-secret"
		logger.Warn("using built-in development secret")
	}

	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}

	srv := fakeserver.New(fakeserver.Config{
		Secret:         []byte(secret),
		TokenTTL:       ttl,
		AllowedOrigins: allowed,
	}, logger)
	seedDemo(srv, seed)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake catalog listening", "addr", addr, "origins", allowed)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}

func seedDemo(srv *fakeserver.Server, n int) {
	for i := 1; i <= n; i++ {
		desc := fmt.Sprintf("Demo item number **%d**.", i)
		srv.Seed(fakeserver.Item{
			Name:        fmt.Sprintf("demo item %d", i),
			Description: &desc,
			Price:       float64(i) * 4.25,
		})
	}
}
