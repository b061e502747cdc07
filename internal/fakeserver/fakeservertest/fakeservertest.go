// ABOUTME: Test helper that runs the fake catalog service on an httptest listener
// ABOUTME: Uses the minimum bcrypt cost so registration stays fast in tests

// Package fakeservertest starts a fakeserver for tests in other packages.
package fakeservertest

import (
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/2389/itemdesk/internal/fakeserver"
)

// Secret signs tokens issued by servers created with New.
var Secret = []byte("fakeserver-test-secret-0123456789")

// New starts a fake service for the duration of the test.
func New(tb testing.TB) (*fakeserver.Server, *httptest.Server) {
	tb.Helper()

	s := fakeserver.New(fakeserver.Config{
		Secret:     Secret,
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, slog.New(slog.DiscardHandler))

	ts := httptest.NewServer(s.Handler())
	tb.Cleanup(ts.Close)
	return s, ts
}
