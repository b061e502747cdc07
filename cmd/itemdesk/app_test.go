// ABOUTME: Tests for the REPL router and commands against the fake catalog service
// ABOUTME: Commands are driven through exec with scripted input for prompts

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/itemdesk/internal/credential"
	"github.com/2389/itemdesk/internal/fakeserver"
	"github.com/2389/itemdesk/internal/fakeserver/fakeservertest"
	"github.com/2389/itemdesk/internal/gateway"
	"github.com/2389/itemdesk/internal/nav"
)

type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func (m *manualScheduler) AfterFunc(_ time.Duration, f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, f)
}

func (m *manualScheduler) Fire() {
	m.mu.Lock()
	pending := m.pending
	m.pending = nil
	m.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

type testApp struct {
	*app
	srv   *fakeserver.Server
	creds *credential.MemoryStore
	sched *manualScheduler
	out   *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	srv, ts := fakeservertest.New(t)
	creds := credential.NewMemoryStore()
	sched := &manualScheduler{}
	out := &bytes.Buffer{}

	a := newApp(context.Background(), appOptions{
		Gateway:   gateway.New(ts.URL, creds),
		Creds:     creds,
		In:        strings.NewReader(input),
		Out:       out,
		Scheduler: sched,
	})
	return &testApp{app: a, srv: srv, creds: creds, sched: sched, out: out}
}

func (ta *testApp) login(t *testing.T) {
	t.Helper()
	tok, err := ta.srv.Tokens().Generate("tester")
	require.NoError(t, err)
	require.NoError(t, ta.creds.Set(credential.Credential{Token: tok, TokenType: "bearer"}))
}

func strPtr(s string) *string { return &s }

func TestRun_StartsOnListAndQuits(t *testing.T) {
	ta := newTestApp(t, "quit\n")
	ta.srv.Seed(fakeserver.Item{Name: "widget", Price: 2.5})

	require.NoError(t, ta.run())

	out := ta.out.String()
	assert.Contains(t, out, "Items List")
	assert.Contains(t, out, "[1] widget  $2.50")
	assert.Equal(t, nav.Root, ta.location())
}

func TestRun_EOFEndsLoop(t *testing.T) {
	ta := newTestApp(t, "help\n")
	require.NoError(t, ta.run())
	assert.Contains(t, ta.out.String(), "export <file.html>")
}

func TestExec_UnknownCommand(t *testing.T) {
	ta := newTestApp(t, "")
	assert.False(t, ta.exec("frobnicate"))
	assert.Contains(t, ta.out.String(), `unknown command "frobnicate"`)
	assert.True(t, ta.exec("quit"))
}

func TestRegister_StoresCredentialAndRedirects(t *testing.T) {
	ta := newTestApp(t, "alice\nsecret\nsecret\n")

	ta.exec("register")

	cred, ok := ta.creds.Get()
	require.True(t, ok)
	assert.Equal(t, "bearer", cred.TokenType)
	assert.Contains(t, ta.out.String(), "Registration successful! Redirecting...")
	assert.Equal(t, nav.Auth, ta.location())

	ta.sched.Fire()
	assert.Equal(t, nav.Root.Path, ta.location().Path)

	ta.out.Reset()
	ta.exec("whoami")
	assert.Contains(t, ta.out.String(), "Username:   alice")
}

func TestLogin_FailureShowsDetail(t *testing.T) {
	ta := newTestApp(t, "nobody\nwrong\n")

	ta.exec("login")

	_, ok := ta.creds.Get()
	assert.False(t, ok)
	assert.Contains(t, ta.out.String(), "Login failed: Invalid Credentials")
}

func TestRegister_MismatchThenRetry(t *testing.T) {
	ta := newTestApp(t, "alice\none\ntwo\nalice\npw\npw\n")

	ta.exec("register")
	assert.Contains(t, ta.out.String(), "Passwords do not match")
	_, ok := ta.creds.Get()
	assert.False(t, ok)

	// The username is still free
	ta.exec("register")
	assert.Contains(t, ta.out.String(), "Registration successful! Redirecting...")
}

func TestOpen_WithoutCredentialGoesToAuth(t *testing.T) {
	ta := newTestApp(t, "")
	ta.srv.Seed(fakeserver.Item{ID: 42, Name: "widget", Price: 1})

	ta.exec("open 42")

	assert.Equal(t, nav.Auth, ta.location())
	out := ta.out.String()
	assert.Contains(t, out, "Sign in")
}

func TestEditAndSave(t *testing.T) {
	ta := newTestApp(t, "")
	ta.login(t)
	ta.srv.Seed(fakeserver.Item{ID: 42, Name: "widget", Description: strPtr("small"), Price: 1})

	ta.exec("open 42")
	require.Equal(t, nav.Item("42"), ta.location())
	assert.Contains(t, ta.out.String(), "ID: 42")

	ta.exec("edit")
	ta.exec("set name big widget")
	ta.exec("set price 12.5")
	ta.out.Reset()
	ta.exec("save")

	assert.Contains(t, ta.out.String(), "big widget")
	assert.Contains(t, ta.out.String(), "Price: $12.50")
	items := ta.srv.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "big widget", items[0].Name)
	assert.Equal(t, 12.5, items[0].Price)
}

func TestSaveFailureStaysInEdit(t *testing.T) {
	ta := newTestApp(t, "")
	ta.login(t)
	ta.srv.Seed(fakeserver.Item{ID: 42, Name: "widget", Price: 1})

	ta.exec("open 42")
	ta.exec("edit")
	ta.srv.SetFault("PUT", "/api/42", 500, "")
	ta.out.Reset()
	ta.exec("save")

	out := ta.out.String()
	assert.Contains(t, out, "Failed to update item: 500")
	assert.Contains(t, out, "Edit item 42")
}

func TestDelete_ConfirmedGoesToList(t *testing.T) {
	ta := newTestApp(t, "y\n")
	ta.login(t)
	ta.srv.Seed(fakeserver.Item{ID: 42, Name: "widget", Price: 1})

	ta.exec("open 42")
	ta.exec("delete")

	assert.Empty(t, ta.srv.Items())
	assert.Equal(t, nav.Root, ta.location())
	assert.Contains(t, ta.out.String(), "Are you sure you want to delete this item? [y/N]")
}

func TestDelete_DeclinedKeepsItem(t *testing.T) {
	ta := newTestApp(t, "n\n")
	ta.login(t)
	ta.srv.Seed(fakeserver.Item{ID: 42, Name: "widget", Price: 1})

	ta.exec("open 42")
	ta.exec("delete")

	assert.Len(t, ta.srv.Items(), 1)
	assert.Equal(t, nav.Item("42"), ta.location())
}

func TestNewItemFromList(t *testing.T) {
	ta := newTestApp(t, "")
	ta.login(t)
	ta.srv.Seed(fakeserver.Item{Name: "first", Price: 1})

	ta.exec("list")
	ta.exec("save")
	assert.Contains(t, ta.out.String(), "no form open")

	ta.exec("new")
	ta.exec("set name second")
	ta.exec("set price 3")
	ta.out.Reset()
	ta.exec("save")

	out := ta.out.String()
	assert.Contains(t, out, "Fetched 2 items from API")
	assert.Less(t, strings.Index(out, "second"), strings.Index(out, "first"))
}

func TestWrongViewCommand(t *testing.T) {
	ta := newTestApp(t, "")
	ta.exec("list")
	ta.exec("edit")
	assert.Contains(t, ta.out.String(), errWrongView.Error())
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t, "")
	ta.login(t)

	ta.exec("logout")

	_, ok := ta.creds.Get()
	assert.False(t, ok)
	ta.exec("whoami")
	assert.Contains(t, ta.out.String(), "Not logged in.")
}

func TestExport(t *testing.T) {
	ta := newTestApp(t, "")
	ta.srv.Seed(fakeserver.Item{Name: "widget", Description: strPtr("**bold**"), Price: 2})
	path := filepath.Join(t.TempDir(), "items.html")

	ta.exec("export " + path)
	assert.Contains(t, ta.out.String(), "run 'list' first")

	ta.exec("list")
	ta.exec("export " + path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<strong>bold</strong>")
	assert.Contains(t, ta.out.String(), "Exported 1 items to "+path)
}
