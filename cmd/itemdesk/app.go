// ABOUTME: REPL router and command dispatch for itemdesk
// ABOUTME: Mounts one view controller at a time and implements nav.Navigator for them

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/2389/itemdesk/internal/catalog"
	"github.com/2389/itemdesk/internal/credential"
	"github.com/2389/itemdesk/internal/detailview"
	"github.com/2389/itemdesk/internal/gateway"
	"github.com/2389/itemdesk/internal/listview"
	"github.com/2389/itemdesk/internal/nav"
	"github.com/2389/itemdesk/internal/session"
	"github.com/2389/itemdesk/internal/view"
)

// appOptions carries the collaborators the REPL is wired with.
type appOptions struct {
	Gateway       *gateway.Gateway
	Creds         credential.Store
	Logger        *slog.Logger
	In            io.Reader
	Out           io.Writer
	Color         bool
	RedirectDelay time.Duration
	// Scheduler overrides the post-login redirect timer.
	Scheduler session.Scheduler
	// ReadSecret reads a password without echo. Nil falls back to a plain line.
	ReadSecret func() (string, error)
}

type app struct {
	ctx        context.Context
	gw         *gateway.Gateway
	items      *catalog.Client
	creds      credential.Store
	logger     *slog.Logger
	sessOpts   []session.Option
	scanner    *bufio.Scanner
	readSecret func() (string, error)

	outMu  sync.Mutex
	out    io.Writer
	render *view.Renderer

	mu     sync.Mutex
	loc    nav.Location
	sess   *session.Controller
	list   *listview.Controller
	detail *detailview.Controller
}

func newApp(ctx context.Context, opts appOptions) *app {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessOpts := []session.Option{
		session.WithRedirectDelay(opts.RedirectDelay),
		session.WithLogger(logger),
	}
	if opts.Scheduler != nil {
		sessOpts = append(sessOpts, session.WithScheduler(opts.Scheduler))
	}

	return &app{
		ctx:        ctx,
		gw:         opts.Gateway,
		items:      catalog.NewClient(opts.Gateway),
		creds:      opts.Creds,
		logger:     logger.With("component", "repl"),
		sessOpts:   sessOpts,
		scanner:    bufio.NewScanner(opts.In),
		readSecret: opts.ReadSecret,
		out:        opts.Out,
		render:     view.NewRenderer(opts.Out, opts.Color),
	}
}

// Navigate unmounts the current view and mounts the one for to.
func (a *app) Navigate(to nav.Location) {
	a.mu.Lock()
	a.unmountLocked()
	a.loc = to
	if to.Hard {
		a.logger.Debug("hard navigation, dropping view state", "path", to.Path)
	}

	var load func()
	switch {
	case to.Path == nav.Auth.Path:
		c := session.New(a.gw, a.creds, a, a.sessOpts...)
		a.sess = c
		load = func() { a.refreshIf(func() bool { return a.sess == c }) }
	case to.Path == nav.Root.Path:
		c := listview.New(a.items, a, a.logger)
		a.list = c
		load = func() {
			c.Load(a.ctx)
			a.refreshIf(func() bool { return a.list == c })
		}
	default:
		id := nav.ItemID(to)
		if id == "" {
			a.mu.Unlock()
			a.logger.Warn("unknown location, going to list", "path", to.Path)
			a.Navigate(nav.Root)
			return
		}
		c := detailview.New(a.items, a, a.logger)
		a.detail = c
		load = func() {
			c.Load(a.ctx, id)
			a.refreshIf(func() bool { return a.detail == c })
		}
	}
	a.mu.Unlock()

	a.logger.Debug("navigated", "path", to.Path)
	load()
}

func (a *app) unmountLocked() {
	if a.sess != nil {
		a.sess.Close()
		a.sess = nil
	}
	if a.list != nil {
		a.list.Close()
		a.list = nil
	}
	if a.detail != nil {
		a.detail.Close()
		a.detail = nil
	}
}

func (a *app) location() nav.Location {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loc
}

// mounted returns the current controllers; at most one is non-nil.
func (a *app) mounted() (*session.Controller, *listview.Controller, *detailview.Controller) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sess, a.list, a.detail
}

// refreshIf renders the mounted view when still holds under the router lock.
func (a *app) refreshIf(still func() bool) {
	a.mu.Lock()
	ok := still()
	a.mu.Unlock()
	if ok {
		a.refresh()
	}
}

func (a *app) refresh() {
	sess, list, detail := a.mounted()

	a.outMu.Lock()
	defer a.outMu.Unlock()
	switch {
	case sess != nil:
		a.render.Session(sess.State())
	case list != nil:
		a.render.List(list.State())
	case detail != nil:
		a.render.Detail(detail.State())
	}
}

func (a *app) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// readLine reads one line of input, giving up when the context ends.
func (a *app) readLine() (string, error) {
	lineCh := make(chan string, 1)
	errCh := make(chan error, 1)

	go func() {
		if a.scanner.Scan() {
			lineCh <- a.scanner.Text()
			return
		}
		if err := a.scanner.Err(); err != nil {
			errCh <- err
		} else {
			errCh <- io.EOF
		}
	}()

	select {
	case <-a.ctx.Done():
		return "", a.ctx.Err()
	case err := <-errCh:
		return "", err
	case line := <-lineCh:
		return line, nil
	}
}

func (a *app) prompt(label string) (string, error) {
	a.printf("%s", label)
	line, err := a.readLine()
	return strings.TrimSpace(line), err
}

func (a *app) promptSecret(label string) (string, error) {
	if a.readSecret == nil {
		return a.prompt(label)
	}
	a.printf("%s", label)
	return a.readSecret()
}

func (a *app) confirm(question string) bool {
	answer, err := a.prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

// run is the interactive loop. It returns nil on quit, EOF, or cancellation.
func (a *app) run() error {
	a.Navigate(nav.Root)

	for {
		a.printf("%s> ", a.location().Path)

		line, err := a.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if quit := a.exec(line); quit {
			return nil
		}
	}
}

// exec runs a single command line and reports whether the user asked to quit.
func (a *app) exec(line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	before := a.location()

	var err error
	switch cmd {
	case "quit", "exit", "q":
		return true
	case "help":
		a.printHelp()
		return false
	case "list":
		a.Navigate(nav.Root)
		return false
	case "open":
		if rest == "" {
			err = errors.New("usage: open <id>")
			break
		}
		a.Navigate(nav.Item(rest))
		return false
	case "login":
		err = a.cmdAuth(session.ModeLogin)
	case "register":
		err = a.cmdAuth(session.ModeRegister)
	case "whoami":
		err = a.cmdWhoami()
		if err == nil {
			return false
		}
	case "logout":
		if err = a.creds.Clear(); err == nil {
			a.printf("Logged out.\n")
			return false
		}
	case "export":
		err = a.cmdExport(rest)
		if err == nil {
			return false
		}
	case "new", "edit", "set", "save", "cancel", "delete", "retry", "mode":
		err = a.cmdView(cmd, rest)
	default:
		err = fmt.Errorf("unknown command %q, type 'help' for commands", cmd)
	}

	if err != nil {
		a.printf("[error] %v\n", err)
		return false
	}
	if a.location() == before {
		a.refresh()
	}
	return false
}

var errWrongView = errors.New("not available in this view")

// cmdView dispatches commands that act on the mounted controller.
func (a *app) cmdView(cmd, arg string) error {
	sess, list, detail := a.mounted()

	switch {
	case sess != nil:
		switch cmd {
		case "set":
			field, value := splitField(arg)
			if field == "confirm" {
				field = string(session.FieldConfirmPassword)
			}
			return sess.UpdateField(session.Field(field), value)
		case "save":
			sess.Submit(a.ctx)
		case "mode":
			sess.SwitchMode()
		default:
			return errWrongView
		}

	case list != nil:
		switch cmd {
		case "new":
			list.OpenForm()
		case "set":
			field, value := splitField(arg)
			return list.UpdateField(catalog.Field(field), value)
		case "save":
			if !list.State().Form.Open {
				return errors.New("no form open, use 'new' first")
			}
			list.SubmitForm(a.ctx)
		case "cancel":
			list.CloseForm()
		case "retry":
			list.Load(a.ctx)
		default:
			return errWrongView
		}

	case detail != nil:
		switch cmd {
		case "edit":
			return detail.EnterEdit()
		case "set":
			field, value := splitField(arg)
			return detail.UpdateField(catalog.Field(field), value)
		case "save":
			detail.Save(a.ctx)
		case "cancel":
			detail.CancelEdit()
		case "delete":
			detail.Delete(a.ctx, detailview.ConfirmFunc(a.confirm))
		case "retry":
			detail.Retry(a.ctx)
		default:
			return errWrongView
		}

	default:
		return errWrongView
	}
	return nil
}

func splitField(arg string) (string, string) {
	field, value, _ := strings.Cut(arg, " ")
	return field, strings.TrimSpace(value)
}

// cmdAuth mounts the auth view if needed and walks the user through the form.
func (a *app) cmdAuth(mode session.Mode) error {
	if sess, _, _ := a.mounted(); sess == nil {
		a.Navigate(nav.Auth)
	}
	sess, _, _ := a.mounted()
	if sess == nil {
		return errWrongView
	}
	if sess.State().Mode != mode {
		sess.SwitchMode()
	}

	username, err := a.prompt("Username: ")
	if err != nil {
		return err
	}
	password, err := a.promptSecret("Password: ")
	if err != nil {
		return err
	}

	if mode == session.ModeLogin {
		sess.SubmitLogin(a.ctx, username, password)
		return nil
	}

	confirm, err := a.promptSecret("Confirm password: ")
	if err != nil {
		return err
	}
	sess.SubmitRegistration(a.ctx, username, password, confirm)
	return nil
}

func (a *app) cmdWhoami() error {
	cred, ok := a.creds.Get()
	if !ok {
		a.printf("Not logged in.\n")
		return nil
	}
	claims, err := credential.Inspect(cred)
	if err != nil {
		return err
	}

	a.printf("  Username:   %s\n", claims.Subject)
	a.printf("  Token type: %s\n", cred.TokenType)
	if !claims.IssuedAt.IsZero() {
		a.printf("  Issued:     %s\n", claims.IssuedAt.Local().Format(time.RFC1123))
	}
	if !claims.ExpiresAt.IsZero() {
		status := ""
		if claims.Expired(time.Now()) {
			status = " (expired)"
		}
		a.printf("  Expires:    %s%s\n", claims.ExpiresAt.Local().Format(time.RFC1123), status)
	}
	return nil
}

func (a *app) cmdExport(path string) error {
	if path == "" {
		return errors.New("usage: export <file.html>")
	}
	_, list, _ := a.mounted()
	if list == nil || list.State().Phase != listview.PhaseReady {
		return errors.New("export works from a loaded item list, run 'list' first")
	}
	items := list.State().Items

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := view.Export(f, "Items List", items, time.Now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing export file: %w", err)
	}

	a.printf("Exported %d items to %s\n", len(items), path)
	return nil
}

func (a *app) printHelp() {
	a.printf(`Commands:
  list                   Show the item list
  open <id>              Show a single item
  new                    Open the new item form (list view)
  edit                   Edit the open item (detail view)
  set <field> <value>    Set a form field: name, description, price
                         or username, password, confirm on the auth view
  save                   Submit the current form
  cancel                 Close the form or leave edit mode
  delete                 Delete the open item
  retry                  Reload the current view
  login                  Sign in
  register               Create an account
  mode                   Switch between sign in and registration (auth view)
  whoami                 Show the stored credential
  logout                 Forget the stored credential
  export <file.html>     Write the item list as HTML
  help                   Show this help
  quit                   Exit
`)
}
