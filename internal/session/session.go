// ABOUTME: Session controller for login and registration
// ABOUTME: Stores the returned credential and schedules the redirect to the root view

package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/2389/itemdesk/internal/credential"
	"github.com/2389/itemdesk/internal/gateway"
	"github.com/2389/itemdesk/internal/nav"
)

// DefaultRedirectDelay is how long the success message shows before redirecting.
const DefaultRedirectDelay = 500 * time.Millisecond

// MsgPasswordMismatch is the validation message for differing passwords.
const MsgPasswordMismatch = "Passwords do not match"

// MsgMissingFields is the validation message for an empty username or password.
const MsgMissingFields = "Username and password are required"

// Mode is the form the user is filling in.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// Phase is the position in the session state machine.
type Phase int

const (
	PhaseAnonymousIdle Phase = iota
	PhaseSubmitting
	PhaseAuthenticated
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitting:
		return "submitting"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseFailed:
		return "failed"
	default:
		return "anonymous"
	}
}

// Field names a form field.
type Field string

// Form fields.
const (
	FieldUsername        Field = "username"
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

// LoginDraft is the login form.
type LoginDraft struct {
	Username string
	Password string
}

// RegisterDraft is the registration form.
type RegisterDraft struct {
	Username        string
	Password        string
	ConfirmPassword string
}

// State is a snapshot of the controller.
type State struct {
	Phase Phase
	// Mode is the form shown. While submitting or after success it is the
	// mode that was submitted.
	Mode     Mode
	Err      error // set when Phase is PhaseFailed
	Login    LoginDraft
	Register RegisterDraft
}

// Doer sends a request through the gateway.
type Doer interface {
	Do(ctx context.Context, req gateway.Request, out any) error
}

// Scheduler runs f after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// Controller drives the login/registration forms.
type Controller struct {
	gw     Doer
	creds  credential.Store
	nav    nav.Navigator
	sched  Scheduler
	delay  time.Duration
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	closed bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler replaces the timer used for the post-login redirect.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithRedirectDelay sets how long to wait before redirecting after success.
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l.With("component", "session") }
}

// New creates a Controller in the anonymous login form.
func New(gw Doer, creds credential.Store, navigator nav.Navigator, opts ...Option) *Controller {
	c := &Controller{
		gw:     gw,
		creds:  creds,
		nav:    navigator,
		sched:  timeScheduler{},
		delay:  DefaultRedirectDelay,
		logger: slog.Default().With("component", "session"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close marks the view as gone. Responses arriving afterwards are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// UpdateField edits a field of the current form. A failure message is
// cleared; field values are kept.
func (c *Controller) UpdateField(field Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Mode {
	case ModeLogin:
		switch field {
		case FieldUsername:
			c.state.Login.Username = value
		case FieldPassword:
			c.state.Login.Password = value
		default:
			return fmt.Errorf("unknown login field %q", field)
		}
	case ModeRegister:
		switch field {
		case FieldUsername:
			c.state.Register.Username = value
		case FieldPassword:
			c.state.Register.Password = value
		case FieldConfirmPassword:
			c.state.Register.ConfirmPassword = value
		default:
			return fmt.Errorf("unknown register field %q", field)
		}
	}

	if c.state.Phase == PhaseFailed {
		c.state.Phase = PhaseAnonymousIdle
		c.state.Err = nil
	}
	return nil
}

// SwitchMode toggles between login and registration and resets both forms.
func (c *Controller) SwitchMode() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase == PhaseAuthenticated {
		return
	}

	next := ModeRegister
	if c.state.Mode == ModeRegister {
		next = ModeLogin
	}
	c.state = State{Phase: PhaseAnonymousIdle, Mode: next}
}

// Submit sends the current form.
func (c *Controller) Submit(ctx context.Context) {
	st := c.State()
	if st.Mode == ModeRegister {
		c.SubmitRegistration(ctx, st.Register.Username, st.Register.Password, st.Register.ConfirmPassword)
		return
	}
	c.SubmitLogin(ctx, st.Login.Username, st.Login.Password)
}

// SubmitLogin authenticates with username and password.
func (c *Controller) SubmitLogin(ctx context.Context, username, password string) {
	if username == "" || password == "" {
		c.fail(ModeLogin, gateway.ValidationError(MsgMissingFields))
		return
	}
	c.submit(ctx, ModeLogin, "/auth/login", username, password)
}

// SubmitRegistration creates an account. Mismatched passwords fail without
// contacting the server.
func (c *Controller) SubmitRegistration(ctx context.Context, username, password, confirmPassword string) {
	if password != confirmPassword {
		c.fail(ModeRegister, gateway.ValidationError(MsgPasswordMismatch))
		return
	}
	if username == "" || password == "" {
		c.fail(ModeRegister, gateway.ValidationError(MsgMissingFields))
		return
	}
	c.submit(ctx, ModeRegister, "/auth/register", username, password)
}

type authRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (c *Controller) submit(ctx context.Context, mode Mode, path, username, password string) {
	c.mu.Lock()
	if c.state.Phase == PhaseAuthenticated {
		c.mu.Unlock()
		c.logger.Debug("ignoring submit after authentication", "mode", mode)
		return
	}
	c.state.Phase = PhaseSubmitting
	c.state.Mode = mode
	c.state.Err = nil
	c.mu.Unlock()

	c.logger.Debug("submitting credentials", "mode", mode, "username", username)

	var resp tokenResponse
	err := c.gw.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   authRequest{Username: username, Password: password},
	}, &resp)
	if err != nil {
		c.fail(mode, err)
		return
	}
	if resp.AccessToken == "" {
		c.fail(mode, &gateway.Error{Kind: gateway.KindTransportFailure, Detail: "response missing access_token"})
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("dropping auth response for closed view", "mode", mode)
		return
	}
	c.mu.Unlock()

	cred := credential.Credential{Token: resp.AccessToken, TokenType: resp.TokenType}
	if err := c.creds.Set(cred); err != nil {
		c.fail(mode, fmt.Errorf("storing credential: %w", err))
		return
	}

	c.mu.Lock()
	c.state.Phase = PhaseAuthenticated
	c.state.Mode = mode
	c.state.Err = nil
	c.mu.Unlock()

	c.logger.Info("authenticated", "mode", mode, "username", username)

	c.sched.AfterFunc(c.delay, func() {
		c.nav.Navigate(nav.Location{Path: nav.Root.Path, Hard: true})
	})
}

func (c *Controller) fail(mode Mode, err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Phase = PhaseFailed
	c.state.Mode = mode
	c.state.Err = err
	c.mu.Unlock()

	c.logger.Warn("authentication failed", "mode", mode, "kind", gateway.KindOf(err), "error", err)
}
