// ABOUTME: Resource list controller: loads the first page of items and creates new ones
// ABOUTME: A created item is taken from the server response and prepended to the list

// Package listview holds the state machine behind the item list view.
//
// Load replaces the items wholesale with the first MaxItems entries the
// server returns, in server order. Create prepends the server's copy of the
// new item to whatever list is current when the response arrives, without
// re-applying the MaxItems cap. Concurrent loads are not deduplicated; the
// last one to complete wins.
package listview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/2389/itemdesk/internal/catalog"
	"github.com/2389/itemdesk/internal/gateway"
	"github.com/2389/itemdesk/internal/nav"
)

// MaxItems is how many items of the server's list are kept.
const MaxItems = 10

// Phase is the load state of the list.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "loading"
	}
}

// Form is the creation form.
type Form struct {
	Open       bool
	Draft      catalog.Draft
	Submitting bool
	Err        error
}

// State is a snapshot of the list view.
type State struct {
	Items []catalog.Resource
	Phase Phase
	Err   error // load failure, set when Phase is PhaseError
	Form  Form
}

// API is the subset of catalog.Client the list needs.
type API interface {
	List(ctx context.Context) ([]catalog.Resource, error)
	Create(ctx context.Context, p catalog.Payload) (catalog.Resource, error)
}

// Controller owns the list view state.
type Controller struct {
	api    API
	nav    nav.Navigator
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	closed bool
}

// New creates a controller in the loading phase.
func New(api API, navigator nav.Navigator, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		api:    api,
		nav:    navigator,
		logger: logger.With("component", "listview"),
	}
}

// State returns a deep copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	st.Items = catalog.CloneAll(c.state.Items)
	return st
}

// Close marks the view as unmounted; later responses are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Load fetches the list. On failure no items are kept.
func (c *Controller) Load(ctx context.Context) {
	c.mu.Lock()
	c.state.Phase = PhaseLoading
	c.state.Err = nil
	c.mu.Unlock()

	items, err := c.api.List(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if err != nil {
		c.state.Phase = PhaseError
		c.state.Err = err
		c.state.Items = nil
		c.mu.Unlock()
		c.logger.Warn("loading items failed", "kind", gateway.KindOf(err), "error", err)
		return
	}
	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	c.state.Items = catalog.CloneAll(items)
	c.state.Phase = PhaseReady
	n := len(c.state.Items)
	c.mu.Unlock()

	c.logger.Debug("items loaded", "count", n)
}

// OpenForm shows the creation form.
func (c *Controller) OpenForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.Open = true
}

// CloseForm hides the creation form, keeping its draft.
func (c *Controller) CloseForm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Form.Open = false
}

// UpdateField edits the creation draft.
func (c *Controller) UpdateField(field catalog.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Form.Draft.Set(field, value)
}

// SubmitForm creates an item from the current creation draft.
func (c *Controller) SubmitForm(ctx context.Context) {
	c.mu.Lock()
	draft := c.state.Form.Draft
	c.mu.Unlock()
	c.Create(ctx, draft)
}

// Create posts draft. On success the server's item is placed first and the
// form is cleared and closed; on failure the items are untouched.
func (c *Controller) Create(ctx context.Context, draft catalog.Draft) {
	c.mu.Lock()
	c.state.Form.Submitting = true
	c.state.Form.Err = nil
	c.mu.Unlock()

	created, err := c.api.Create(ctx, catalog.CreatePayload(draft))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Form.Submitting = false
	if err != nil {
		c.state.Form.Err = err
		c.mu.Unlock()

		c.logger.Warn("creating item failed", "kind", gateway.KindOf(err), "error", err)
		if gateway.IsSessionExpired(err) {
			c.nav.Navigate(nav.Auth)
		}
		return
	}

	items := make([]catalog.Resource, 0, len(c.state.Items)+1)
	items = append(items, created.Clone())
	items = append(items, c.state.Items...)
	c.state.Items = items
	c.state.Form = Form{}
	c.mu.Unlock()

	c.logger.Debug("item created", "id", created.ID)
}
