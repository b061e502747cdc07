// ABOUTME: Resource detail controller: load, view/edit mode, save, and confirmed delete
// ABOUTME: The draft is decoupled from the resource until a save commits it

// Package detailview holds the state machine behind the single-item view.
//
//	Loading --ok--> Ready(View) <--cancel/save ok-- Ready(Edit)
//	   |                 |--enter edit------------------^
//	   +--error--> Error
//
// A failed save keeps the view in Edit with the draft untouched. A failed
// delete keeps the resource on screen. A 401 on any call hands the user to
// the auth view with a hard navigation.
package detailview

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/2389/itemdesk/internal/catalog"
	"github.com/2389/itemdesk/internal/gateway"
	"github.com/2389/itemdesk/internal/nav"
)

// DeletePrompt is the question put to the Confirmer before deleting.
const DeletePrompt = "Are you sure you want to delete this item?"

// ErrNotLoaded is returned by edit, save and delete unless a resource is
// loaded and the view is ready. A failed reload keeps the old resource for
// reference but blocks writes until a load succeeds.
var ErrNotLoaded = errors.New("item not loaded")

// Phase is the load state of the view.
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

// Mode is whether the resource is shown or being edited.
type Mode int

const (
	ModeView Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "view"
}

// Action names the last write attempted from the view.
type Action int

const (
	ActionNone Action = iota
	ActionSave
	ActionDelete
)

// State is a snapshot of the detail view.
type State struct {
	ID       string
	Resource *catalog.Resource
	Phase    Phase
	Err      error // load failure, set when Phase is PhaseError
	Mode     Mode
	Draft    catalog.Draft
	// ActionErr is the last save or delete failure; Action says which.
	ActionErr error
	Action    Action
	Saving    bool
	Deleting  bool
}

// API is the subset of catalog.Client the detail view needs.
type API interface {
	Get(ctx context.Context, id string) (catalog.Resource, error)
	Update(ctx context.Context, id string, p catalog.Payload) (catalog.Resource, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// Controller owns the detail view state.
type Controller struct {
	api    API
	nav    nav.Navigator
	logger *slog.Logger

	mu     sync.Mutex
	state  State
	gen    uint64 // bumped by each Load; stale responses are dropped
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
		logger: logger.With("component", "detailview"),
	}
}

// State returns a deep copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.state
	if st.Resource != nil {
		r := st.Resource.Clone()
		st.Resource = &r
	}
	return st
}

// Close marks the view as unmounted; later responses are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Load fetches the resource with the given id.
func (c *Controller) Load(ctx context.Context, id string) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state.ID = id
	c.state.Phase = PhaseLoading
	c.state.Err = nil
	c.state.ActionErr = nil
	c.mu.Unlock()

	r, err := c.api.Get(ctx, id)

	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("dropping stale load response", "id", id)
		return
	}
	if err != nil {
		c.state.Phase = PhaseError
		c.state.Err = err
		expired := gateway.IsSessionExpired(err)
		if expired {
			c.state.Mode = ModeView
			c.state.Draft = catalog.Draft{}
		}
		c.mu.Unlock()

		c.logger.Warn("loading item failed", "id", id, "kind", gateway.KindOf(err), "error", err)
		if expired {
			c.nav.Navigate(nav.Auth)
		}
		return
	}

	loaded := r.Clone()
	c.state.Resource = &loaded
	c.state.Draft = catalog.DraftFrom(loaded)
	c.state.Mode = ModeView
	c.state.Phase = PhaseReady
	c.mu.Unlock()

	c.logger.Debug("item loaded", "id", id)
}

// Retry reloads the current id.
func (c *Controller) Retry(ctx context.Context) {
	c.mu.Lock()
	id := c.state.ID
	c.mu.Unlock()
	c.Load(ctx, id)
}

// EnterEdit re-seeds the draft from the resource, dropping unsaved edits,
// and switches to edit mode.
func (c *Controller) EnterEdit() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.readyLocked() {
		return ErrNotLoaded
	}
	c.state.Draft = catalog.DraftFrom(*c.state.Resource)
	c.state.Mode = ModeEdit
	c.state.ActionErr = nil
	return nil
}

// CancelEdit returns to view mode. The draft is neither saved nor reverted.
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mode = ModeView
}

// UpdateField edits the draft.
func (c *Controller) UpdateField(field catalog.Field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Draft.Set(field, value)
}

// Save sends the draft as of this call. On success the server's copy
// replaces the resource and the view returns to view mode; on failure the
// mode and draft are left alone.
func (c *Controller) Save(ctx context.Context) {
	c.mu.Lock()
	if !c.readyLocked() {
		c.state.Action = ActionSave
		c.state.ActionErr = ErrNotLoaded
		c.mu.Unlock()
		return
	}
	id := c.state.ID
	draft := c.state.Draft
	c.state.Saving = true
	c.state.Action = ActionSave
	c.state.ActionErr = nil
	c.mu.Unlock()

	updated, err := c.api.Update(ctx, id, catalog.UpdatePayload(draft))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Saving = false
	if err != nil {
		c.state.ActionErr = err
		c.mu.Unlock()

		c.logger.Warn("saving item failed", "id", id, "kind", gateway.KindOf(err), "error", err)
		if gateway.IsSessionExpired(err) {
			c.nav.Navigate(nav.Auth)
		}
		return
	}

	r := updated.Clone()
	c.state.Resource = &r
	c.state.Mode = ModeView
	c.mu.Unlock()

	c.logger.Debug("item saved", "id", id)
}

// Delete asks confirm and, only on a yes, deletes the resource. Success
// navigates to the list.
func (c *Controller) Delete(ctx context.Context, confirm Confirmer) {
	if !c.requireReady(ActionDelete) {
		return
	}
	if confirm == nil || !confirm.Confirm(DeletePrompt) {
		return
	}

	c.mu.Lock()
	if !c.readyLocked() {
		c.state.Action = ActionDelete
		c.state.ActionErr = ErrNotLoaded
		c.mu.Unlock()
		return
	}
	id := c.state.ID
	c.state.Deleting = true
	c.state.Action = ActionDelete
	c.state.ActionErr = nil
	c.mu.Unlock()

	err := c.api.Delete(ctx, id)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Deleting = false
	if err != nil {
		c.state.ActionErr = err
		c.mu.Unlock()

		c.logger.Warn("deleting item failed", "id", id, "kind", gateway.KindOf(err), "error", err)
		if gateway.IsSessionExpired(err) {
			c.nav.Navigate(nav.Auth)
		}
		return
	}
	c.mu.Unlock()

	c.logger.Info("item deleted", "id", id)
	c.nav.Navigate(nav.Root)
}

// readyLocked reports whether writes are allowed. Caller must hold c.mu.
func (c *Controller) readyLocked() bool {
	return c.state.Phase == PhaseReady && c.state.Resource != nil
}

// requireReady records ErrNotLoaded for action when the view is not ready.
func (c *Controller) requireReady(action Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readyLocked() {
		return true
	}
	c.state.Action = action
	c.state.ActionErr = ErrNotLoaded
	return false
}
