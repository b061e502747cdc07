// ABOUTME: Navigation port that controllers use to request a view change
// ABOUTME: The REPL router implements it; tests use Recorder to assert navigations

// Package nav defines the navigation capability handed to controllers.
package nav

import (
	"strings"
	"sync"
)

// Location is a navigation target.
type Location struct {
	Path string
	// Hard requests a full reload: the current view and any unsaved state are dropped.
	Hard bool
}

// Well-known locations.
var (
	Root = Location{Path: "/"}
	Auth = Location{Path: "/auth", Hard: true}
)

// Item returns the location of the detail view for id.
func Item(id string) Location {
	return Location{Path: "/" + id}
}

// ItemID returns the id encoded in a detail location, or "" if loc is not one.
func ItemID(loc Location) string {
	id := strings.TrimPrefix(loc.Path, "/")
	if id == "" || id == "auth" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// Navigator performs navigation on behalf of a controller.
type Navigator interface {
	Navigate(to Location)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(to Location)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(to Location) {
	f(to)
}

// Recorder is a Navigator that records every request. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	calls []Location
}

// Navigate implements Navigator.
func (r *Recorder) Navigate(to Location) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, to)
}

// Calls returns a copy of the recorded navigations.
func (r *Recorder) Calls() []Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Location, len(r.calls))
	copy(out, r.calls)
	return out
}

// Last returns the most recent navigation and whether there was one.
func (r *Recorder) Last() (Location, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Location{}, false
	}
	return r.calls[len(r.calls)-1], true
}
