// Package view is the presentation boundary of itemdesk.
//
// Controllers keep typed errors in their state; this package turns them
// into the messages a user sees, renders each view to a terminal, and
// exports the item list as an HTML page.
package view
