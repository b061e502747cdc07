// Package session drives login and registration for itemdesk.
//
// # State machine
//
//	AnonymousIdle --submit--> Submitting --ok--> Authenticated
//	                              |
//	                              +--error--> Failed --field edit--> AnonymousIdle
//
// Registration checks that both passwords match before anything is sent; a
// mismatch goes straight to Failed with a validation error.
//
// On success the returned credential is written to the credential store and
// a hard navigation to the root view is scheduled after a short delay, so the
// success message is visible first. Authenticated is terminal: from then on
// the credential store, not this controller, says whether the user is logged
// in.
//
// SwitchMode toggles between the login and registration forms and resets
// both drafts and any message.
package session
