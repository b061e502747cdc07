// Package credential persists the bearer credential between itemdesk runs.
//
// # Overview
//
// A Credential is the access token and token type returned by the catalog
// service on login or registration. The Store interface holds at most one
// credential: Set overwrites, Get reports presence, Clear removes it.
//
// # Backends
//
//   - MemoryStore: in-process only, used by tests
//   - FileStore: YAML file under the XDG config directory (default)
//   - SQLiteStore: key/value table in a SQLite database (modernc.org/sqlite)
//
// All backends keep the two entries the catalog web client keeps in browser
// storage:
//
//	access_token: eyJhbGciOi...
//	token_type: bearer
//
// Writes are last-write-wins. Nothing is merged between concurrent itemdesk
// processes sharing the same file or database.
//
// # Reading
//
// Get never fails. A backend read error is logged and reported as an absent
// credential, so the gateway simply sends the request without an
// Authorization header.
//
// # Inspection
//
// Inspect decodes the JWT payload of a credential without verifying its
// signature. It is used by the whoami command and never invalidates a
// credential.
package credential
