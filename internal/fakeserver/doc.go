// Package fakeserver is an in-memory stand-in for the catalog service, used
// by itemdesk tests and by cmd/fake-catalog for local development.
//
// # Endpoints
//
//	GET    /api/           list items (anonymous)
//	POST   /api/           create item (bearer)
//	GET    /api/{id}       fetch item (bearer)
//	PUT    /api/{id}       replace item fields (bearer)
//	DELETE /api/{id}       delete item (bearer, 204)
//	POST   /auth/register  create user, returns a token (201)
//	POST   /auth/login     returns a token
//
// Errors use the {"detail": ...} body of the real service. Validation
// failures return 422 with a list of {loc, msg, type} objects.
//
// # Tokens
//
// Access tokens are HS256 JWTs with sub, iat and exp claims. Passwords are
// stored as bcrypt hashes.
//
// # Admin
//
//	POST /admin/reset   drop all items and users
//	GET  /admin/state   dump items and usernames
//	POST /admin/items   insert items verbatim (seeding)
//
// Fault injection: SetFault makes the next matching request fail with the
// given status, which tests use to exercise error paths.
package fakeserver
