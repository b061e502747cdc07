// Package gateway sends requests to the catalog service on behalf of the
// itemdesk controllers.
//
// # Overview
//
// Gateway wraps net/http. Every call reads the current credential from the
// credential store and, when one is present, attaches
//
//	Authorization: Bearer <access_token>
//
// whether or not the endpoint requires authentication. Each request also
// carries a fresh X-Request-ID for log correlation.
//
// # Classification
//
// Do returns nil on 2xx and decodes a non-empty body into the caller's value.
// Every other outcome is a *Error:
//
//   - KindSessionExpired: 401 on a request marked Auth
//   - KindRequestFailed: any other non-2xx; Detail comes from the JSON
//     "detail" field when the server sent one, else the status text
//   - KindTransportFailure: the request never produced a usable response
//
// KindValidation is never produced here. It is used by controllers for
// client-side checks that stop a request before it is sent.
//
// A 401 does not clear the stored credential. It stays until a new login
// overwrites it.
//
// # Retries
//
// None. Each call is a single attempt.
//
// # Concurrency
//
// Gateway holds no mutable state and may be shared by all controllers.
package gateway
