// Package goClient provides an authenticated API client with bearer access tokens,
// transparent single-flight token refresh, and a Redis-mirrored session record.
//
// The package is designed for concurrent callers: Client methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goClient is the public surface. It exposes [Client], [Builder], [Config], and value
// types (SessionInfo, RegisterResult, etc.). Session state is owned by the session
// subpackage; refresh coordination, request authentication, and session termination
// live in this package and are the only writers of session state besides the store's
// own mutation operations.
//
// # What this package must NOT do
//
//   - Decide application navigation. Irrecoverable authentication failure is signaled
//     through the injected [Navigator] and nothing else.
//   - Validate business payloads. Non-authorization remote failures pass through to
//     the caller untouched.
//   - Verify access-token signatures. The client decodes claims for introspection
//     only; verification belongs to the remote server.
//
// # Refresh contract
//
// At most one refresh call is outstanding at any time. Every request that observes
// an authorization failure while a refresh is in flight joins the same waiter queue
// and is replayed exactly once, in the order the failures were observed. A request
// is never retried more than once.
package goClient
