// Package client is the BookNest client's transport layer.
//
// # Overview
//
//  1. Gateway is the single choke point for every HTTP call to the
//     storefront backend. It attaches the current session credential, tags
//     requests with a request id and trace context, decodes JSON, and turns
//     non-2xx answers into *StatusError values.
//  2. RESTClient maps the backend's endpoints (sign-in, sign-up, profile,
//     books, categories, cart, orders, reviews, uploads) onto typed Go calls,
//     all of them routed through a Gateway.
//
// # Sessions
//
// The Gateway does not own the session. It reads the credential through a
// SessionSource bound after construction and, when a request sent with that
// credential comes back 401, asks the source to expire it. Only the caller
// that actually tore the session down causes a LoginRequired event, so any
// number of concurrent rejections produce one event per session.
//
// Calls that name their credential explicitly (WithCredential,
// WithoutCredential) bypass the SessionSource entirely and never expire
// anything; the session controller uses them for its own requests.
//
// # Error Handling
//
// Errors match, via errors.Is: ErrUnavailable (no response),
// ErrUnauthorized (any 401) and ErrAuthenticationExpired (401 on a
// session-bound request). The original *StatusError is always reachable with
// errors.As.
package client
