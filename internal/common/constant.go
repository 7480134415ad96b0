// Package common contains constants and tiny helpers shared across the
// BookNest client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerPrefix precedes the credential in the Authorization header.
	BearerPrefix = "Bearer "

	// RequestIDHeaderName carries a per-request correlation id.
	RequestIDHeaderName = "X-Request-ID"

	// DefaultAPIBaseURL is where the storefront backend listens by default.
	DefaultAPIBaseURL = "http://localhost:8081/api"
)
