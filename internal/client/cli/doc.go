// Package cli provides the interactive BookNest storefront client.
//
// App drives a read-eval-print loop on top of the session controller and the
// storefront API. Every command runs under its own timeout; when the backend
// rejects the stored credential the gateway's login-required event is
// printed and the prompt falls back to guest mode.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
