// Package services holds the client-side session controller: the single
// owner of the signed-in session, its persistence and its teardown.
package services
