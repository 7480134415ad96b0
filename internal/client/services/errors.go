package services

import "errors"

var (
	ErrInvalidCredentials          = errors.New("invalid email or password")
	ErrProfileUnavailable          = errors.New("profile unavailable after sign-in")
	ErrAccountCreatedSessionFailed = errors.New("account created but sign-in failed")
	ErrNotAuthenticated            = errors.New("not signed in")
	ErrNotInitialized              = errors.New("session controller not initialized")
	ErrSessionSuperseded           = errors.New("session superseded by logout")
)
