package client

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnavailable means no response was received from the backend.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches any 401 response.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAuthenticationExpired marks a 401 received for a request that
	// carried the session credential; the session has been torn down.
	ErrAuthenticationExpired = errors.New("authentication expired")
)

// StatusError is a non-2xx response from the backend.
type StatusError struct {
	StatusCode int
	Message    string
	// Fields holds per-field validation messages, when the backend sent them.
	Fields map[string][]string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
	}

	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return fmt.Sprintf("status %d: %s (%s)", e.StatusCode, msg, strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
