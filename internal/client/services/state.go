package services

import "github.com/dmitrijs2005/booknest/internal/client/models"

// State is the lifecycle phase of the session controller.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the last committed session state.
type Snapshot struct {
	State   State
	Session models.Session
}

// Authenticated reports whether the snapshot holds a signed-in session.
func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}

// Profile returns the signed-in user's profile, if any.
func (s Snapshot) Profile() (models.UserProfile, bool) {
	if !s.Authenticated() {
		return models.UserProfile{}, false
	}
	return s.Session.Profile, true
}
