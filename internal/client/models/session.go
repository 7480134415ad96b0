package models

// Session pairs the bearer credential with the profile of its holder.
// A zero Session means "nobody is signed in".
type Session struct {
	Credential string      `json:"-"`
	Profile    UserProfile `json:"profile"`
}

// IsZero reports whether s carries no credential.
func (s Session) IsZero() bool {
	return s.Credential == ""
}
