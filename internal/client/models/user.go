// Package models defines the data exchanged with the storefront backend and
// the session value kept by the client.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role is the account role. The backend knows exactly two.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

var ErrIncompleteProfile = errors.New("incomplete user profile")

// UserProfile is the server's representation of the signed-in account.
// Timestamps and the birth date are kept as the server formats them.
type UserProfile struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	DOB       string `json:"dob,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// UnmarshalJSON accepts the role under either "role" or "userRole"; the
// profile endpoints use the latter.
func (p *UserProfile) UnmarshalJSON(b []byte) error {
	type plain UserProfile
	aux := struct {
		*plain
		UserRole Role `json:"userRole"`
	}{plain: (*plain)(p)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.Role == "" {
		p.Role = aux.UserRole
	}
	return nil
}

// Validate checks the fields a session cannot do without.
func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return fmt.Errorf("%w: email is empty", ErrIncompleteProfile)
	}
	if !p.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrIncompleteProfile, p.Role)
	}
	return nil
}

// FullName joins first and last name.
func (p UserProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfileUpdate carries the fields a user wants to change. Nil fields are
// omitted from the request; the server answers with the complete profile.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	DOB       *string `json:"dob,omitempty"`
	Role      *Role   `json:"userRole,omitempty"`
}

// IsEmpty reports whether no field is set.
func (u ProfileUpdate) IsEmpty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.Password == nil &&
		u.Phone == nil && u.Address == nil && u.DOB == nil && u.Role == nil
}

// SignInRequest is the body of the sign-in call.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is what sign-in returns: a message and the credential.
type SignInResponse struct {
	Message string `json:"message"`
	JWT     string `json:"jwt"`
}

// SignupRequest is the account-creation payload.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UserRole  Role   `json:"userRole"`
	DOB       string `json:"dob,omitempty"`
}

// AccountSummary is returned by sign-up. It carries no credential.
type AccountSummary struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	DOB       string `json:"dob,omitempty"`
	UserRole  Role   `json:"userRole"`
}
