package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/booknest/internal/client/models"
	"github.com/dmitrijs2005/booknest/internal/client/services"
	"github.com/dmitrijs2005/booknest/internal/common"
)

// getSimpleText, getPassword and getOptional are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getOptional   = GetOptional
	getMultiline  = GetMultiline
)

var errLoginRequired = errors.New("login required")

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		return errLoginRequired
	}
	return nil
}

// Register prompts for account details, creates the account and signs in.
func (a *App) Register(ctx context.Context) error {
	var req models.SignupRequest
	var err error

	if req.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if req.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if req.DOB, err = getSimpleText(a.reader, "Date of birth (YYYY-MM-DD, optional)", a.out); err != nil {
		return err
	}
	role, err := getSimpleText(a.reader, "Role (USER or ADMIN) [USER]", a.out)
	if err != nil {
		return err
	}
	req.UserRole = models.RoleUser
	if role != "" {
		req.UserRole = models.Role(strings.ToUpper(role))
		if !req.UserRole.Valid() {
			return fmt.Errorf("unknown role %q", role)
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	sess, err := a.session.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", sess.Profile.FullName())
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	sess, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		return err
	}
	a.log.Info(ctx, "logged in", "email", sess.Profile.Email)
	fmt.Fprintf(a.out, "Logged in as %s\n", sess.Profile.Email)
	return nil
}

// Logout ends the session. It never fails.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// WhoAmI prints the signed-in user and what the credential says about itself.
func (a *App) WhoAmI(_ context.Context) error {
	snap := a.session.Current()
	p, ok := snap.Profile()
	if !ok {
		fmt.Fprintln(a.out, "guest")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> %s\n", p.FullName(), p.Email, p.Role)

	info, err := services.DescribeCredential(snap.Session.Credential)
	if err != nil {
		// Opaque credentials are legal; there is just nothing more to show.
		return nil
	}
	if !info.ExpiresAt.IsZero() {
		state := "valid until"
		if info.Expired(time.Now()) {
			state = "expired at"
		}
		fmt.Fprintf(a.out, "credential %s %s\n", state, info.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

// Profile prints the cached profile of the signed-in user.
func (a *App) Profile(_ context.Context) error {
	p, ok := a.session.Current().Profile()
	if !ok {
		return errLoginRequired
	}
	printProfile(a.out, p)
	return nil
}

// EditProfile prompts for new values; empty answers keep the current ones.
func (a *App) EditProfile(ctx context.Context) error {
	p, ok := a.session.Current().Profile()
	if !ok {
		return errLoginRequired
	}

	var upd models.ProfileUpdate
	fields := []struct {
		prompt  string
		current string
		dst     **string
	}{
		{"First name", p.FirstName, &upd.FirstName},
		{"Last name", p.LastName, &upd.LastName},
		{"Phone", p.Phone, &upd.Phone},
		{"Address", p.Address, &upd.Address},
		{"Date of birth", p.DOB, &upd.DOB},
	}
	for _, f := range fields {
		v, err := getOptional(a.reader, f.prompt, f.current, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if upd.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	ctx, cancel := a.commandContext(ctx)
	defer cancel()

	updated, err := a.session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	printProfile(a.out, updated)
	return nil
}
