package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/booknest/internal/client/client"
	"github.com/dmitrijs2005/booknest/internal/client/models"
	"github.com/dmitrijs2005/booknest/internal/client/services"
	"github.com/dmitrijs2005/booknest/internal/logging"
)

// Session is the subset of the session controller the CLI drives.
type Session interface {
	Current() services.Snapshot
	Login(ctx context.Context, email, password string) (models.Session, error)
	Signup(ctx context.Context, req models.SignupRequest) (models.Session, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.UserProfile, error)
}

type App struct {
	session Session
	api     client.StorefrontAPI
	log     logging.Logger
	reader  *bufio.Reader
	out     io.Writer
	timeout time.Duration
}

type Option func(*App)

func WithInput(r io.Reader) Option {
	return func(a *App) { a.reader = bufio.NewReader(r) }
}

func WithOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

func WithLogger(l logging.Logger) Option {
	return func(a *App) { a.log = l }
}

// WithTimeout bounds every command. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *App) { a.timeout = d }
}

func NewApp(session Session, api client.StorefrontAPI, opts ...Option) *App {
	a := &App{
		session: session,
		api:     api,
		log:     logging.Nop(),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Run prints the banner and serves commands until EOF or "exit".
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to BookNest (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// OnLoginRequired is subscribed to the gateway's login-required events.
func (a *App) OnLoginRequired(ev client.LoginRequired) {
	fmt.Fprintln(a.out, "Your session has expired, please log in again.")
	a.log.Debug(context.Background(), "login required", "reason", ev.Reason, "at", ev.At)
}

func (a *App) isLoggedIn() bool {
	return a.session.Current().Authenticated()
}

func (a *App) isAdmin() bool {
	p, ok := a.session.Current().Profile()
	return ok && p.Role == models.RoleAdmin
}

func (a *App) status() string {
	p, ok := a.session.Current().Profile()
	if !ok {
		return "guest"
	}
	return fmt.Sprintf("%s %s", p.Email, strings.ToLower(string(p.Role)))
}

func (a *App) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

// describeError turns a command failure into a line for the user.
func describeError(err error) string {
	var se *client.StatusError
	switch {
	case errors.Is(err, services.ErrAccountCreatedSessionFailed):
		return "account created, but signing in failed; try 'login'"
	case errors.Is(err, services.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, errLoginRequired):
		return "please log in first"
	case errors.Is(err, client.ErrAuthenticationExpired):
		return "session expired"
	case errors.Is(err, client.ErrUnavailable):
		return "storefront is unreachable, try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &se):
		return se.Error()
	default:
		return err.Error()
	}
}
