package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/booknest/internal/client/client"
	"github.com/dmitrijs2005/booknest/internal/client/models"
	"github.com/dmitrijs2005/booknest/internal/client/store"
	"github.com/dmitrijs2005/booknest/internal/logging"
	"golang.org/x/sync/semaphore"
)

// LoginRequiredNotifier receives the signal emitted when a session is torn
// down because the backend rejected its credential. *client.Gateway
// implements it.
type LoginRequiredNotifier interface {
	NotifyLoginRequired(ctx context.Context, ev client.LoginRequired)
}

type Option func(*SessionController)

func WithLogger(l logging.Logger) Option {
	return func(c *SessionController) { c.log = l }
}

func WithNotifier(n LoginRequiredNotifier) Option {
	return func(c *SessionController) { c.notifier = n }
}

var _ client.SessionSource = (*SessionController)(nil)

// SessionController owns the signed-in session.
//
// Mutations are serialized by a single lock and commit memory and the
// persisted record together. Reads (Current, Credential) never wait for a
// pending mutation; they see the last committed snapshot.
type SessionController struct {
	api      client.AuthAPI
	store    store.SessionStore
	log      logging.Logger
	notifier LoginRequiredNotifier

	sem       *semaphore.Weighted
	snap      atomic.Pointer[Snapshot]
	logoutSeq atomic.Uint64
}

func NewSessionController(api client.AuthAPI, st store.SessionStore, opts ...Option) *SessionController {
	c := &SessionController{
		api:   api,
		store: st,
		log:   logging.Nop(),
		sem:   semaphore.NewWeighted(1),
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "session")
	c.snap.Store(&Snapshot{State: StateUninitialized})
	return c
}

// acquire waits for the mutation lock. Waiters are served in arrival order.
func (c *SessionController) acquire(ctx context.Context) error {
	return c.sem.Acquire(ctx, 1)
}

func (c *SessionController) release() { c.sem.Release(1) }

// Current returns the last committed state.
func (c *SessionController) Current() Snapshot {
	return *c.snap.Load()
}

// Credential returns the committed credential or "" when nobody is signed in.
func (c *SessionController) Credential() string {
	s := c.snap.Load()
	if s.State != StateAuthenticated {
		return ""
	}
	return s.Session.Credential
}

func (c *SessionController) setAnonymous() {
	c.snap.Store(&Snapshot{State: StateAnonymous})
}

func (c *SessionController) setAuthenticated(sess models.Session) {
	c.snap.Store(&Snapshot{State: StateAuthenticated, Session: sess})
}

// Initialize restores the persisted session. Only the first call reads the
// store; later calls return the state it resolved to.
func (c *SessionController) Initialize(ctx context.Context) (State, error) {
	if err := c.acquire(ctx); err != nil {
		return c.Current().State, err
	}
	defer c.release()

	if st := c.Current().State; st != StateUninitialized {
		return st, nil
	}
	// Restoring is a lifecycle phase with no session attached. Readers see
	// no credential until the load resolves to Anonymous or Authenticated.
	c.snap.Store(&Snapshot{State: StateRestoring})

	sess, found, err := c.store.Load(ctx)
	switch {
	case errors.Is(err, store.ErrStorageCorrupted):
		c.log.Warn(ctx, "discarding persisted session", "error", err)
		if perr := c.store.Purge(ctx); perr != nil {
			c.log.Error(ctx, "purge persisted session", "error", perr)
		}
		c.setAnonymous()
	case err != nil:
		c.setAnonymous()
		return StateAnonymous, fmt.Errorf("restore session: %w", err)
	case !found:
		c.setAnonymous()
	default:
		c.setAuthenticated(sess)
		c.log.Info(ctx, "session restored", "email", sess.Profile.Email, "role", sess.Profile.Role)
	}
	return c.Current().State, nil
}

// Login signs in and fetches the profile with the fresh credential. The
// session is committed only when both calls succeed.
func (c *SessionController) Login(ctx context.Context, email, password string) (models.Session, error) {
	seq := c.logoutSeq.Load()
	if err := c.acquire(ctx); err != nil {
		return models.Session{}, err
	}
	defer c.release()

	if c.Current().State == StateUninitialized {
		return models.Session{}, ErrNotInitialized
	}

	sess, err := c.signIn(ctx, email, password)
	if err != nil {
		return models.Session{}, err
	}
	if err := c.commit(ctx, sess, seq); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// Signup creates the account and then signs in with the same credentials.
func (c *SessionController) Signup(ctx context.Context, req models.SignupRequest) (models.Session, error) {
	seq := c.logoutSeq.Load()
	if err := c.acquire(ctx); err != nil {
		return models.Session{}, err
	}
	defer c.release()

	if c.Current().State == StateUninitialized {
		return models.Session{}, ErrNotInitialized
	}

	if _, err := c.api.SignUp(ctx, req); err != nil {
		return models.Session{}, err
	}
	c.log.Info(ctx, "account created", "email", req.Email)

	sess, err := c.signIn(ctx, req.Email, req.Password)
	if err == nil {
		err = c.commit(ctx, sess, seq)
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrAccountCreatedSessionFailed, err)
	}
	return sess, nil
}

func (c *SessionController) signIn(ctx context.Context, email, password string) (models.Session, error) {
	resp, err := c.api.SignIn(ctx, email, password)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			return models.Session{}, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}
		return models.Session{}, fmt.Errorf("sign in: %w", err)
	}
	if resp.JWT == "" {
		return models.Session{}, fmt.Errorf("%w: empty credential in response", ErrInvalidCredentials)
	}

	profile, err := c.api.GetProfile(ctx, resp.JWT)
	if err == nil {
		err = profile.Validate()
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %w", ErrProfileUnavailable, err)
	}
	return models.Session{Credential: resp.JWT, Profile: profile}, nil
}

// commit persists sess and publishes it, unless a logout was requested after
// the mutation started.
func (c *SessionController) commit(ctx context.Context, sess models.Session, seq uint64) error {
	if c.logoutSeq.Load() != seq {
		return ErrSessionSuperseded
	}
	if err := c.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	c.setAuthenticated(sess)
	c.log.Info(ctx, "signed in", "email", sess.Profile.Email, "role", sess.Profile.Role)
	return nil
}

// Logout ends the session locally. It never fails; a purge error is logged.
func (c *SessionController) Logout(ctx context.Context) {
	c.logoutSeq.Add(1)
	ctx = context.WithoutCancel(ctx)
	_ = c.acquire(ctx)
	defer c.release()

	if c.Current().State != StateAuthenticated {
		return
	}
	c.teardown(ctx)
	c.log.Info(ctx, "signed out")
}

// teardown must be called with the lock held.
func (c *SessionController) teardown(ctx context.Context) {
	if err := c.store.Purge(ctx); err != nil {
		c.log.Error(ctx, "purge persisted session", "error", err)
	}
	c.setAnonymous()
}

// UpdateProfile sends upd and replaces the stored profile with the server's
// representation.
func (c *SessionController) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (models.UserProfile, error) {
	if err := c.acquire(ctx); err != nil {
		return models.UserProfile{}, err
	}
	defer c.release()

	cur := c.Current()
	switch cur.State {
	case StateUninitialized:
		return models.UserProfile{}, ErrNotInitialized
	case StateAuthenticated:
	default:
		return models.UserProfile{}, ErrNotAuthenticated
	}
	cred := cur.Session.Credential

	profile, err := c.api.UpdateProfile(ctx, cred, upd)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			c.teardown(context.WithoutCancel(ctx))
			c.notify(ctx, err)
			return models.UserProfile{}, fmt.Errorf("%w: %w", client.ErrAuthenticationExpired, err)
		}
		return models.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}
	if err := profile.Validate(); err != nil {
		return models.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}

	sess := models.Session{Credential: cred, Profile: profile}
	if err := c.store.Save(ctx, sess); err != nil {
		return models.UserProfile{}, fmt.Errorf("persist profile: %w", err)
	}
	c.setAuthenticated(sess)
	return profile, nil
}

// Expire tears the session down if it still holds credential. Concurrent
// calls for the same credential collapse into one teardown; only that call
// returns true.
func (c *SessionController) Expire(ctx context.Context, credential string) bool {
	if credential == "" || c.Credential() != credential {
		return false
	}
	if err := c.acquire(ctx); err != nil {
		return false
	}
	defer c.release()

	if c.Credential() != credential {
		return false
	}
	c.teardown(ctx)
	c.log.Warn(ctx, "session expired")
	return true
}

func (c *SessionController) notify(ctx context.Context, reason error) {
	if c.notifier == nil {
		return
	}
	c.notifier.NotifyLoginRequired(ctx, client.LoginRequired{Reason: reason, At: time.Now()})
}
