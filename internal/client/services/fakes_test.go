package services

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/booknest/internal/client/client"
	"github.com/dmitrijs2005/booknest/internal/client/models"
)

// fakeAPI implements client.AuthAPI with overridable hooks.
type fakeAPI struct {
	mu sync.Mutex

	signIn        func(ctx context.Context, email, password string) (models.SignInResponse, error)
	signUp        func(ctx context.Context, req models.SignupRequest) (models.AccountSummary, error)
	getProfile    func(ctx context.Context, credential string) (models.UserProfile, error)
	updateProfile func(ctx context.Context, credential string, upd models.ProfileUpdate) (models.UserProfile, error)

	signInCalls  int
	signUpCalls  int
	profileCreds []string
	updateCreds  []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		signIn: func(_ context.Context, email, _ string) (models.SignInResponse, error) {
			return models.SignInResponse{Message: "Successful login!", JWT: "jwt-" + email}, nil
		},
		signUp: func(_ context.Context, req models.SignupRequest) (models.AccountSummary, error) {
			return models.AccountSummary{ID: 1, Email: req.Email, UserRole: req.UserRole}, nil
		},
		getProfile: func(_ context.Context, _ string) (models.UserProfile, error) {
			return annProfile(), nil
		},
		updateProfile: func(_ context.Context, _ string, _ models.ProfileUpdate) (models.UserProfile, error) {
			return annProfile(), nil
		},
	}
}

func (f *fakeAPI) SignIn(ctx context.Context, email, password string) (models.SignInResponse, error) {
	f.mu.Lock()
	f.signInCalls++
	fn := f.signIn
	f.mu.Unlock()
	return fn(ctx, email, password)
}

func (f *fakeAPI) SignUp(ctx context.Context, req models.SignupRequest) (models.AccountSummary, error) {
	f.mu.Lock()
	f.signUpCalls++
	fn := f.signUp
	f.mu.Unlock()
	return fn(ctx, req)
}

func (f *fakeAPI) GetProfile(ctx context.Context, credential string) (models.UserProfile, error) {
	f.mu.Lock()
	f.profileCreds = append(f.profileCreds, credential)
	fn := f.getProfile
	f.mu.Unlock()
	return fn(ctx, credential)
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, credential string, upd models.ProfileUpdate) (models.UserProfile, error) {
	f.mu.Lock()
	f.updateCreds = append(f.updateCreds, credential)
	fn := f.updateProfile
	f.mu.Unlock()
	return fn(ctx, credential, upd)
}

var _ client.AuthAPI = (*fakeAPI)(nil)

// fakeStore is an in-memory SessionStore that counts every access.
type fakeStore struct {
	mu sync.Mutex

	sess  models.Session
	found bool

	loadErr  error
	saveErr  error
	purgeErr error

	loads  int
	saves  int
	purges int

	// onLoad runs before Load reads the record.
	onLoad func()
}

func (s *fakeStore) Load(context.Context) (models.Session, bool, error) {
	if s.onLoad != nil {
		s.onLoad()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return models.Session{}, false, s.loadErr
	}
	return s.sess, s.found, nil
}

func (s *fakeStore) Save(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sess, s.found = sess, true
	return nil
}

func (s *fakeStore) Purge(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purges++
	s.sess, s.found = models.Session{}, false
	return s.purgeErr
}

func (s *fakeStore) snapshot() (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess, s.found
}

func (s *fakeStore) counts() (loads, saves, purges int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads, s.saves, s.purges
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []client.LoginRequired
}

func (n *fakeNotifier) NotifyLoginRequired(_ context.Context, ev client.LoginRequired) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}

func annProfile() models.UserProfile {
	return models.UserProfile{
		ID: 7, FirstName: "Ann", LastName: "Leeson", Email: "ann@example.com", Role: models.RoleUser,
		Address: "1 Main st",
	}
}

func annSession() models.Session {
	return models.Session{Credential: "stored-jwt", Profile: annProfile()}
}

var errBoom = errors.New("boom")

func unauthorized() error {
	return &client.StatusError{StatusCode: 401, Message: "Unauthorized"}
}
