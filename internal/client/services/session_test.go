package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/booknest/internal/client/client"
	"github.com/dmitrijs2005/booknest/internal/client/models"
	"github.com/dmitrijs2005/booknest/internal/client/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController(t *testing.T, api *fakeAPI, st *fakeStore) (*SessionController, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	return NewSessionController(api, st, WithNotifier(n)), n
}

func initialized(t *testing.T, api *fakeAPI, st *fakeStore) (*SessionController, *fakeNotifier) {
	t.Helper()
	c, n := newController(t, api, st)
	_, err := c.Initialize(context.Background())
	require.NoError(t, err)
	return c, n
}

func TestInitialize_EmptyStoreIsAnonymous(t *testing.T) {
	st := &fakeStore{}
	c, _ := newController(t, newFakeAPI(), st)

	assert.Equal(t, StateUninitialized, c.Current().State)

	state, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, state)
	assert.Empty(t, c.Credential())
}

func TestInitialize_RestoresPersistedSession(t *testing.T) {
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := newController(t, newFakeAPI(), st)

	state, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, state)
	assert.Equal(t, "stored-jwt", c.Credential())

	p, ok := c.Current().Profile()
	require.True(t, ok)
	if diff := cmp.Diff(annProfile(), p); diff != "" {
		t.Errorf("restored profile mismatch (-want +got):\n%s", diff)
	}
}

func TestInitialize_RestoringExposesNoSession(t *testing.T) {
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := newController(t, newFakeAPI(), st)

	var during Snapshot
	var cred string
	st.onLoad = func() {
		during = c.Current()
		cred = c.Credential()
	}

	state, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, state)

	assert.Equal(t, StateRestoring, during.State)
	assert.False(t, during.Authenticated())
	assert.Equal(t, models.Session{}, during.Session)
	assert.Empty(t, cred)
}

func TestInitialize_IsIdempotent(t *testing.T) {
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := newController(t, newFakeAPI(), st)
	ctx := context.Background()

	first, err := c.Initialize(ctx)
	require.NoError(t, err)
	second, err := c.Initialize(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	loads, saves, purges := st.counts()
	assert.Equal(t, 1, loads)
	assert.Zero(t, saves)
	assert.Zero(t, purges)
}

func TestInitialize_CorruptedRecordIsPurged(t *testing.T) {
	st := &fakeStore{loadErr: fmt.Errorf("%w: user entry is not JSON", store.ErrStorageCorrupted)}
	c, _ := newController(t, newFakeAPI(), st)

	state, err := c.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, state)

	_, _, purges := st.counts()
	assert.Equal(t, 1, purges)
}

func TestInitialize_StorageFailureLeavesAnonymous(t *testing.T) {
	st := &fakeStore{loadErr: errBoom}
	c, _ := newController(t, newFakeAPI(), st)

	state, err := c.Initialize(context.Background())
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, StateAnonymous, state)

	_, _, purges := st.counts()
	assert.Zero(t, purges)
}

func TestLogin_BeforeInitialize(t *testing.T) {
	c, _ := newController(t, newFakeAPI(), &fakeStore{})

	_, err := c.Login(context.Background(), "ann@example.com", "pw")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestLogin_CommitsSession(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	c, _ := initialized(t, api, st)

	sess, err := c.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, "jwt-ann@example.com", sess.Credential)
	assert.Equal(t, []string{"jwt-ann@example.com"}, api.profileCreds, "profile must be fetched with the fresh credential")
	assert.Equal(t, StateAuthenticated, c.Current().State)
	assert.Equal(t, sess.Credential, c.Credential())

	persisted, found := st.snapshot()
	require.True(t, found)
	assert.Equal(t, sess, persisted)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(api *fakeAPI, st *fakeStore)
		wantErr error
	}{
		{
			name: "rejected credentials",
			mutate: func(api *fakeAPI, _ *fakeStore) {
				api.signIn = func(context.Context, string, string) (models.SignInResponse, error) {
					return models.SignInResponse{}, unauthorized()
				}
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "no credential in response",
			mutate: func(api *fakeAPI, _ *fakeStore) {
				api.signIn = func(context.Context, string, string) (models.SignInResponse, error) {
					return models.SignInResponse{Message: "ok"}, nil
				}
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name: "backend unreachable",
			mutate: func(api *fakeAPI, _ *fakeStore) {
				api.signIn = func(context.Context, string, string) (models.SignInResponse, error) {
					return models.SignInResponse{}, client.ErrUnavailable
				}
			},
			wantErr: client.ErrUnavailable,
		},
		{
			name: "profile fetch fails",
			mutate: func(api *fakeAPI, _ *fakeStore) {
				api.getProfile = func(context.Context, string) (models.UserProfile, error) {
					return models.UserProfile{}, &client.StatusError{StatusCode: 500, Message: "db down"}
				}
			},
			wantErr: ErrProfileUnavailable,
		},
		{
			name: "profile incomplete",
			mutate: func(api *fakeAPI, _ *fakeStore) {
				api.getProfile = func(context.Context, string) (models.UserProfile, error) {
					return models.UserProfile{FirstName: "Ann", Role: models.RoleUser}, nil
				}
			},
			wantErr: ErrProfileUnavailable,
		},
		{
			name:    "persisting fails",
			mutate:  func(_ *fakeAPI, st *fakeStore) { st.saveErr = errBoom },
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			st := &fakeStore{}
			tt.mutate(api, st)
			c, _ := initialized(t, api, st)

			_, err := c.Login(context.Background(), "ann@example.com", "pw")
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, StateAnonymous, c.Current().State)
			assert.Empty(t, c.Credential())
			_, found := st.snapshot()
			assert.False(t, found, "no credential may be persisted")
		})
	}
}

func TestLogin_ProfileFailureKeepsPriorSession(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := initialized(t, api, st)

	api.getProfile = func(context.Context, string) (models.UserProfile, error) {
		return models.UserProfile{}, client.ErrUnavailable
	}
	_, err := c.Login(context.Background(), "bob@example.com", "pw")
	require.ErrorIs(t, err, ErrProfileUnavailable)

	assert.Equal(t, "stored-jwt", c.Credential())
	persisted, _ := st.snapshot()
	assert.Equal(t, annSession(), persisted)
}

func TestSignup(t *testing.T) {
	req := models.SignupRequest{
		FirstName: "Ann", LastName: "Leeson", Email: "ann@example.com", Password: "pw", UserRole: models.RoleUser,
	}

	t.Run("creates account and signs in", func(t *testing.T) {
		api := newFakeAPI()
		c, _ := initialized(t, api, &fakeStore{})

		sess, err := c.Signup(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "jwt-ann@example.com", sess.Credential)
		assert.Equal(t, 1, api.signUpCalls)
		assert.Equal(t, 1, api.signInCalls)
		assert.True(t, c.Current().Authenticated())
	})

	t.Run("creation failure is returned as is", func(t *testing.T) {
		api := newFakeAPI()
		api.signUp = func(context.Context, models.SignupRequest) (models.AccountSummary, error) {
			return models.AccountSummary{}, &client.StatusError{
				StatusCode: 400,
				Fields:     map[string][]string{"email": {"must be a well-formed email address"}},
			}
		}
		c, _ := initialized(t, api, &fakeStore{})

		_, err := c.Signup(context.Background(), req)
		var se *client.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, []string{"must be a well-formed email address"}, se.Fields["email"])
		assert.NotErrorIs(t, err, ErrAccountCreatedSessionFailed)
		assert.Zero(t, api.signInCalls)
	})

	t.Run("login after creation fails", func(t *testing.T) {
		api := newFakeAPI()
		api.signIn = func(context.Context, string, string) (models.SignInResponse, error) {
			return models.SignInResponse{}, unauthorized()
		}
		c, _ := initialized(t, api, &fakeStore{})

		_, err := c.Signup(context.Background(), req)
		require.ErrorIs(t, err, ErrAccountCreatedSessionFailed)
		require.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, StateAnonymous, c.Current().State)
	})
}

func TestLogout(t *testing.T) {
	t.Run("tears down an authenticated session", func(t *testing.T) {
		st := &fakeStore{sess: annSession(), found: true}
		c, _ := initialized(t, newFakeAPI(), st)

		c.Logout(context.Background())

		assert.Equal(t, StateAnonymous, c.Current().State)
		_, found := st.snapshot()
		assert.False(t, found)
	})

	t.Run("repeated logout is a no-op", func(t *testing.T) {
		st := &fakeStore{sess: annSession(), found: true}
		c, _ := initialized(t, newFakeAPI(), st)

		c.Logout(context.Background())
		c.Logout(context.Background())

		_, _, purges := st.counts()
		assert.Equal(t, 1, purges)
	})

	t.Run("before initialize", func(t *testing.T) {
		st := &fakeStore{}
		c, _ := newController(t, newFakeAPI(), st)

		c.Logout(context.Background())

		assert.Equal(t, StateUninitialized, c.Current().State)
		loads, _, purges := st.counts()
		assert.Zero(t, loads)
		assert.Zero(t, purges)
	})

	t.Run("purge failure is swallowed", func(t *testing.T) {
		st := &fakeStore{sess: annSession(), found: true, purgeErr: errBoom}
		c, _ := initialized(t, newFakeAPI(), st)

		c.Logout(context.Background())
		assert.Equal(t, StateAnonymous, c.Current().State)
	})

	t.Run("canceled context still logs out", func(t *testing.T) {
		st := &fakeStore{sess: annSession(), found: true}
		c, _ := initialized(t, newFakeAPI(), st)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c.Logout(ctx)
		assert.Equal(t, StateAnonymous, c.Current().State)
	})
}

func TestUpdateProfile_RequiresSession(t *testing.T) {
	c, _ := newController(t, newFakeAPI(), &fakeStore{})
	_, err := c.UpdateProfile(context.Background(), models.ProfileUpdate{})
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = c.Initialize(context.Background())
	require.NoError(t, err)
	_, err = c.UpdateProfile(context.Background(), models.ProfileUpdate{})
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUpdateProfile_ReplacesProfile(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := initialized(t, api, st)

	server := models.UserProfile{ID: 7, FirstName: "Ann", LastName: "Leeson", Email: "ann@example.com", Role: models.RoleUser, Phone: "555-0100"}
	api.updateProfile = func(_ context.Context, _ string, upd models.ProfileUpdate) (models.UserProfile, error) {
		require.NotNil(t, upd.Phone)
		return server, nil
	}

	phone := "555-0100"
	got, err := c.UpdateProfile(context.Background(), models.ProfileUpdate{Phone: &phone})
	require.NoError(t, err)

	// The server's representation wins; the old address is not merged back in.
	if diff := cmp.Diff(server, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
	cur, _ := c.Current().Profile()
	assert.Equal(t, server, cur)
	assert.Equal(t, []string{"stored-jwt"}, api.updateCreds)

	persisted, _ := st.snapshot()
	assert.Equal(t, models.Session{Credential: "stored-jwt", Profile: server}, persisted)
}

func TestUpdateProfile_ExpiredCredential(t *testing.T) {
	api := newFakeAPI()
	api.updateProfile = func(context.Context, string, models.ProfileUpdate) (models.UserProfile, error) {
		return models.UserProfile{}, unauthorized()
	}
	st := &fakeStore{sess: annSession(), found: true}
	c, n := initialized(t, api, st)

	_, err := c.UpdateProfile(context.Background(), models.ProfileUpdate{})
	require.ErrorIs(t, err, client.ErrAuthenticationExpired)
	var se *client.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 401, se.StatusCode)

	assert.Equal(t, StateAnonymous, c.Current().State)
	assert.Equal(t, 1, n.count())
	_, found := st.snapshot()
	assert.False(t, found)
}

func TestUpdateProfile_OtherFailureKeepsSession(t *testing.T) {
	api := newFakeAPI()
	api.updateProfile = func(context.Context, string, models.ProfileUpdate) (models.UserProfile, error) {
		return models.UserProfile{}, &client.StatusError{StatusCode: 400, Fields: map[string][]string{"phone": {"invalid"}}}
	}
	st := &fakeStore{sess: annSession(), found: true}
	c, n := initialized(t, api, st)

	_, err := c.UpdateProfile(context.Background(), models.ProfileUpdate{})
	require.Error(t, err)
	assert.Equal(t, 400, client.StatusCode(err))
	assert.Equal(t, annSession(), c.Current().Session)
	assert.Zero(t, n.count())
}

func TestExpire(t *testing.T) {
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := initialized(t, newFakeAPI(), st)
	ctx := context.Background()

	assert.False(t, c.Expire(ctx, ""))
	assert.False(t, c.Expire(ctx, "some-older-jwt"))
	assert.True(t, c.Current().Authenticated())

	assert.True(t, c.Expire(ctx, "stored-jwt"))
	assert.False(t, c.Expire(ctx, "stored-jwt"))
	assert.Equal(t, StateAnonymous, c.Current().State)
}

func TestExpire_ConcurrentCallsCollapse(t *testing.T) {
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := initialized(t, newFakeAPI(), st)

	const n = 16
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		wins  int
		start = make(chan struct{})
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if c.Expire(context.Background(), "stored-jwt") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, wins)
	_, _, purges := st.counts()
	assert.Equal(t, 1, purges)
	assert.Equal(t, StateAnonymous, c.Current().State)
}

func TestExpire_DoesNotTouchNewerSession(t *testing.T) {
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := initialized(t, newFakeAPI(), st)

	_, err := c.Login(context.Background(), "ann@example.com", "pw")
	require.NoError(t, err)

	// A 401 for the credential that was replaced arrives late.
	assert.False(t, c.Expire(context.Background(), "stored-jwt"))
	assert.Equal(t, "jwt-ann@example.com", c.Credential())
}

// blockingSignIn parks SignIn until release is closed and reports entry.
func blockingSignIn(api *fakeAPI) (entered, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	api.signIn = func(ctx context.Context, email, _ string) (models.SignInResponse, error) {
		close(entered)
		select {
		case <-release:
		case <-ctx.Done():
			return models.SignInResponse{}, ctx.Err()
		}
		return models.SignInResponse{JWT: "jwt-" + email}, nil
	}
	return entered, release
}

func TestReads_DoNotWaitForPendingMutation(t *testing.T) {
	api := newFakeAPI()
	c, _ := initialized(t, api, &fakeStore{})
	entered, release := blockingSignIn(api)

	done := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "ann@example.com", "pw")
		done <- err
	}()
	<-entered

	// The login is mid-flight; readers still see the committed state.
	assert.Equal(t, StateAnonymous, c.Current().State)
	assert.Empty(t, c.Credential())

	close(release)
	require.NoError(t, <-done)
	assert.True(t, c.Current().Authenticated())
}

func TestLoginThenLogout_LogoutWins(t *testing.T) {
	api := newFakeAPI()
	st := &fakeStore{}
	c, _ := initialized(t, api, st)
	entered, release := blockingSignIn(api)

	loginErr := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "ann@example.com", "pw")
		loginErr <- err
	}()
	<-entered

	logoutDone := make(chan struct{})
	go func() {
		c.Logout(context.Background())
		close(logoutDone)
	}()
	require.Eventually(t, func() bool { return c.logoutSeq.Load() == 1 }, time.Second, time.Millisecond)

	close(release)
	require.ErrorIs(t, <-loginErr, ErrSessionSuperseded)
	<-logoutDone

	assert.Equal(t, StateAnonymous, c.Current().State)
	_, saves, _ := st.counts()
	assert.Zero(t, saves, "superseded login must not persist")
}

func TestLogoutThenLogin_LoginWins(t *testing.T) {
	st := &fakeStore{sess: annSession(), found: true}
	c, _ := initialized(t, newFakeAPI(), st)

	c.Logout(context.Background())
	sess, err := c.Login(context.Background(), "bob@example.com", "pw")
	require.NoError(t, err)

	assert.Equal(t, sess.Credential, c.Credential())
	persisted, found := st.snapshot()
	require.True(t, found)
	assert.Equal(t, sess, persisted)
}

func TestMutation_WaitIsCancelable(t *testing.T) {
	api := newFakeAPI()
	c, _ := initialized(t, api, &fakeStore{})
	entered, release := blockingSignIn(api)

	loginDone := make(chan error, 1)
	go func() {
		_, err := c.Login(context.Background(), "ann@example.com", "pw")
		loginDone <- err
	}()
	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.UpdateProfile(ctx, models.ProfileUpdate{})
	require.True(t, errors.Is(err, context.DeadlineExceeded))

	// the abandoned waiter must not keep the lock from the next mutation
	close(release)
	require.NoError(t, <-loginDone)
	c.Logout(context.Background())
	assert.Equal(t, StateAnonymous, c.Current().State)
}
