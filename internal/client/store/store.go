package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/booknest/internal/client/models"
	"github.com/dmitrijs2005/booknest/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/booknest/internal/cryptox"
	"github.com/dmitrijs2005/booknest/internal/dbx"
)

const (
	KeyToken    = "token"
	KeyUser     = "user"
	KeySealSalt = "seal_salt"
)

// ErrStorageCorrupted means the persisted record exists but cannot be used.
var ErrStorageCorrupted = errors.New("persisted session corrupted")

// SessionStore is the durable cache of the current session.
type SessionStore interface {
	// Load returns the persisted session. found is false when no record
	// exists. A partial or undecodable record yields ErrStorageCorrupted.
	Load(ctx context.Context) (sess models.Session, found bool, err error)
	// Save replaces the persisted record with sess.
	Save(ctx context.Context, sess models.Session) error
	// Purge removes the persisted record. Purging an absent record is not an error.
	Purge(ctx context.Context) error
}

type Option func(*SQLiteStore)

// WithSealer encrypts both entries at rest.
func WithSealer(s *cryptox.Sealer) Option {
	return func(st *SQLiteStore) { st.sealer = s }
}

type SQLiteStore struct {
	db     *sql.DB
	sealer *cryptox.Sealer
}

func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{db: db}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *SQLiteStore) Load(ctx context.Context) (models.Session, bool, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	rawToken, hasToken, err := repo.Get(ctx, KeyToken)
	if err != nil {
		return models.Session{}, false, err
	}
	rawUser, hasUser, err := repo.Get(ctx, KeyUser)
	if err != nil {
		return models.Session{}, false, err
	}

	switch {
	case !hasToken && !hasUser:
		return models.Session{}, false, nil
	case !hasToken:
		return models.Session{}, false, fmt.Errorf("%w: user entry without token", ErrStorageCorrupted)
	case !hasUser:
		return models.Session{}, false, fmt.Errorf("%w: token entry without user", ErrStorageCorrupted)
	}

	token, err := s.open(rawToken)
	if err != nil {
		return models.Session{}, false, fmt.Errorf("%w: token: %v", ErrStorageCorrupted, err)
	}
	if len(token) == 0 {
		return models.Session{}, false, fmt.Errorf("%w: empty token", ErrStorageCorrupted)
	}

	userJSON, err := s.open(rawUser)
	if err != nil {
		return models.Session{}, false, fmt.Errorf("%w: user: %v", ErrStorageCorrupted, err)
	}
	var profile models.UserProfile
	if err := json.Unmarshal(userJSON, &profile); err != nil {
		return models.Session{}, false, fmt.Errorf("%w: user: %v", ErrStorageCorrupted, err)
	}
	if err := profile.Validate(); err != nil {
		return models.Session{}, false, fmt.Errorf("%w: %v", ErrStorageCorrupted, err)
	}

	return models.Session{Credential: string(token), Profile: profile}, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, sess models.Session) error {
	userJSON, err := json.Marshal(sess.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	token, err := s.seal([]byte(sess.Credential))
	if err != nil {
		return fmt.Errorf("seal token: %w", err)
	}
	user, err := s.seal(userJSON)
	if err != nil {
		return fmt.Errorf("seal profile: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyToken, token); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, user)
	})
}

func (s *SQLiteStore) Purge(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, KeyToken, KeyUser)
	})
}

func (s *SQLiteStore) seal(b []byte) ([]byte, error) {
	if s.sealer == nil {
		return b, nil
	}
	return s.sealer.Seal(b)
}

func (s *SQLiteStore) open(b []byte) ([]byte, error) {
	if s.sealer == nil {
		return b, nil
	}
	return s.sealer.Open(b)
}

// SealerFromPassphrase derives the at-rest key from passphrase and the salt
// stored in db, generating and storing a salt on first use.
func SealerFromPassphrase(ctx context.Context, db *sql.DB, passphrase []byte) (*cryptox.Sealer, error) {
	var salt []byte

	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)

		stored, found, err := repo.Get(ctx, KeySealSalt)
		if err != nil {
			return err
		}
		if found && len(stored) == cryptox.SaltSize {
			salt = stored
			return nil
		}

		salt, err = cryptox.NewSalt()
		if err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		return repo.Set(ctx, KeySealSalt, salt)
	})
	if err != nil {
		return nil, err
	}

	return cryptox.NewSealer(cryptox.DeriveKey(passphrase, salt))
}
