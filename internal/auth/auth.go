// Package auth verifies users against a credential store and hands out the
// session that scopes which ledger is opened.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/log"

	"golang.org/x/crypto/bcrypt"
)

// SecretStore persists the username to password-hash map.
type SecretStore interface {
	LoadSecrets(ctx context.Context) (map[string]string, error)
	SaveSecrets(ctx context.Context, secrets map[string]string) error
}

var (
	ErrUnknownUser        = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("incorrect password")
	ErrEmptyPassword      = errors.New("empty password")
)

type Authenticator struct {
	store SecretStore
	cost  int
}

type Option func(*Authenticator)

// WithCost sets the bcrypt cost used for new hashes.
func WithCost(cost int) Option {
	return func(a *Authenticator) {
		a.cost = cost
	}
}

func NewAuthenticator(store SecretStore, opts ...Option) *Authenticator {
	a := &Authenticator{store: store, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Exists reports whether username has an account.
func (a *Authenticator) Exists(ctx context.Context, username string) (bool, error) {
	session, err := core.NewSession(username)
	if err != nil {
		return false, err
	}
	secrets, err := a.loadSecrets(ctx)
	if err != nil {
		return false, err
	}
	_, ok := secrets[session.Owner]
	return ok, nil
}

// Register creates an account and returns its session.
func (a *Authenticator) Register(ctx context.Context, username, password string) (core.Session, error) {
	session, err := core.NewSession(username)
	if err != nil {
		return core.Session{}, err
	}
	if password == "" {
		return core.Session{}, ErrEmptyPassword
	}

	secrets, err := a.loadSecrets(ctx)
	if err != nil {
		return core.Session{}, err
	}
	if _, ok := secrets[session.Owner]; ok {
		return core.Session{}, fmt.Errorf("%w: %s", ErrUserExists, session.Owner)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return core.Session{}, fmt.Errorf("hash password: %w", err)
	}
	secrets[session.Owner] = string(hash)
	if err := a.store.SaveSecrets(ctx, secrets); err != nil {
		return core.Session{}, fmt.Errorf("save users: %w", err)
	}

	logger(ctx).InfoContext(ctx, "Account created",
		log.FieldOwner, session.Owner,
		log.FieldOperation, log.OpLogin)
	return session, nil
}

// Verify checks password for username. Secrets stored in clear by older
// versions are accepted once and replaced by a bcrypt hash.
func (a *Authenticator) Verify(ctx context.Context, username, password string) (core.Session, error) {
	session, err := core.NewSession(username)
	if err != nil {
		return core.Session{}, err
	}

	secrets, err := a.loadSecrets(ctx)
	if err != nil {
		return core.Session{}, err
	}
	stored, ok := secrets[session.Owner]
	if !ok {
		return core.Session{}, fmt.Errorf("%w: %s", ErrUnknownUser, session.Owner)
	}

	if !isHash(stored) {
		if subtle.ConstantTimeCompare([]byte(stored), []byte(password)) != 1 {
			return core.Session{}, rejected(ctx, session.Owner)
		}
		if err := a.upgrade(ctx, secrets, session.Owner, password); err != nil {
			logger(ctx).WarnContext(ctx, "Failed to upgrade legacy password",
				log.NewFields().WithOwner(session.Owner).WithOperation(log.OpLogin).WithError(err).ToSlice()...)
		}
		return session, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return core.Session{}, rejected(ctx, session.Owner)
		}
		return core.Session{}, fmt.Errorf("compare password: %w", err)
	}
	return session, nil
}

func (a *Authenticator) upgrade(ctx context.Context, secrets map[string]string, owner, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	secrets[owner] = string(hash)
	if err := a.store.SaveSecrets(ctx, secrets); err != nil {
		return fmt.Errorf("save users: %w", err)
	}
	logger(ctx).InfoContext(ctx, "Legacy password upgraded to bcrypt",
		log.FieldOwner, owner,
		log.FieldOperation, log.OpLogin)
	return nil
}

func (a *Authenticator) loadSecrets(ctx context.Context) (map[string]string, error) {
	secrets, err := a.store.LoadSecrets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if secrets == nil {
		secrets = map[string]string{}
	}
	return secrets, nil
}

func logger(ctx context.Context) *log.Logger {
	return log.FromContext(ctx).WithComponent(log.ComponentAuth)
}

// rejected logs a failed password check and returns ErrInvalidCredentials.
func rejected(ctx context.Context, owner string) error {
	logger(ctx).WarnContext(ctx, "Login rejected",
		log.FieldOwner, owner,
		log.FieldOperation, log.OpLogin,
		log.FieldErrorType, log.ErrorTypeAuth)
	return ErrInvalidCredentials
}

func isHash(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}
