package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/paddock/pkg/metrics"
)

// Sentinel kinds for login errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginDisabled      = errors.New("login disabled")
)

// Authenticator checks admin credentials and opens sessions.
type Authenticator struct {
	username     string
	passwordHash []byte
	store        Store
}

// NewAuthenticator creates an Authenticator for one admin account. An empty
// hash disables login.
func NewAuthenticator(store Store, username, passwordHash string) *Authenticator {
	return &Authenticator{
		username:     username,
		passwordHash: []byte(passwordHash),
		store:        store,
	}
}

// Enabled reports whether an admin account is configured.
func (a *Authenticator) Enabled() bool {
	return a.username != "" && len(a.passwordHash) > 0
}

// Login verifies the credentials and returns a new session.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Session, error) {
	if !a.Enabled() {
		metrics.RecordLoginAttempt("disabled")
		return Session{}, ErrLoginDisabled
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// Always run bcrypt so unknown users cost the same as wrong passwords.
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		metrics.RecordLoginAttempt("failure")
		return Session{}, ErrInvalidCredentials
	}
	sess, err := a.store.Create(ctx, a.username)
	if err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	metrics.RecordLoginAttempt("success")
	return sess, nil
}

// Logout ends the session behind token.
func (a *Authenticator) Logout(ctx context.Context, token string) {
	a.store.Delete(ctx, token)
}

// HashPassword returns a bcrypt hash for configuring the admin password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
