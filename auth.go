package locker

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// errTokenRejected is logged server side only; clients always see ErrUnauthorized.
var errTokenRejected = errors.New("token rejected")

// UserRegistry is the read-only user mapping loaded at startup.
type UserRegistry interface {
	// Lookup returns the user with the given name, if provisioned.
	Lookup(username string) (User, bool)
}

// Authenticator turns credentials into tokens and tokens back into users.
// It is safe for concurrent use; both collaborators are read-only.
type Authenticator struct {
	users UserRegistry
	codec *TokenCodec
}

func NewAuthenticator(users UserRegistry, codec *TokenCodec) *Authenticator {
	return &Authenticator{users: users, codec: codec}
}

// Login checks username and password and returns a fresh token.
// Unknown user, wrong password and disabled account all return ErrUnauthorized.
func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	slog.Info("login request", "username", username)

	user, found := a.users.Lookup(username)
	if !found {
		slog.Info("login rejected", "username", username, "reason", "unknown user")
		return "", fmt.Errorf("login: %w", ErrUnauthorized)
	}

	if !checkPassword(user.Password, password) {
		slog.Info("login rejected", "username", username, "reason", "password mismatch")
		return "", fmt.Errorf("login: %w", ErrUnauthorized)
	}

	if !user.Enabled() {
		slog.Info("login rejected", "username", username, "reason", "user disabled")
		return "", fmt.Errorf("login: %w", ErrUnauthorized)
	}

	token, err := a.codec.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	slog.Info("login succeeded", "username", username)
	return token, nil
}

// Authenticate resolves a token to a provisioned, enabled user. A token that
// verifies but names a user no longer in the registry is rejected.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, fmt.Errorf("authenticate: %w", err)
	}

	username, ok := a.codec.Verify(token)
	if !ok {
		return User{}, fmt.Errorf("authenticate: %w: %w", ErrUnauthorized, errTokenRejected)
	}

	user, found := a.users.Lookup(username)
	if !found {
		slog.Warn("token for unknown user", "username", username)
		return User{}, fmt.Errorf("authenticate: %w: user %s not provisioned", ErrUnauthorized, username)
	}

	if !user.Enabled() {
		return User{}, fmt.Errorf("authenticate: %w: user %s disabled", ErrUnauthorized, username)
	}

	return user, nil
}

// IsPasswordHash reports whether stored looks like a bcrypt hash.
func IsPasswordHash(stored string) bool {
	if !strings.HasPrefix(stored, "$2a$") && !strings.HasPrefix(stored, "$2b$") && !strings.HasPrefix(stored, "$2y$") {
		return false
	}
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

func checkPassword(stored, given string) bool {
	if IsPasswordHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
