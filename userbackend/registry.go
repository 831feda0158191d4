// Package userbackend provides the user registry consulted at login and on
// every authenticated request.
package userbackend

import (
	"github.com/sagarc03/locker"
)

// Registry is an immutable username to user mapping.
// It is built once at startup and safe for concurrent reads.
type Registry struct {
	users map[string]locker.User
}

// NewRegistry creates a Registry from users. Later entries win on duplicate
// usernames.
func NewRegistry(users []locker.User) *Registry {
	m := make(map[string]locker.User, len(users))
	for _, u := range users {
		m[u.Username] = u
	}
	return &Registry{users: m}
}

// Lookup returns the user with the given name.
func (r *Registry) Lookup(username string) (locker.User, bool) {
	u, ok := r.users[username]
	return u, ok
}

func (r *Registry) Len() int {
	return len(r.users)
}
