package locker

import (
	"context"
	"sync"
)

type identityKey struct{}

// identityScope holds the authenticated user for exactly one operation.
type identityScope struct {
	mu   sync.RWMutex
	user *User
}

func (s *identityScope) get() (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

func (s *identityScope) clear() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
}

// WithIdentity returns a context carrying user and a release function.
// After release the context, and every context derived from it, reports no
// identity and is cancelled. Release is safe to call more than once.
//
//	ctx, release := locker.WithIdentity(r.Context(), user)
//	defer release()
func WithIdentity(ctx context.Context, user User) (context.Context, func()) {
	scope := &identityScope{user: &user}
	ctx, cancel := context.WithCancel(context.WithValue(ctx, identityKey{}, scope))
	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			scope.clear()
			cancel()
		})
	}
}

// IdentityFromContext returns the user bound by WithIdentity, if the scope
// is still open.
func IdentityFromContext(ctx context.Context) (User, bool) {
	scope, ok := ctx.Value(identityKey{}).(*identityScope)
	if !ok || scope == nil {
		return User{}, false
	}
	return scope.get()
}
