package locker_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker"
)

func TestIdentityFromContext_Empty(t *testing.T) {
	_, ok := locker.IdentityFromContext(context.Background())
	assert.False(t, ok)
}

func TestWithIdentity_SetAndRelease(t *testing.T) {
	alice := locker.User{Username: "alice", Status: locker.StatusEnabled}

	ctx, release := locker.WithIdentity(context.Background(), alice)

	got, ok := locker.IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", got.Username)

	derived := context.WithValue(ctx, struct{}{}, "x")

	release()

	_, ok = locker.IdentityFromContext(ctx)
	assert.False(t, ok, "identity must be cleared after release")
	_, ok = locker.IdentityFromContext(derived)
	assert.False(t, ok, "derived contexts must not keep the identity")
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	assert.NotPanics(t, release, "release is idempotent")
}

func TestWithIdentity_ReleasedOnPanic(t *testing.T) {
	var captured context.Context

	func() {
		defer func() { _ = recover() }()

		ctx, release := locker.WithIdentity(context.Background(), locker.User{Username: "bob"})
		defer release()
		captured = ctx
		panic("boom")
	}()

	_, ok := locker.IdentityFromContext(captured)
	assert.False(t, ok)
}

func TestWithIdentity_ConcurrentScopesIsolated(t *testing.T) {
	var wg sync.WaitGroup
	names := []string{"alice", "bob", "carol", "dave"}

	for i := 0; i < 50; i++ {
		for _, name := range names {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()
				ctx, release := locker.WithIdentity(context.Background(), locker.User{Username: name})
				defer release()

				got, ok := locker.IdentityFromContext(ctx)
				assert.True(t, ok)
				assert.Equal(t, name, got.Username)
			}(name)
		}
	}

	wg.Wait()
}
