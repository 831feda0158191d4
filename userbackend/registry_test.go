package userbackend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker"
	"github.com/sagarc03/locker/userbackend"
)

func TestRegistry_Lookup(t *testing.T) {
	tests := []struct {
		name     string
		users    []locker.User
		username string
		wantOK   bool
		wantPass string
	}{
		{
			name: "returns user when present",
			users: []locker.User{
				{Username: "alice", Password: "p1", Status: locker.StatusEnabled},
				{Username: "bob", Password: "p2", Status: locker.StatusDisabled},
			},
			username: "alice",
			wantOK:   true,
			wantPass: "p1",
		},
		{
			name:     "missing user",
			users:    []locker.User{{Username: "alice", Password: "p1"}},
			username: "carol",
		},
		{
			name:     "empty registry",
			users:    nil,
			username: "alice",
		},
		{
			name: "last duplicate wins",
			users: []locker.User{
				{Username: "alice", Password: "old"},
				{Username: "alice", Password: "new"},
			},
			username: "alice",
			wantOK:   true,
			wantPass: "new",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := userbackend.NewRegistry(tt.users)
			u, ok := reg.Lookup(tt.username)

			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.username, u.Username)
				assert.Equal(t, tt.wantPass, u.Password)
			}
		})
	}
}

func TestRegistry_IsImmutableCopy(t *testing.T) {
	users := []locker.User{{Username: "alice", Password: "p1"}}
	reg := userbackend.NewRegistry(users)

	users[0].Password = "changed"

	u, ok := reg.Lookup("alice")
	require.True(t, ok)
	assert.Equal(t, "p1", u.Password)
	assert.Equal(t, 1, reg.Len())
}
