package locker_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker"
)

func TestParseUserStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    locker.UserStatus
		wantErr bool
	}{
		{in: "", want: locker.StatusEnabled},
		{in: "enabled", want: locker.StatusEnabled},
		{in: "ENABLED", want: locker.StatusEnabled},
		{in: "1", want: locker.StatusEnabled},
		{in: "true", want: locker.StatusEnabled},
		{in: "disabled", want: locker.StatusDisabled},
		{in: " 0 ", want: locker.StatusDisabled},
		{in: "false", want: locker.StatusDisabled},
		{in: "banned", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := locker.ParseUserStatus(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}
}

func TestUser_Enabled(t *testing.T) {
	assert.True(t, locker.User{Status: locker.StatusEnabled}.Enabled())
	assert.True(t, locker.User{}.Enabled(), "missing status means enabled")
	assert.False(t, locker.User{Status: locker.StatusDisabled}.Enabled())
}

func TestEtagOf(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123_456_789, time.UTC)
	assert.Equal(t, ts.UnixMilli(), locker.EtagOf(ts))
}
