package locker

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// UserStatus is the account state of a provisioned user.
type UserStatus string

const (
	StatusEnabled  UserStatus = "enabled"
	StatusDisabled UserStatus = "disabled"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case StatusEnabled, StatusDisabled:
		return true
	default:
		return false
	}
}

// ParseUserStatus accepts the spellings found in provisioning files.
// An empty value means enabled.
func ParseUserStatus(s string) (UserStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "enabled", "1", "true":
		return StatusEnabled, nil
	case "disabled", "0", "false":
		return StatusDisabled, nil
	default:
		return "", fmt.Errorf("invalid user status: %s (valid: enabled, disabled)", s)
	}
}

// User is a provisioned account. Password holds either a plaintext secret
// or a bcrypt hash.
type User struct {
	Username string     `json:"username"`
	Password string     `json:"-"`
	Status   UserStatus `json:"status"`
}

func (u User) Enabled() bool {
	return u.Status != StatusDisabled
}

// Entry is a stored text value together with its etag.
type Entry struct {
	Content string `json:"content"`
	Etag    int64  `json:"etag"`
}

// Image is an opened image object. The caller must close Body.
type Image struct {
	ObjectKey   string
	ContentType string
	Size        int64
	ModTime     time.Time
	Body        io.ReadSeekCloser
}

// EtagOf converts a modification time to the etag clients see.
func EtagOf(t time.Time) int64 {
	return t.UnixMilli()
}
