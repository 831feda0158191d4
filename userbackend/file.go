package userbackend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/locker"
)

// UserEntry is one user as written in configuration. Status may be a
// string ("enabled", "disabled"), a number (1, 0) or a boolean; a missing
// status means enabled.
type UserEntry struct {
	Username string `json:"username" yaml:"username" toml:"username" mapstructure:"username"`
	Password string `json:"password" yaml:"password" toml:"password" mapstructure:"password"`
	Status   any    `json:"status" yaml:"status" toml:"status" mapstructure:"status"`
}

// usersFile is the document layout shared by every supported format.
type usersFile struct {
	User []UserEntry `json:"user" yaml:"user" toml:"user"`
}

// LoadUsersFromFile loads users from a JSON, YAML or TOML file, chosen by
// extension. Every format uses a top level "user" list:
//
//	[[user]]
//	username = "alice"
//	password = "secret"
//	status = 1
//
// Entries with an empty username are skipped.
func LoadUsersFromFile(path string) ([]locker.User, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var doc usersFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("parse users file: unsupported extension %q (valid: .json, .yaml, .yml, .toml)", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}

	users, err := toUsers(doc.User)
	if err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}
	return users, nil
}

func toUsers(entries []UserEntry) ([]locker.User, error) {
	users := make([]locker.User, 0, len(entries))
	for _, e := range entries {
		if e.Username == "" {
			continue
		}

		if !isValidUsername(e.Username) {
			return nil, fmt.Errorf("invalid username %q: must be a single path segment", e.Username)
		}

		status, err := locker.ParseUserStatus(statusString(e.Status))
		if err != nil {
			return nil, fmt.Errorf("user %s: %w", e.Username, err)
		}

		users = append(users, locker.User{
			Username: e.Username,
			Password: e.Password,
			Status:   status,
		})
	}
	return users, nil
}

func statusString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// isValidUsername reports whether name can be used as a directory name
// under the storage root.
func isValidUsername(name string) bool {
	return name != "." && name != ".." &&
		!strings.ContainsAny(name, "/\\\x00")
}
