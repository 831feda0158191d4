package userbackend

import "fmt"

// UsersConfig holds configuration for provisioning users.
type UsersConfig struct {
	Inline []UserEntry `mapstructure:"inline"` // Users declared in the main config
	File   string      `mapstructure:"file"`   // Path to a JSON, YAML or TOML users file
}

// Build creates a Registry from inline users and the users file, if set.
// File users take precedence over inline users with the same name.
// Returns ErrNoUsers when nothing is provisioned.
func Build(cfg UsersConfig) (*Registry, error) {
	users, err := toUsers(cfg.Inline)
	if err != nil {
		return nil, fmt.Errorf("inline users: %w", err)
	}

	if cfg.File != "" {
		fileUsers, err := LoadUsersFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		users = append(users, fileUsers...)
	}

	if len(users) == 0 {
		return nil, ErrNoUsers
	}

	return NewRegistry(users), nil
}
