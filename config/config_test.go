package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOCKER_AUTH_SECRET", "s3cret")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 5708, cfg.Server.Port)
	assert.Equal(t, int64(0), cfg.Server.MaxUploadSize)
	assert.Equal(t, "./data", cfg.Storage.Path)
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.IsProduction())

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"GET", "POST", "OPTIONS"}, cfg.CORS.AllowedMethods)
	assert.True(t, cfg.CORS.AllowCredentials)
	assert.Equal(t, 86400, cfg.CORS.MaxAge)
}

func TestLoad_MissingSecret(t *testing.T) {
	_, err := config.Load(nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Secret")
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeConfig(t, "locker.yaml", `
env: production
server:
  port: 8080
  max_upload_size: 1048576
storage:
  path: /tmp/storage
auth:
  secret: from-file
  users:
    inline:
      - username: alice
        password: p1
        status: enabled
      - username: bob
        password: p2
        status: 0
    file: /etc/locker/users.toml
cors:
  enabled: false
log:
  level: debug
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadSize)
	assert.Equal(t, "/tmp/storage", cfg.Storage.Path)
	assert.Equal(t, "from-file", cfg.Auth.Secret)
	assert.Equal(t, "/etc/locker/users.toml", cfg.Auth.Users.File)
	require.Len(t, cfg.Auth.Users.Inline, 2)
	assert.Equal(t, "alice", cfg.Auth.Users.Inline[0].Username)
	assert.Equal(t, "p1", cfg.Auth.Users.Inline[0].Password)
	assert.Equal(t, "bob", cfg.Auth.Users.Inline[1].Username)
	assert.False(t, cfg.CORS.Enabled)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_TOMLFile(t *testing.T) {
	path := writeConfig(t, "locker.toml", `
[server]
port = 9000

[auth]
secret = "toml-secret"

[[auth.users.inline]]
username = "alice"
password = "p1"
status = 1
`)

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "toml-secret", cfg.Auth.Secret)
	require.Len(t, cfg.Auth.Users.Inline, 1)
	assert.Equal(t, "alice", cfg.Auth.Users.Inline[0].Username)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	base := writeConfig(t, "base.yaml", `
server:
  port: 7000
auth:
  secret: base
log:
  level: warn
`)
	override := writeConfig(t, "override.yaml", `
server:
  port: 7001
`)

	cfg, err := config.Load([]string{base, override}, nil)
	require.NoError(t, err)

	assert.Equal(t, 7001, cfg.Server.Port)
	assert.Equal(t, "base", cfg.Auth.Secret)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load([]string{"/nonexistent/locker.yaml"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "server:\n  port: 70000\nauth:\n  secret: x\n"},
		{"negative upload size", "server:\n  max_upload_size: -1\nauth:\n  secret: x\n"},
		{"bad log level", "log:\n  level: loud\nauth:\n  secret: x\n"},
		{"bad env", "env: staging\nauth:\n  secret: x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "locker.yaml", tt.content)

			_, err := config.Load([]string{path}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("LOCKER_SERVER_PORT", "9090")
	t.Setenv("LOCKER_AUTH_SECRET", "env-secret")
	t.Setenv("LOCKER_AUTH_USERS_FILE", "/data/users.toml")
	t.Setenv("LOCKER_ENV", "production")

	path := writeConfig(t, "locker.yaml", "auth:\n  secret: file-secret\n")

	cfg, err := config.Load([]string{path}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Auth.Secret)
	assert.Equal(t, "/data/users.toml", cfg.Auth.Users.File)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_Flags(t *testing.T) {
	t.Setenv("LOCKER_AUTH_SECRET", "s")
	t.Setenv("LOCKER_SERVER_PORT", "9090")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 0, "")
	flags.String("storage-path", "", "")
	flags.String("log-level", "", "")
	require.NoError(t, flags.Parse([]string{"--port", "6000", "--storage-path", "/srv/locker"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 6000, cfg.Server.Port, "flags beat env")
	assert.Equal(t, "/srv/locker", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Log.Level, "unset flag leaves default")
}

func TestLoadDotEnv(t *testing.T) {
	path := writeConfig(t, ".env", "LOCKER_TEST_DOTENV=loaded\n")
	t.Setenv("LOCKER_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("LOCKER_TEST_DOTENV"))

	require.NoError(t, config.LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("LOCKER_TEST_DOTENV"))
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}

func TestContext(t *testing.T) {
	_, err := config.FromContext(context.Background())
	require.Error(t, err)

	cfg := &config.Config{Server: config.ServerConfig{Port: 1234}}
	ctx := config.WithContext(context.Background(), cfg)

	got, err := config.FromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, cfg, got)
}
