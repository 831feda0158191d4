// Package config provides configuration loading and validation for locker.
//
// The package handles YAML, TOML and JSON configuration files, environment
// variables, and CLI flags with automatic merging and validation using
// go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (LOCKER_ prefix)
//  4. CLI flags
//
// When no file is given, Load looks for locker.{yaml,toml,json} in the
// working directory, then /data, then /.
//
// # Usage
//
//	if err := config.LoadDotEnv(".env"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := config.Load([]string{"locker.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
// # Environment Variables
//
// All config keys map to environment variables with LOCKER_ prefix:
//   - server.port → LOCKER_SERVER_PORT
//   - auth.secret → LOCKER_AUTH_SECRET
//   - auth.users.file → LOCKER_AUTH_USERS_FILE
//
// # Configuration Structure
//
//	env: production            # dev (tint output) or production (JSON)
//	server:
//	  port: 5708
//	  max_upload_size: 0       # bytes, 0 = unlimited
//	storage:
//	  path: ./data
//	auth:
//	  secret: change-me        # HS256 token signing secret
//	  users:
//	    inline:
//	      - {username: alice, password: p1, status: enabled}
//	    file: users.toml       # optional, overrides inline users
//	cors:
//	  enabled: true
//	  allowed_origins: ["*"]
//	log:
//	  level: info
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - auth.secret is required
//   - Log level must be debug, info, warn, or error
package config
