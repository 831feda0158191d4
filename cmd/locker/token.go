package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/locker"
	"github.com/sagarc03/locker/config"
)

var tokenCmd = &cobra.Command{
	Use:   "token <username> [config=<path>]",
	Short: "Issue a token for a user",
	Long: `Issue a token for a provisioned, enabled user without going through
login. The token is signed with the configured auth.secret and printed to
stdout.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) < 1 {
			return fmt.Errorf("requires a username")
		}
		return onlyConfigArgs(cmd, args[1:])
	},
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	users, err := buildRegistry(cfg)
	if err != nil {
		return err
	}

	username := args[0]
	user, ok := users.Lookup(username)
	if !ok {
		return fmt.Errorf("user %q is not provisioned", username)
	}
	if !user.Enabled() {
		return fmt.Errorf("user %q is disabled", username)
	}

	codec, err := locker.NewTokenCodec([]byte(cfg.Auth.Secret))
	if err != nil {
		return fmt.Errorf("create token codec: %w", err)
	}

	token, err := codec.Issue(user.Username)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}

	cmd.Println(token)
	return nil
}
