package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sagarc03/locker/clientcli"
)

var loginPasswordStdin bool

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in and store the token in the profile",
	Long: `Exchange a username and password for a token. The token is saved in
the selected profile (a profile named "default" is created if the profile
file is empty) so later commands can use it.

Examples:
  locker-cli login alice
  echo "$PASSWORD" | locker-cli login alice --password-stdin`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	username := ""
	if len(args) > 0 {
		username = args[0]
	}
	if username == "" {
		prompt := promptui.Prompt{Label: "Username"}
		var err error
		if username, err = prompt.Run(); err != nil {
			return handlePromptError(cmd, err)
		}
	}

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	tok, err := client.Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}

	if err := saveSession(username, tok); err != nil {
		return err
	}

	return getFormatter().FormatLogin(os.Stdout, username, tok)
}

func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // stdin descriptor fits in int

	if loginPasswordStdin || !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	_, _ = fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

// saveSession records the login in the selected profile.
func saveSession(username, tok string) error {
	configPath := getConfigPath()

	cfg, err := loadOrCreateConfigFile(configPath)
	if err != nil {
		return err
	}

	name := getProfileName()
	if len(cfg.Profiles) == 0 {
		if name == "" {
			name = "default"
		}
		resolved, buildErr := buildConfig()
		if buildErr != nil {
			return buildErr
		}
		profile := clientcli.Profile{Name: name, Endpoint: resolved.WithDefaults().Endpoint, Default: true}
		if err := cfg.AddProfile(profile); err != nil {
			return err
		}
	} else if name == "" {
		p, defaultErr := cfg.GetDefaultProfile()
		if defaultErr != nil {
			return defaultErr
		}
		name = p.Name
	}

	if err := cfg.SetSession(name, username, tok); err != nil {
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
