package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/locker/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	token       string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "locker-cli",
	Version: version,
	Short:   "Client for locker servers",
	Long: `locker-cli talks to a locker server.

Log in once with 'locker-cli login'; the token is stored in the selected
profile and used by put, get, delete and etag. Images are uploaded with
upload-image and can be fetched by anyone who knows the object key.

Settings are resolved from the profile file (~/.locker/config.yaml), then
LOCKER_ENDPOINT / LOCKER_TOKEN, then flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "profile file (default: ~/.locker/config.yaml, env: LOCKER_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: LOCKER_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: LOCKER_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "bearer token (env: LOCKER_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(etagCmd)
	rootCmd.AddCommand(uploadImageCmd)
	rootCmd.AddCommand(fetchImageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getConfigPath resolves the profile file path: flag, LOCKER_CONFIG, default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// getProfileName resolves the profile name: flag, LOCKER_PROFILE, default.
func getProfileName() string {
	if profileName != "" {
		return profileName
	}
	return clientcli.ProfileFromEnv()
}

// buildConfig merges profile, environment and flags, later sources winning.
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	configPath := getConfigPath()
	explicit := cfgFile != "" || clientcli.ConfigPathFromEnv() != ""

	configFile, err := clientcli.LoadConfigFile(configPath)
	switch {
	case err == nil:
		profile, profileErr := configFile.GetProfile(getProfileName())
		switch {
		case profileErr == nil:
			configs = append(configs, clientcli.ConfigFromProfile(profile))
		case errors.Is(profileErr, clientcli.ErrNoProfiles) && getProfileName() == "":
		default:
			return nil, profileErr
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, err
	case getProfileName() != "":
		return nil, fmt.Errorf("%w: %s", clientcli.ErrProfileNotFound, getProfileName())
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint, Token: token},
	)

	return clientcli.MergeConfig(configs...), nil
}

func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient returns a client for calls that need no token.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return clientcli.New(cfg)
}

// getAuthClient returns a client that carries a token.
func getAuthClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateWithAuth(); err != nil {
		return nil, fmt.Errorf("%w: run 'locker-cli login' first", err)
	}
	return clientcli.New(cfg)
}

// exitError exits non-zero after the formatter already reported the
// failures.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
