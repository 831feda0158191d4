package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/locker/config"
)

var version = "dev"

// skipConfig marks commands that run before a config file exists.
const skipConfig = "skip-config"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "locker",
	Short:   "Multi-user key/value and image store",
	Long: `Locker is a small multi-user storage server. Each user gets a private
key/value text store and a public image bucket, all kept on the local
filesystem and accessed over a token-authenticated HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}

		if cmd.Annotations[skipConfig] == "true" {
			setupLogging(nil)
			return nil
		}

		configFiles, _ := cmd.Flags().GetStringSlice("config")
		configFiles = append(configFiles, configArgs(args)...)

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, later files override earlier ones (default: search for locker.{yaml,toml,json})")
	rootCmd.PersistentFlags().String("storage-path", "", "storage directory path (default: ./data, env: LOCKER_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("users-file", "", "users file path (env: LOCKER_AUTH_USERS_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: LOCKER_LOG_LEVEL)")
}

// configArgs picks config=<path> positional arguments.
func configArgs(args []string) []string {
	var files []string
	for _, arg := range args {
		if path, ok := strings.CutPrefix(arg, "config="); ok && path != "" {
			files = append(files, path)
		}
	}
	return files
}

// onlyConfigArgs accepts positional arguments of the form config=<path>.
func onlyConfigArgs(_ *cobra.Command, args []string) error {
	for _, arg := range args {
		if path, ok := strings.CutPrefix(arg, "config="); !ok || path == "" {
			return fmt.Errorf("unexpected argument %q, expected config=<path>", arg)
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
