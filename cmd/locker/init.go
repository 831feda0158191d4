package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/locker/userbackend"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	Long: `Prompt for a first user and write a config file with a freshly
generated token secret.

Examples:
  locker init
  locker init --output /data/locker.yaml --hash`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE:        runInit,
}

var (
	initOutput string
	initHash   bool
)

func init() {
	initCmd.Flags().StringVarP(&initOutput, "output", "o", "locker.yaml", "path of the config file to write")
	initCmd.Flags().BoolVar(&initHash, "hash", false, "store the password as a bcrypt hash")
	rootCmd.AddCommand(initCmd)
}

// starterConfig is the document written by init.
type starterConfig struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Auth struct {
		Secret string `yaml:"secret"`
		Users  struct {
			Inline []userbackend.UserEntry `yaml:"inline"`
		} `yaml:"users"`
	} `yaml:"auth"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

func runInit(cmd *cobra.Command, _ []string) error {
	if _, err := os.Stat(initOutput); err == nil {
		return fmt.Errorf("%s already exists, refusing to overwrite", initOutput)
	}

	usernamePrompt := promptui.Prompt{
		Label:   "Username",
		Default: "admin",
		Validate: func(input string) error {
			if input == "" {
				return errors.New("username is required")
			}
			return nil
		},
	}
	username, err := usernamePrompt.Run()
	if err != nil {
		return promptError(err)
	}

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if len(input) < 8 {
				return errors.New("password must be at least 8 characters")
			}
			return nil
		},
	}
	password, err := passwordPrompt.Run()
	if err != nil {
		return promptError(err)
	}

	storagePrompt := promptui.Prompt{
		Label:   "Storage path",
		Default: "./data",
	}
	storagePath, err := storagePrompt.Run()
	if err != nil {
		return promptError(err)
	}

	doc, err := newStarterConfig(username, password, storagePath, initHash)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := writeNewFile(initOutput, data); err != nil {
		return err
	}

	cmd.Printf("Wrote %s. Start the server with: locker serve config=%s\n", initOutput, initOutput)
	return nil
}

func newStarterConfig(username, password, storagePath string, hash bool) (*starterConfig, error) {
	secret, err := randomSecret()
	if err != nil {
		return nil, err
	}

	if hash {
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, fmt.Errorf("hash password: %w", hashErr)
		}
		password = string(hashed)
	}

	doc := &starterConfig{}
	doc.Server.Port = 5708
	doc.Storage.Path = storagePath
	doc.Auth.Secret = secret
	doc.Auth.Users.Inline = []userbackend.UserEntry{
		{Username: username, Password: password, Status: "enabled"},
	}
	doc.Log.Level = "info"
	return doc, nil
}

// randomSecret returns 32 random bytes, hex encoded.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// writeNewFile fails if path already exists.
func writeNewFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return errors.New("cancelled")
	}
	return err
}
