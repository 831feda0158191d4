package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/locker"
	"github.com/sagarc03/locker/config"
	"github.com/sagarc03/locker/filesystem"
	lockerhttp "github.com/sagarc03/locker/http"
	"github.com/sagarc03/locker/userbackend"
)

var serveCmd = &cobra.Command{
	Use:   "serve [config=<path>]",
	Short: "Start the HTTP server",
	Long: `Start the locker HTTP server.

Configuration is read from the files given with --config or config=<path>,
otherwise from locker.yaml (or .toml/.json) in the working directory, /data
or /. Environment variables prefixed with LOCKER_ override file values.`,
	Args: onlyConfigArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (default: 5708, env: LOCKER_SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	users, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	slog.Info("loaded users", "count", users.Len())

	codec, err := locker.NewTokenCodec([]byte(cfg.Auth.Secret))
	if err != nil {
		return fmt.Errorf("create token codec: %w", err)
	}
	auth := locker.NewAuthenticator(users, codec)

	if err = os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	service, err := locker.NewService(filesystem.NewContentStore(root), filesystem.NewImageStore(root))
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handler := lockerhttp.NewHandler(&lockerhttp.HandlerConfig{
		CORS:          cfg.CORS,
		MaxUploadSize: cfg.Server.MaxUploadSize,
	}, auth, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case <-sigCh:
		case <-ctx.Done():
			return
		}

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr, "storage", cfg.Storage.Path)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// buildRegistry loads the configured users. Having none is fatal.
func buildRegistry(cfg *config.Config) (*userbackend.Registry, error) {
	users, err := userbackend.Build(cfg.Auth.Users)
	if errors.Is(err, userbackend.ErrNoUsers) {
		return nil, fmt.Errorf("%w: run 'locker init' to create a config, or add users under auth.users", err)
	}
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}
