package e2e_test

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker"
	"github.com/sagarc03/locker/clientcli"
	"github.com/sagarc03/locker/filesystem"
	lockerhttp "github.com/sagarc03/locker/http"
	"github.com/sagarc03/locker/userbackend"
)

const testSecret = "e2e-test-secret-0123456789abcdef"

// ServerConfig holds the options for an in-process locker server.
type ServerConfig struct {
	Users         []locker.User
	MaxUploadSize int64
	Secret        string
}

// TestServer is a running locker stack behind httptest.
type TestServer struct {
	URL         string
	StoragePath string
	Codec       *locker.TokenCodec
}

func defaultUsers() []locker.User {
	return []locker.User{
		{Username: "alice", Password: "p1", Status: locker.StatusEnabled},
		{Username: "bob", Password: "p2", Status: locker.StatusEnabled},
		{Username: "carol", Password: "p3", Status: locker.StatusDisabled},
	}
}

// startServer wires the real stores, service, authenticator and router.
func startServer(t *testing.T, cfg ServerConfig) *TestServer {
	t.Helper()

	if cfg.Users == nil {
		cfg.Users = defaultUsers()
	}
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}

	storagePath := t.TempDir()
	root, err := os.OpenRoot(storagePath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	codec, err := locker.NewTokenCodec([]byte(cfg.Secret))
	require.NoError(t, err)

	service, err := locker.NewService(filesystem.NewContentStore(root), filesystem.NewImageStore(root))
	require.NoError(t, err)

	auth := locker.NewAuthenticator(userbackend.NewRegistry(cfg.Users), codec)
	handler := lockerhttp.NewHandler(&lockerhttp.HandlerConfig{
		CORS:          lockerhttp.CORSConfig{Enabled: false},
		MaxUploadSize: cfg.MaxUploadSize,
	}, auth, service)

	server := httptest.NewServer(handler.Router())
	t.Cleanup(server.Close)

	return &TestServer{URL: server.URL, StoragePath: storagePath, Codec: codec}
}

// newClient returns an anonymous client for the server.
func newClient(t *testing.T, srv *TestServer) *clientcli.Client {
	t.Helper()
	client, err := clientcli.New(&clientcli.Config{Endpoint: srv.URL})
	require.NoError(t, err)
	return client
}

// loginAs returns a client that has logged in as username.
func loginAs(t *testing.T, srv *TestServer, username, password string) *clientcli.Client {
	t.Helper()
	client := newClient(t, srv)
	_, err := client.Login(context.Background(), username, password)
	require.NoError(t, err)
	return client
}

// withToken returns a client that sends the given token.
func withToken(t *testing.T, srv *TestServer, token string) *clientcli.Client {
	t.Helper()
	client, err := clientcli.New(&clientcli.Config{Endpoint: srv.URL, Token: token})
	require.NoError(t, err)
	return client
}
