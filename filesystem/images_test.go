package filesystem_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker"
	"github.com/sagarc03/locker/filesystem"
)

var objectKeyPattern = regexp.MustCompile(`^alice/images/avatars/[0-9a-f]{16}\.png$`)

func TestImageStore_UploadOpen(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewImageStore(root)
	ctx := context.Background()

	key, err := store.Upload(ctx, "alice", "avatars", "Me.PNG", strings.NewReader("pngbytes"))
	require.NoError(t, err)
	assert.Regexp(t, objectKeyPattern, key)

	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(key)))
	require.NoError(t, err)

	for _, k := range []string{key, "/" + key} {
		img, err := store.Open(ctx, k)
		require.NoError(t, err)

		body, err := io.ReadAll(img.Body)
		require.NoError(t, err)
		require.NoError(t, img.Body.Close())

		assert.Equal(t, "pngbytes", string(body))
		assert.Equal(t, "image/png", img.ContentType)
		assert.Equal(t, int64(8), img.Size)
		assert.Equal(t, key, img.ObjectKey)
	}
}

func TestImageStore_Upload_UniqueNames(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewImageStore(root)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 20 {
		key, err := store.Upload(ctx, "alice", "p", "a.jpg", strings.NewReader("x"))
		require.NoError(t, err)
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
}

func TestImageStore_Upload_InvalidPrefix(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewImageStore(root)

	for _, prefix := range []string{"", "a-b", "a/b", "..", "héllo", "a b"} {
		_, err := store.Upload(context.Background(), "alice", prefix, "a.png", strings.NewReader("x"))
		assert.ErrorIs(t, err, locker.ErrInvalidPrefix, "prefix %q", prefix)
	}
}

func TestImageStore_Upload_InvalidFormat(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewImageStore(root)

	for _, name := range []string{"", "   ", "noext", "a.exe", "a.png.sh", "a."} {
		_, err := store.Upload(context.Background(), "alice", "p", name, strings.NewReader("x"))
		assert.ErrorIs(t, err, locker.ErrInvalidFormat, "filename %q", name)
	}

	_, err := os.Stat(filepath.Join(dir, "alice"))
	assert.True(t, os.IsNotExist(err), "nothing written for rejected uploads")
}

func TestImageStore_Open_NotFound(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewImageStore(root)

	_, err := store.Open(context.Background(), "alice/images/p/0123456789abcdef.png")
	assert.ErrorIs(t, err, locker.ErrNotFound)
}

func TestImageStore_Open_OnlyServesImages(t *testing.T) {
	_, root := openRoot(t)
	content := filesystem.NewContentStore(root)
	images := filesystem.NewImageStore(root)
	ctx := context.Background()

	_, err := content.Put(ctx, "alice", "secret.txt", strings.NewReader("password"))
	require.NoError(t, err)

	for _, key := range []string{"alice/secret.txt", "alice", "alice/images", "alice/images/p"} {
		_, err := images.Open(ctx, key)
		assert.ErrorIs(t, err, locker.ErrNotFound, "key %q", key)
	}
}

func TestImageStore_Open_RequiresGeneratedName(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewImageStore(root)
	ctx := context.Background()

	imgDir := filepath.Join(dir, "alice", "images", "p")
	require.NoError(t, os.MkdirAll(imgDir, 0o700))
	for _, name := range []string{"vault", "vault.txt", "vault.png", "0123456789ABCDEF.png", "0123456789abcdef"} {
		require.NoError(t, os.WriteFile(filepath.Join(imgDir, name), []byte("my-passwords"), 0o600))

		_, err := store.Open(ctx, "alice/images/p/"+name)
		assert.ErrorIs(t, err, locker.ErrNotFound, "name %q", name)
	}
}

func TestImageStore_Open_Traversal(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewImageStore(root)

	for _, key := range []string{"../etc/passwd", "alice/images/p/../../../../x.png", "a\x00b"} {
		_, err := store.Open(context.Background(), key)
		assert.ErrorIs(t, err, locker.ErrPathEscape, "key %q", key)
	}
}

func TestImageStore_Open_ContentTypes(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewImageStore(root)
	ctx := context.Background()

	tests := map[string]string{
		"a.jpg":  "image/jpeg",
		"a.svg":  "image/svg+xml",
		"a.heic": "image/heic",
		"a.ico":  "image/x-icon",
	}
	for name, want := range tests {
		key, err := store.Upload(ctx, "alice", "p", name, strings.NewReader("x"))
		require.NoError(t, err)

		img, err := store.Open(ctx, key)
		require.NoError(t, err)
		_ = img.Body.Close()
		assert.Equal(t, want, img.ContentType, name)
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "alice", "images", "p", "0123456789abcdef.bmp"), []byte("x"), 0o600))
	img, err := store.Open(ctx, "alice/images/p/0123456789abcdef.bmp")
	require.NoError(t, err)
	_ = img.Body.Close()
	assert.Equal(t, "image/bmp", img.ContentType)
}
