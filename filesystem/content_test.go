package filesystem_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/locker"
	"github.com/sagarc03/locker/filesystem"
)

func TestContentStore_PutGet(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	etag, err := store.Put(ctx, "alice", "notes/today.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Positive(t, etag)

	data, err := os.ReadFile(filepath.Join(dir, "alice", "notes", "today.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	entry, err := store.Get(ctx, "alice", "notes/today.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", entry.Content)
	assert.Equal(t, etag, entry.Etag)
}

func TestContentStore_Put_EmptyContent(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	_, err := store.Put(ctx, "alice", "empty", strings.NewReader(""))
	require.NoError(t, err)

	entry, err := store.Get(ctx, "alice", "empty")
	require.NoError(t, err)
	assert.Empty(t, entry.Content)
}

func TestContentStore_Put_EtagAdvancesOnOverwrite(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	prev, err := store.Put(ctx, "alice", "k", strings.NewReader("v0"))
	require.NoError(t, err)

	for i := 1; i <= 20; i++ {
		etag, err := store.Put(ctx, "alice", "k", strings.NewReader(fmt.Sprintf("v%d", i)))
		require.NoError(t, err)
		assert.Greater(t, etag, prev, "overwrite %d", i)

		got, found, err := store.Etag(ctx, "alice", "k")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, etag, got, "stored etag matches returned etag")

		prev = etag
	}
}

func TestContentStore_Put_KeyIsDirectory(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	_, err := store.Put(ctx, "alice", "dir/file", strings.NewReader("x"))
	require.NoError(t, err)

	_, err = store.Put(ctx, "alice", "dir", strings.NewReader("x"))
	assert.ErrorIs(t, err, locker.ErrInvalidInput)

	_, err = store.Put(ctx, "alice", "dir/file/child", strings.NewReader("x"))
	assert.ErrorIs(t, err, locker.ErrInvalidInput)

	_, err = store.Get(ctx, "alice", "dir")
	assert.ErrorIs(t, err, locker.ErrNotFound)

	_, found, err := store.Etag(ctx, "alice", "dir")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestContentStore_Get_NotFound(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)

	_, err := store.Get(context.Background(), "alice", "missing")
	assert.ErrorIs(t, err, locker.ErrNotFound)

	_, err = store.Get(context.Background(), "alice", "missing/below/file")
	assert.ErrorIs(t, err, locker.ErrNotFound)
}

func TestContentStore_UserIsolation(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	_, err := store.Put(ctx, "alice", "secret", strings.NewReader("alice's"))
	require.NoError(t, err)

	_, err = store.Get(ctx, "bob", "secret")
	assert.ErrorIs(t, err, locker.ErrNotFound)

	_, err = store.Get(ctx, "bob", "../alice/secret")
	assert.ErrorIs(t, err, locker.ErrPathEscape)

	_, err = store.Put(ctx, "bob", "../alice/secret", strings.NewReader("overwritten"))
	assert.ErrorIs(t, err, locker.ErrPathEscape)

	err = store.Delete(ctx, "bob", "../alice/secret")
	assert.ErrorIs(t, err, locker.ErrPathEscape)

	_, _, err = store.Etag(ctx, "bob", "../alice/secret")
	assert.ErrorIs(t, err, locker.ErrPathEscape)

	entry, err := store.Get(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice's", entry.Content)
}

func TestContentStore_ImagesSubtreeReserved(t *testing.T) {
	_, root := openRoot(t)
	content := filesystem.NewContentStore(root)
	ctx := context.Background()

	for _, key := range []string{"images/p/vault", "images/p/0123456789abcdef.png", "images", "./images/p/x", "notes/../images/p/x"} {
		_, err := content.Put(ctx, "alice", key, strings.NewReader("my-passwords"))
		assert.ErrorIs(t, err, locker.ErrInvalidInput, "put %q", key)

		_, err = content.Get(ctx, "alice", key)
		assert.ErrorIs(t, err, locker.ErrInvalidInput, "get %q", key)

		_, _, err = content.Etag(ctx, "alice", key)
		assert.ErrorIs(t, err, locker.ErrInvalidInput, "etag %q", key)

		assert.ErrorIs(t, content.Delete(ctx, "alice", key), locker.ErrInvalidInput, "delete %q", key)
	}

	_, err := content.Put(ctx, "alice", "notes/images/x", strings.NewReader("ok"))
	require.NoError(t, err)
}

func TestContentStore_SymlinkEscape(t *testing.T) {
	dir, root := openRoot(t)
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "loot"), []byte("x"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o750))
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "alice", "escape")))

	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	_, err := store.Get(ctx, "alice", "escape/loot")
	assert.ErrorIs(t, err, locker.ErrPathEscape)

	_, err = store.Put(ctx, "alice", "escape/planted", strings.NewReader("x"))
	assert.ErrorIs(t, err, locker.ErrPathEscape)

	_, err = os.Stat(filepath.Join(outside, "planted"))
	assert.True(t, os.IsNotExist(err), "nothing written outside the root")
}

func TestContentStore_Delete(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	_, err := store.Put(ctx, "alice", "a/b/c.txt", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = store.Put(ctx, "alice", "keep.txt", strings.NewReader("y"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "alice", "a/b/c.txt"))

	_, err = store.Get(ctx, "alice", "a/b/c.txt")
	assert.ErrorIs(t, err, locker.ErrNotFound)

	_, err = os.Stat(filepath.Join(dir, "alice", "a"))
	assert.True(t, os.IsNotExist(err), "empty directories pruned")

	_, err = os.Stat(filepath.Join(dir, "alice", "keep.txt"))
	assert.NoError(t, err, "siblings untouched")
}

func TestContentStore_Delete_PrunesUserDirectory(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	_, err := store.Put(ctx, "alice", "only", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "alice", "only"))

	_, err = os.Stat(filepath.Join(dir, "alice"))
	assert.True(t, os.IsNotExist(err))

	_, err = os.Stat(dir)
	assert.NoError(t, err, "storage root survives")
}

func TestContentStore_Delete_Idempotent(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	assert.NoError(t, store.Delete(ctx, "alice", "never-written"))

	_, err := store.Put(ctx, "alice", "k", strings.NewReader("x"))
	require.NoError(t, err)

	assert.NoError(t, store.Delete(ctx, "alice", "k"))
	assert.NoError(t, store.Delete(ctx, "alice", "k"))
}

func TestContentStore_Etag_Absent(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)

	etag, found, err := store.Etag(context.Background(), "alice", "nothing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, etag)
}

func TestContentStore_ContextCanceled(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Put(ctx, "alice", "k", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Get(ctx, "alice", "k")
	assert.ErrorIs(t, err, context.Canceled)

	err = store.Delete(ctx, "alice", "k")
	assert.ErrorIs(t, err, context.Canceled)

	_, _, err = store.Etag(ctx, "alice", "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestContentStore_Put_CanceledDuringCopyLeavesNoTrace(t *testing.T) {
	dir, root := openRoot(t)
	store := filesystem.NewContentStore(root)

	ctx, cancel := context.WithCancel(context.Background())
	r := &cancelingReader{data: []byte("test content"), cancel: cancel}

	_, err := store.Put(ctx, "alice", "k", r)
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(filepath.Join(dir, "alice"))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp file removed")
}

type cancelingReader struct {
	data   []byte
	pos    int
	cancel context.CancelFunc
}

func (r *cancelingReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	r.cancel()
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

func TestContentStore_ConcurrentWrites(t *testing.T) {
	_, root := openRoot(t)
	store := filesystem.NewContentStore(root)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := store.Put(ctx, "alice", fmt.Sprintf("dir/file-%d", n), strings.NewReader(fmt.Sprintf("content-%d", n)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := range 10 {
		entry, err := store.Get(ctx, "alice", fmt.Sprintf("dir/file-%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("content-%d", i), entry.Content)
	}
}
