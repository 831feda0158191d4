package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sagarc03/locker"
)

// ContentStore keeps text entries as files under <root>/<user>/<key>.
type ContentStore struct {
	root    *os.Root
	sandbox *Sandbox
}

// NewContentStore creates a ContentStore over root.
// The root provides sandboxed file operations preventing path traversal.
func NewContentStore(root *os.Root) *ContentStore {
	return &ContentStore{root: root, sandbox: NewSandbox(root)}
}

// Put atomically replaces the value of key for user and returns the new
// etag. If the filesystem clock did not move past the previous modification
// time, the file's mtime is advanced by one millisecond so the etag changes.
func (s *ContentStore) Put(ctx context.Context, user, key string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rel, err := s.resolveKey(user, key)
	if err != nil {
		return 0, err
	}
	name := filepath.FromSlash(rel)

	var prev int64
	hadPrev := false
	if info, statErr := s.root.Lstat(name); statErr == nil {
		if info.IsDir() {
			return 0, fmt.Errorf("put: %w: key names a directory", locker.ErrInvalidInput)
		}
		prev, hadPrev = locker.EtagOf(info.ModTime()), true
	} else if errors.Is(statErr, syscall.ENOTDIR) {
		return 0, fmt.Errorf("put: %w: parent of key is an entry", locker.ErrInvalidInput)
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return 0, fmt.Errorf("put: %w", statErr)
	}

	if _, err := writeAtomic(ctx, s.root, rel, content); err != nil {
		return 0, fmt.Errorf("put: %w", err)
	}

	info, err := s.root.Stat(name)
	if err != nil {
		return 0, fmt.Errorf("put: stat written file: %w", err)
	}

	etag := locker.EtagOf(info.ModTime())
	if hadPrev && etag <= prev {
		etag = prev + 1
		mtime := time.UnixMilli(etag)
		if err := s.root.Chtimes(name, mtime, mtime); err != nil {
			return 0, fmt.Errorf("put: advance mtime: %w", err)
		}
	}

	return etag, nil
}

// Get reads the value of key for user. Returns locker.ErrNotFound if the
// key does not exist.
func (s *ContentStore) Get(ctx context.Context, user, key string) (locker.Entry, error) {
	if err := ctx.Err(); err != nil {
		return locker.Entry{}, err
	}

	rel, err := s.resolveKey(user, key)
	if err != nil {
		return locker.Entry{}, err
	}

	f, err := s.root.Open(filepath.FromSlash(rel))
	if err != nil {
		if isNotExist(err) {
			return locker.Entry{}, locker.ErrNotFound
		}
		return locker.Entry{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", rel, "err", closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return locker.Entry{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return locker.Entry{}, locker.ErrNotFound
	}

	data, err := io.ReadAll(&ctxReader{ctx: ctx, r: f})
	if err != nil {
		return locker.Entry{}, fmt.Errorf("failed to read file: %w", err)
	}

	return locker.Entry{Content: string(data), Etag: locker.EtagOf(info.ModTime())}, nil
}

// Delete removes key for user. Deleting an absent key succeeds. Directories
// left empty are removed up to and including the user's directory; failures
// there are only logged.
func (s *ContentStore) Delete(ctx context.Context, user, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := s.resolveKey(user, key)
	if err != nil {
		return err
	}
	name := filepath.FromSlash(rel)

	info, err := s.root.Lstat(name)
	if err != nil {
		if isNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not stat file: %w", err)
	}
	if info.IsDir() {
		return nil
	}

	if err := s.root.Remove(name); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("could not delete file: %w", err)
	}

	s.prune(user, path.Dir(rel))
	return nil
}

func (s *ContentStore) prune(user, dir string) {
	for dir != "." && dir != "" {
		entries, err := fs.ReadDir(s.root.FS(), dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := s.root.Remove(filepath.FromSlash(dir)); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("failed to remove empty directory", "path", dir, "err", err)
			}
			return
		}
		if dir == user {
			return
		}
		dir = path.Dir(dir)
	}
}

// Etag reports the etag of key for user without reading it. The bool is
// false when the key does not exist.
func (s *ContentStore) Etag(ctx context.Context, user, key string) (int64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}

	rel, err := s.resolveKey(user, key)
	if err != nil {
		return 0, false, err
	}

	info, err := s.root.Stat(filepath.FromSlash(rel))
	if err != nil {
		if isNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("could not stat file: %w", err)
	}
	if info.IsDir() {
		return 0, false, nil
	}

	return locker.EtagOf(info.ModTime()), true, nil
}

// resolveKey maps key under user and refuses the images subtree, which
// belongs to ImageStore and is served without authentication.
func (s *ContentStore) resolveKey(user, key string) (string, error) {
	rel, err := s.sandbox.resolve(user, key)
	if err != nil {
		return "", err
	}
	if seg, _, _ := strings.Cut(strings.TrimPrefix(rel, user+"/"), "/"); seg == imagesDir {
		return "", fmt.Errorf("%w: %s/ is reserved for images", locker.ErrInvalidInput, imagesDir)
	}
	return rel, nil
}

// isNotExist also treats a regular file in place of a parent directory as
// absence: "a/b" cannot exist while "a" is an entry.
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR)
}
