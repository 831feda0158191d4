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

	"github.com/google/uuid"
)

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (n int, err error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

// writeAtomic writes content to rel through a temp file in the same
// directory followed by a rename. Intermediate directories are created as
// needed. It returns the number of bytes written.
func writeAtomic(ctx context.Context, root *os.Root, rel string, content io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	dir := path.Dir(rel)
	tmp := path.Join(dir, tmpFileName())

	t, err := createTemp(root, dir, tmp)
	if err != nil {
		return 0, err
	}

	success := false
	defer func() {
		if closeErr := t.Close(); closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
			slog.Warn("failed to close tmp file", "err", closeErr)
		}
		if !success {
			if rmErr := root.Remove(filepath.FromSlash(tmp)); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Warn("failed to remove tmp file", "path", tmp, "err", rmErr)
			}
		}
	}()

	n, err := io.Copy(t, &ctxReader{ctx: ctx, r: content})
	if err != nil {
		return 0, fmt.Errorf("could not copy contents: %w", err)
	}

	if err := t.Sync(); err != nil {
		return 0, fmt.Errorf("could not sync written file: %w", err)
	}

	if err := t.Close(); err != nil {
		return 0, fmt.Errorf("could not close written file: %w", err)
	}

	if err := root.Rename(filepath.FromSlash(tmp), filepath.FromSlash(rel)); err != nil {
		return 0, fmt.Errorf("failed to rename file: %w", err)
	}

	success = true
	return n, nil
}

// createTemp creates the temp file, creating dir first. A concurrent Delete
// may prune dir between the two steps, so a missing directory is retried
// once.
func createTemp(root *os.Root, dir, tmp string) (*os.File, error) {
	for attempt := 0; ; attempt++ {
		if dir != "." {
			if err := root.MkdirAll(filepath.FromSlash(dir), 0o750); err != nil {
				return nil, fmt.Errorf("could not create intermediate directories: %w", err)
			}
		}

		t, err := root.Create(filepath.FromSlash(tmp))
		if err == nil {
			return t, nil
		}
		if attempt > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not open temp file: %w", err)
		}
	}
}

func tmpFileName() string {
	return fmt.Sprintf(".t%s", uuid.New().String())
}
