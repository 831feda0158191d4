package filesystem

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/sagarc03/locker"
)

const imagesDir = "images"

// ImageStore keeps uploaded images under <root>/<user>/images/<prefix>/.
type ImageStore struct {
	root    *os.Root
	sandbox *Sandbox
}

// NewImageStore creates an ImageStore over root.
func NewImageStore(root *os.Root) *ImageStore {
	return &ImageStore{root: root, sandbox: NewSandbox(root)}
}

// Upload stores content under a random name and returns the object key
// <user>/images/<prefix>/<name>.<ext>. The extension is taken from filename
// and lowercased.
func (s *ImageStore) Upload(ctx context.Context, user, prefix, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if !locker.IsValidPrefix(prefix) {
		return "", locker.ErrInvalidPrefix
	}

	ext, ok := locker.ImageExt(filename)
	if !ok {
		return "", locker.ErrInvalidFormat
	}

	rel, err := s.sandbox.resolve(user, imagesDir, prefix, imageName(ext))
	if err != nil {
		return "", err
	}

	n, err := writeAtomic(ctx, s.root, rel, content)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	slog.Debug("image written", "path", rel, "size", n)
	return rel, nil
}

// Open resolves an object key issued by Upload. A leading "/" is ignored.
// Keys that do not have the shape <user>/images/<prefix>/<16 hex>.<ext> are reported
// as locker.ErrNotFound. The caller must close Image.Body.
func (s *ImageStore) Open(ctx context.Context, objectKey string) (locker.Image, error) {
	if err := ctx.Err(); err != nil {
		return locker.Image{}, err
	}

	rel, err := s.sandbox.resolve("", strings.TrimPrefix(objectKey, "/"))
	if err != nil {
		return locker.Image{}, err
	}

	segs := strings.Split(rel, "/")
	if len(segs) != 4 || segs[1] != imagesDir || !locker.IsValidPrefix(segs[2]) || !generatedName.MatchString(segs[3]) {
		return locker.Image{}, locker.ErrNotFound
	}

	f, err := s.root.Open(filepath.FromSlash(rel))
	if err != nil {
		if isNotExist(err) {
			return locker.Image{}, locker.ErrNotFound
		}
		return locker.Image{}, fmt.Errorf("failed to open image: %w", err)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "path", rel, "err", closeErr)
		}
		if err != nil {
			return locker.Image{}, fmt.Errorf("failed to stat image: %w", err)
		}
		return locker.Image{}, locker.ErrNotFound
	}

	return locker.Image{
		ObjectKey:   rel,
		ContentType: locker.ContentTypeForExt(path.Ext(rel)),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Body:        f,
	}, nil
}

// generatedName matches file names produced by imageName.
var generatedName = regexp.MustCompile(`^[0-9a-f]{16}\.[a-z0-9]+$`)

// imageName returns the first 16 hex characters of a random UUID plus ext.
func imageName(ext string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return id[:16] + "." + ext
}
