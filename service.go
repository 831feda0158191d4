package locker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ContentStorage defines the filesystem operations behind the key/value API.
// Every method takes the owning username explicitly; implementations must
// confine all access to that user's directory.
//
// All methods accept a context for cancellation. Implementations hold no
// state between calls and must be safe for concurrent use.
type ContentStorage interface {
	// Put writes content under key, replacing any previous value.
	//
	// Returns:
	//   - int64: the new etag (modification time in Unix milliseconds)
	//   - error: ErrPathEscape or ErrInvalidInput for unusable keys, or I/O errors
	//
	// Implementations should:
	//   - Create parent directories lazily
	//   - Guarantee the returned etag differs from the previous one for the key
	Put(ctx context.Context, user, key string, content io.Reader) (int64, error)

	// Get reads the value stored under key.
	//
	// Returns:
	//   - Entry: content and etag
	//   - error: ErrNotFound if the key was never written, or I/O errors
	Get(ctx context.Context, user, key string) (Entry, error)

	// Delete removes key. Deleting an absent key succeeds.
	// Implementations may prune directories left empty, but a failure to do
	// so must not fail the call.
	Delete(ctx context.Context, user, key string) error

	// Etag reports the etag of key without reading its content.
	//
	// Returns:
	//   - int64: the etag when present
	//   - bool: false when the key does not exist (not an error)
	//   - error: sandbox or I/O errors
	Etag(ctx context.Context, user, key string) (int64, bool, error)
}

// ImageStorage defines the image blob operations.
type ImageStorage interface {
	// Upload validates prefix and filename, stores content under a random
	// name and returns the public object key.
	//
	// Returns:
	//   - string: object key encoding user, prefix and generated name
	//   - error: ErrInvalidPrefix, ErrInvalidFormat, ErrPathEscape or I/O errors
	Upload(ctx context.Context, user, prefix, filename string, content io.Reader) (string, error)

	// Open resolves an object key issued by Upload. Object keys are global:
	// no user is involved. The caller must close Image.Body.
	//
	// Returns:
	//   - Image: content type, size, modification time and body
	//   - error: ErrNotFound, ErrPathEscape or I/O errors
	Open(ctx context.Context, objectKey string) (Image, error)
}

// Service runs the content and image operations for the identity carried by
// the context. It never reads identity from anywhere else.
type Service struct {
	content ContentStorage
	images  ImageStorage
}

func NewService(content ContentStorage, images ImageStorage) (*Service, error) {
	if content == nil {
		return nil, fmt.Errorf("new service: %w: content storage is required", ErrInvalidInput)
	}
	if images == nil {
		return nil, fmt.Errorf("new service: %w: image storage is required", ErrInvalidInput)
	}
	return &Service{content: content, images: images}, nil
}

func identity(ctx context.Context, op string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	user, ok := IdentityFromContext(ctx)
	if !ok || user.Username == "" {
		return User{}, fmt.Errorf("%s: %w: no identity in context", op, ErrUnauthorized)
	}
	return user, nil
}

// Put stores content under key for the current user and returns the new etag.
func (s *Service) Put(ctx context.Context, key, content string) (int64, error) {
	user, err := identity(ctx, "put")
	if err != nil {
		return 0, err
	}

	if !IsValidKey(key) {
		return 0, fmt.Errorf("put: %w: invalid key", ErrInvalidInput)
	}

	slog.Info("put", "username", user.Username, "key", key, "size", len(content))

	etag, err := s.content.Put(ctx, user.Username, key, strings.NewReader(content))
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", key, err)
	}

	slog.Info("put succeeded", "username", user.Username, "key", key, "etag", etag)
	return etag, nil
}

// Get returns the content and etag stored under key for the current user.
// ErrNotFound is an expected outcome and is not logged as an error.
func (s *Service) Get(ctx context.Context, key string) (Entry, error) {
	user, err := identity(ctx, "get")
	if err != nil {
		return Entry{}, err
	}

	if !IsValidKey(key) {
		return Entry{}, fmt.Errorf("get: %w: invalid key", ErrInvalidInput)
	}

	entry, err := s.content.Get(ctx, user.Username, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			slog.Info("get not found", "username", user.Username, "key", key)
		}
		return Entry{}, fmt.Errorf("get %s: %w", key, err)
	}

	slog.Info("get succeeded", "username", user.Username, "key", key, "size", len(entry.Content))
	return entry, nil
}

// Delete removes key for the current user. Deleting an absent key succeeds.
func (s *Service) Delete(ctx context.Context, key string) error {
	user, err := identity(ctx, "delete")
	if err != nil {
		return err
	}

	if !IsValidKey(key) {
		return fmt.Errorf("delete: %w: invalid key", ErrInvalidInput)
	}

	slog.Info("delete", "username", user.Username, "key", key)

	if err := s.content.Delete(ctx, user.Username, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Etag reports the etag of key for the current user. The bool is false when
// the key does not exist.
func (s *Service) Etag(ctx context.Context, key string) (int64, bool, error) {
	user, err := identity(ctx, "etag")
	if err != nil {
		return 0, false, err
	}

	if !IsValidKey(key) {
		return 0, false, fmt.Errorf("etag: %w: invalid key", ErrInvalidInput)
	}

	etag, found, err := s.content.Etag(ctx, user.Username, key)
	if err != nil {
		return 0, false, fmt.Errorf("etag %s: %w", key, err)
	}

	slog.Debug("etag", "username", user.Username, "key", key, "found", found)
	return etag, found, nil
}

// UploadImage stores an image for the current user under prefix and returns
// its object key.
func (s *Service) UploadImage(ctx context.Context, prefix, filename string, content io.Reader) (string, error) {
	user, err := identity(ctx, "upload image")
	if err != nil {
		return "", err
	}

	objectKey, err := s.images.Upload(ctx, user.Username, prefix, filename, content)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	slog.Info("image uploaded", "username", user.Username, "prefix", prefix, "object_key", objectKey)
	return objectKey, nil
}

// OpenImage opens a previously uploaded image. No identity is required.
func (s *Service) OpenImage(ctx context.Context, objectKey string) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, fmt.Errorf("open image: %w", err)
	}

	img, err := s.images.Open(ctx, objectKey)
	if err != nil {
		return Image{}, fmt.Errorf("open image: %w", err)
	}
	return img, nil
}
