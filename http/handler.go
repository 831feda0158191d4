package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/sagarc03/locker"
)

// multipartMemory is the part of a multipart upload kept in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// Service runs store operations for the identity carried by ctx.
type Service interface {
	Put(ctx context.Context, key, content string) (int64, error)
	Get(ctx context.Context, key string) (locker.Entry, error)
	Delete(ctx context.Context, key string) error
	Etag(ctx context.Context, key string) (int64, bool, error)
	UploadImage(ctx context.Context, prefix, filename string, content io.Reader) (string, error)
	OpenImage(ctx context.Context, objectKey string) (locker.Image, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age" validate:"min=0"`
}

type HandlerConfig struct {
	CORS          CORSConfig
	MaxUploadSize int64 // bytes, 0 means unlimited
}

// Handler serves the locker HTTP API.
type Handler struct {
	config   HandlerConfig
	auth     Authenticator
	service  Service
	validate *validator.Validate
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type putRequest struct {
	Key     string `json:"key" validate:"required"`
	Content string `json:"content"`
}

type keyRequest struct {
	Key string `json:"key" validate:"required"`
}

type etagResponse struct {
	Etag int64 `json:"etag"`
}

type uploadResponse struct {
	ObjectKey string `json:"objectKey"`
}

// NewHandler creates a new Handler with the given configuration, authenticator and service.
func NewHandler(config *HandlerConfig, auth Authenticator, service Service) *Handler {
	return &Handler{
		config:   *config,
		auth:     auth,
		service:  service,
		validate: validator.New(),
	}
}

// Router returns an http.Handler with every route mounted.
// AuthMiddleware guards the whole router, so unauthenticated requests to
// unknown paths or with the wrong method get 401 rather than 404 or 405.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLog)
	r.Use(Recover)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Use(AuthMiddleware(h.auth))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, msgNotAllowed)
	})

	r.Post("/login", h.handleLogin)
	r.Get("/image/*", h.handleImage)
	r.Post("/put", h.handlePut)
	r.Post("/get", h.handleGet)
	r.Post("/delete", h.handleDelete)
	r.Post("/getEtag", h.handleEtag)
	r.Post("/uploadImage/{prefix}", h.handleUploadImage)

	return r
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decode(w, r, &req); err != nil {
		if isTooLarge(err) {
			WriteError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		WriteError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteResult(w, token)
}

func (h *Handler) handlePut(w http.ResponseWriter, r *http.Request) {
	var req putRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleDecodeError(w, err)
		return
	}

	etag, err := h.service.Put(r.Context(), req.Key, req.Content)
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteResult(w, etagResponse{Etag: etag})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleDecodeError(w, err)
		return
	}

	entry, err := h.service.Get(r.Context(), req.Key)
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteResult(w, entry)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleDecodeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), req.Key); err != nil {
		HandleError(w, err)
		return
	}

	WriteResult(w, nil)
}

func (h *Handler) handleEtag(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if err := h.decode(w, r, &req); err != nil {
		h.handleDecodeError(w, err)
		return
	}

	etag, found, err := h.service.Etag(r.Context(), req.Key)
	if err != nil {
		HandleError(w, err)
		return
	}

	if !found {
		WriteResult(w, nil)
		return
	}
	WriteResult(w, etagResponse{Etag: etag})
}

func (h *Handler) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	if !locker.IsValidPrefix(prefix) {
		HandleError(w, locker.ErrInvalidPrefix)
		return
	}

	h.limitBody(w, r)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.handleDecodeError(w, fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		HandleError(w, fmt.Errorf("%w: missing file part: %w", ErrBadRequest, err))
		return
	}
	defer func() { _ = file.Close() }()

	objectKey, err := h.service.UploadImage(r.Context(), prefix, header.Filename, file)
	if err != nil {
		HandleError(w, err)
		return
	}

	WriteResult(w, uploadResponse{ObjectKey: objectKey})
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	// r.URL.Path is always unescaped; the wildcard param may not be.
	objectKey := strings.TrimPrefix(r.URL.Path, "/image/")

	img, err := h.service.OpenImage(r.Context(), objectKey)
	if err != nil {
		HandleError(w, err)
		return
	}
	defer func() { _ = img.Body.Close() }()

	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")

	body := &loggedBody{ReadSeeker: img.Body, objectKey: img.ObjectKey}
	http.ServeContent(w, r, path.Base(img.ObjectKey), img.ModTime, body)
}

// loggedBody reports read failures that http.ServeContent would otherwise
// swallow once the response has started.
type loggedBody struct {
	io.ReadSeeker
	objectKey string
}

func (b *loggedBody) Read(p []byte) (int, error) {
	n, err := b.ReadSeeker.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Error("image stream failed", "object_key", b.objectKey, "error", err)
	}
	return n, err
}

// decode reads a size-limited JSON body into dst and validates it.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	h.limitBody(w, r)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode body: %w", ErrBadRequest, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

func (h *Handler) handleDecodeError(w http.ResponseWriter, err error) {
	if isTooLarge(err) {
		WriteError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}
	HandleError(w, err)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (h *Handler) limitBody(w http.ResponseWriter, r *http.Request) {
	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}
}
