package clientcli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Client performs operations against a locker server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()

	c := &Client{
		config: &Config{
			Endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
			Username: cfg.Username,
			Token:    cfg.Token,
		},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Token returns the bearer token the client currently sends.
func (c *Client) Token() string {
	return c.config.Token
}

// Login exchanges credentials for a token. On success the client uses the
// new token for subsequent calls.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	req := map[string]string{"username": username, "password": password}

	var token string
	if err := c.call(ctx, "/login", req, &token); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	if token == "" {
		return "", fmt.Errorf("login: %w: empty token", ErrBadPayload)
	}

	c.config.Token = token
	c.config.Username = username
	return token, nil
}

// Put stores content under key.
func (c *Client) Put(ctx context.Context, key, content string) (*PutResult, error) {
	if key == "" {
		return nil, fmt.Errorf("put: %w", ErrEmptyKey)
	}

	var data struct {
		Etag int64 `json:"etag"`
	}
	req := map[string]string{"key": key, "content": content}
	if err := c.call(ctx, "/put", req, &data); err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}

	return &PutResult{Key: key, Etag: data.Etag}, nil
}

// Get reads the value stored under key. Returns ErrNotFound if absent.
func (c *Client) Get(ctx context.Context, key string) (*GetResult, error) {
	if key == "" {
		return nil, fmt.Errorf("get: %w", ErrEmptyKey)
	}

	var data struct {
		Content string `json:"content"`
		Etag    int64  `json:"etag"`
	}
	if err := c.call(ctx, "/get", map[string]string{"key": key}, &data); err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}

	return &GetResult{Key: key, Content: data.Content, Etag: data.Etag}, nil
}

// Etag reports the etag of key without fetching its content.
func (c *Client) Etag(ctx context.Context, key string) (*EtagResult, error) {
	if key == "" {
		return nil, fmt.Errorf("etag: %w", ErrEmptyKey)
	}

	var data *struct {
		Etag int64 `json:"etag"`
	}
	if err := c.call(ctx, "/getEtag", map[string]string{"key": key}, &data); err != nil {
		return nil, fmt.Errorf("etag %s: %w", key, err)
	}

	if data == nil {
		return &EtagResult{Key: key}, nil
	}
	return &EtagResult{Key: key, Etag: data.Etag, Found: true}, nil
}

// Delete deletes one or more keys.
// Continues on error, collecting results for all keys.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Keys) == 0 {
		return nil, ErrNoKeys
	}

	results := make([]DeleteResult, 0, len(opts.Keys))

	for _, key := range opts.Keys {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		err := c.call(ctx, "/delete", map[string]string{"key": key}, nil)
		results = append(results, DeleteResult{Key: key, Deleted: err == nil, Err: err})
	}

	return results, nil
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// UploadImage uploads a local image file under prefix. The file is
// streamed, not buffered.
func (c *Client) UploadImage(ctx context.Context, opts UploadImageOptions) (*UploadImageResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload image: %w", ErrEmptyPath)
	}

	file, err := os.Open(opts.LocalPath) //#nosec G304 -- localPath is user-provided input
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filepath.Base(opts.LocalPath))
		if err == nil {
			_, err = io.Copy(part, file)
		}
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	endpoint := c.config.Endpoint + "/uploadImage/" + url.PathEscape(opts.Prefix)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		_ = pr.CloseWithError(err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var data struct {
		ObjectKey string `json:"objectKey"`
	}
	if err := c.do(req, &data); err != nil {
		_ = pr.CloseWithError(err)
		return nil, fmt.Errorf("upload image: %w", err)
	}

	return &UploadImageResult{
		LocalPath: opts.LocalPath,
		ObjectKey: data.ObjectKey,
		URL:       c.ImageURL(data.ObjectKey),
	}, nil
}

// ImageURL returns the public URL of an object key. Each segment is
// path-escaped so names containing '?', '#' or '%' survive the round trip.
func (c *Client) ImageURL(objectKey string) string {
	segs := strings.Split(strings.TrimPrefix(objectKey, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return c.config.Endpoint + "/image/" + strings.Join(segs, "/")
}

// FetchImage downloads an image by object key. No token is needed.
// If opts.LocalPath is "-", the content is returned via the io.ReadCloser and must be closed by the caller.
// Otherwise, the content is written to the file and the io.ReadCloser is nil.
func (c *Client) FetchImage(ctx context.Context, opts FetchImageOptions) (*FetchImageResult, io.ReadCloser, error) {
	objectKey := strings.TrimPrefix(opts.ObjectKey, "/")
	if objectKey == "" {
		return nil, nil, fmt.Errorf("fetch image: %w", ErrEmptyKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ImageURL(objectKey), http.NoBody)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, nil, parseServerError(resp.StatusCode, body)
	}

	result := &FetchImageResult{
		ObjectKey:   objectKey,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		return result, resp.Body, nil
	}

	localPath := opts.LocalPath
	if localPath == "" {
		localPath = path.Base(objectKey)
	}
	result.LocalPath = localPath

	dir := filepath.Dir(localPath)
	if dir != "" && dir != "." {
		if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("create directory: %w", mkdirErr)
		}
	}

	file, createErr := os.Create(localPath) //#nosec G304 -- localPath is user-provided input
	if createErr != nil {
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("create file: %w", createErr)
	}

	written, copyErr := io.Copy(file, resp.Body)
	_ = resp.Body.Close()
	if copyErr != nil {
		_ = file.Close()
		return nil, nil, fmt.Errorf("write file: %w", copyErr)
	}

	if closeErr := file.Close(); closeErr != nil {
		return nil, nil, fmt.Errorf("close file: %w", closeErr)
	}

	result.Size = written
	return result, nil, nil
}

// call POSTs body as JSON to route and decodes the envelope's data into
// out. out may be nil when no data is expected.
func (c *Client) call(ctx context.Context, route string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint+route, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return parseServerError(resp.StatusCode, raw)
		}
		return fmt.Errorf("parse response: %w", err)
	}

	if env.Code != http.StatusOK {
		return &APIError{StatusCode: env.Code, Message: env.Message}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrBadPayload, err)
	}
	return nil
}

// parseServerError builds an APIError from a non-envelope response.
func parseServerError(statusCode int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Code != 0 {
		return &APIError{StatusCode: env.Code, Message: env.Message}
	}
	return &APIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
}

// APIError represents an error envelope returned by the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the key or image does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrUnauthorized is returned for bad credentials or a missing, invalid
	// or revoked token (401).
	ErrUnauthorized = &APIError{StatusCode: http.StatusUnauthorized}

	// ErrBadRequest is returned when the server rejects the input (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
