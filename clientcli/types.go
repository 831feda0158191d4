package clientcli

import "encoding/json"

// envelope mirrors the JSON wrapper around every server response.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PutResult is the outcome of storing one key.
type PutResult struct {
	Key  string `json:"key"`
	Etag int64  `json:"etag"`
}

// GetResult is a stored value with its etag.
type GetResult struct {
	Key     string `json:"key"`
	Content string `json:"content"`
	Etag    int64  `json:"etag"`
}

// EtagResult reports the etag of a key. Found is false when the key does
// not exist.
type EtagResult struct {
	Key   string `json:"key"`
	Etag  int64  `json:"etag,omitempty"`
	Found bool   `json:"found"`
}

// DeleteOptions configures a delete operation.
type DeleteOptions struct {
	Keys []string
}

// DeleteResult represents the result of deleting a single key.
type DeleteResult struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// UploadImageOptions configures an image upload.
type UploadImageOptions struct {
	Prefix    string
	LocalPath string
}

// UploadImageResult is the outcome of an image upload.
type UploadImageResult struct {
	LocalPath string `json:"local_path"`
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}

// FetchImageOptions configures an image download.
type FetchImageOptions struct {
	ObjectKey string
	LocalPath string // empty = derive from object key, "-" = stdout
}

// FetchImageResult describes a downloaded image.
type FetchImageResult struct {
	ObjectKey   string `json:"object_key"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}
