package upload

import (
	"bytes"
	"context"
	"log"
	"mime"
	"path"
	"strings"

	"github.com/circleband/backend/internal/storage"
)

// Result is the uniform outcome of an upload or delete. Failures carry the
// error message instead of propagating it; the gateway never panics or returns
// an error past this boundary.
type Result struct {
	Success          bool   `json:"success"`
	ObjectKey        string `json:"object_key,omitempty"`
	FileURL          string `json:"file_url,omitempty"`
	OriginalFilename string `json:"original_filename,omitempty"`
	Size             int    `json:"size,omitempty"`
	Error            string `json:"error,omitempty"`

	cause error
}

// Cause returns the underlying error of a failed result, nil on success.
func (r *Result) Cause() error { return r.cause }

// Gateway orchestrates validation, key generation, and the remote put. The
// storage client is injected at construction; there is no package-level
// client instance.
type Gateway struct {
	store    storage.Storage
	allowRaw bool
}

// NewGateway creates an upload Gateway backed by store. allowRaw enables the
// literal-bytes fallback for non-base64 JSON payloads (see DecodePayload).
func NewGateway(store storage.Storage, allowRaw bool) *Gateway {
	return &Gateway{store: store, allowRaw: allowRaw}
}

// Upload validates data as an image, generates a key, and puts the bytes to
// object storage. One outbound call, no retries: a failed put must be
// resubmitted by the caller.
func (g *Gateway) Upload(ctx context.Context, data []byte, filename, folder string) *Result {
	if err := ValidateName(filename, folder); err != nil {
		return failure(err)
	}
	if err := ValidateImage(data); err != nil {
		return failure(err)
	}

	key := GenerateKey(filename, folder)
	contentType := mime.TypeByExtension(strings.ToLower(path.Ext(filename)))

	if err := g.store.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		log.Printf("upload: put %q failed: %v", key, err)
		return failure(err)
	}

	return &Result{
		Success:          true,
		ObjectKey:        key,
		FileURL:          g.store.PublicURL(key),
		OriginalFilename: filename,
		Size:             len(data),
	}
}

// UploadBase64 decodes a JSON image_data string and uploads the result.
func (g *Gateway) UploadBase64(ctx context.Context, imageData, filename, folder string) *Result {
	data, err := DecodePayload(imageData, g.allowRaw)
	if err != nil {
		return failure(err)
	}
	return g.Upload(ctx, data, filename, folder)
}

// Delete removes the object at key. Deleting a key that was never uploaded
// yields a failure result, not a crash.
func (g *Gateway) Delete(ctx context.Context, objectKey string) *Result {
	if objectKey == "" {
		return failure(ErrInvalidKey)
	}
	if err := g.store.Delete(ctx, objectKey); err != nil {
		log.Printf("upload: delete %q failed: %v", objectKey, err)
		return failure(err)
	}
	return &Result{Success: true, ObjectKey: objectKey}
}

func failure(err error) *Result {
	return &Result{Success: false, Error: err.Error(), cause: err}
}
