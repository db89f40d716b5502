// Package objectstore hides the blob backend behind the handful of calls the
// vault needs: signed GET/PUT URLs, direct reads and deletes.
package objectstore

import (
	"context"
	"errors"
	"io"
	"mime"
	"time"
)

// ErrObjectNotFound is returned by Get when no object exists under the key.
var ErrObjectNotFound = errors.New("object not found")

// Store is implemented by the MinIO and S3 adapters.
type Store interface {
	// PresignGet returns a signed GET URL. When downloadName is non-empty the
	// response is served as an attachment with that file name.
	PresignGet(ctx context.Context, key, downloadName string, ttl time.Duration) (string, error)
	// PresignPut returns a signed PUT URL bound to contentType.
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// AttachmentDisposition formats a Content-Disposition value that makes
// browsers save the response under name.
func AttachmentDisposition(name string) string {
	if name == "" {
		return "attachment"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment"
}
