// Package storage persists uploaded image batches and hands back public
// URLs. Two interchangeable strategies exist: local disk (served by the
// app's /uploads route) and an S3-compatible object host.
package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Storage interface {
	// Store persists one uploaded file under the given category and
	// returns its public URL.
	Store(ctx context.Context, file *multipart.FileHeader, category string) (string, error)

	// Remove deletes the stored file a previous Store returned url for.
	// Unknown URLs are not an error.
	Remove(ctx context.Context, url string) error
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.]`)

// SafeFileName sanitizes the client-supplied name and prefixes it with a
// timestamp and a short random id so concurrent uploads never collide.
func SafeFileName(original string) string {
	clean := unsafeChars.ReplaceAllString(original, "_")
	return fmt.Sprintf("%d_%s_%s", time.Now().UnixMilli(), uuid.NewString()[:8], clean)
}
