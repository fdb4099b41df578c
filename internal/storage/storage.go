// Package storage keeps blog images and avatars in an object store. Every
// object is owned by exactly one row; callers upload the replacement first
// and delete the previous key afterwards.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/apperr"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type Storage interface {
	// Upload stores data under key and returns the public path of the object.
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PublicURL(key string) string
	Delete(ctx context.Context, keys ...string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
}

const (
	PrefixBlogs   = "blogs"
	PrefixAvatars = "avatars"
)

// MaxImageSize bounds accepted uploads.
const MaxImageSize = 5 << 20

var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectImage sniffs data and returns its content type and file extension.
// Anything that is not an allow-listed image is rejected.
func DetectImage(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", apperr.New(apperr.InvalidInput, "image is empty")
	}
	if len(data) > MaxImageSize {
		return "", "", apperr.New(apperr.InvalidInput, "image is larger than 5MB")
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if ext, ok := allowedImages[m.String()]; ok {
			return m.String(), ext, nil
		}
	}
	return "", "", apperr.New(apperr.InvalidInput, fmt.Sprintf("unsupported image type %s", mt.String()))
}

// NewKey returns a random object key such as blogs/<uuid>.png.
func NewKey(prefix, ext string) string {
	return prefix + "/" + uuid.NewString() + ext
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

func nonEmpty(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

func notFound(key string) error {
	return apperr.New(apperr.NotFound, fmt.Sprintf("object %s not found", key))
}
