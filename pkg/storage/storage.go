// Package storage uploads images to a public bucket and hands back their URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

var ErrEmptyObject = errors.New("storage: empty object")

// Object is a stored blob
type Object struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Bucket is the object storage capability: upload a named blob, resolve its public URL
type Bucket interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader) (Object, error)
	PublicURL(name string) string
}

// ObjectName builds "<prefix>-<unix millis>.<ext>" keeping the extension of the uploaded file
func ObjectName(prefix, filename string, now time.Time) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s-%d.%s", prefix, now.UnixMilli(), ext)
}

// IsImage accepts the content types the editors upload
func IsImage(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/png", "image/jpeg", "image/jpg", "image/webp", "image/gif":
		return true
	}
	return false
}
