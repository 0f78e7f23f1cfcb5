package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBucket keeps objects on disk under <root>/<bucket> and serves them from <baseURL>/storage/<bucket>/
type LocalBucket struct {
	dir     string
	bucket  string
	baseURL string
}

func NewLocalBucket(root, bucket, baseURL string) (*LocalBucket, error) {
	dir := filepath.Join(root, bucket)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return &LocalBucket{dir: dir, bucket: bucket, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir is the directory the HTTP server exposes
func (b *LocalBucket) Dir() string { return b.dir }

// Route is the URL path prefix objects are served from
func (b *LocalBucket) Route() string { return "/storage/" + b.bucket }

func (b *LocalBucket) PublicURL(name string) string {
	return b.baseURL + b.Route() + "/" + name
}

func (b *LocalBucket) Upload(ctx context.Context, name, contentType string, r io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if name == "" || name != filepath.Base(name) {
		return Object{}, fmt.Errorf("invalid object name %q", name)
	}

	path := filepath.Join(b.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create object: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return Object{}, fmt.Errorf("failed to write object: %w", err)
	}
	if size == 0 {
		os.Remove(path)
		return Object{}, ErrEmptyObject
	}

	return Object{
		Name:        name,
		URL:         b.PublicURL(name),
		ContentType: contentType,
		Size:        size,
	}, nil
}
