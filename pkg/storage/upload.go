package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"
)

var ErrNotImage = errors.New("storage: file is not an image")

// StoreUpload reads a multipart image and stores it, see StoreImage
func StoreUpload(ctx context.Context, b Bucket, fh *multipart.FileHeader, prefix string, preset Preset, now time.Time) (Object, error) {
	f, err := fh.Open()
	if err != nil {
		return Object{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Object{}, fmt.Errorf("failed to read upload: %w", err)
	}
	return StoreImage(ctx, b, data, fh.Filename, fh.Header.Get("Content-Type"), prefix, preset, now)
}

// sniffedExt maps the image types recognised from file contents to the
// extension the object is stored under
var sniffedExt = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// StoreImage names the object <prefix>-<millis>.<ext> and uploads it. Decodable
// images are resized to the preset and stored as JPEG. Images that cannot be
// decoded are stored as sent when their contents are a known image type, named
// after that type and never after the uploaded filename.
func StoreImage(ctx context.Context, b Bucket, data []byte, filename, contentType, prefix string, preset Preset, now time.Time) (Object, error) {
	if !IsImage(contentType) {
		return Object{}, ErrNotImage
	}

	optimized, err := Optimize(data, preset)
	if err == nil {
		return b.Upload(ctx, ObjectName(prefix, "image.jpg", now), "image/jpeg", bytes.NewReader(optimized))
	}

	sniffed := http.DetectContentType(data)
	ext, ok := sniffedExt[sniffed]
	if !ok {
		return Object{}, ErrNotImage
	}
	log.Printf("storing %s unoptimized: %v", filename, err)
	return b.Upload(ctx, ObjectName(prefix, "image."+ext, now), sniffed, bytes.NewReader(data))
}
