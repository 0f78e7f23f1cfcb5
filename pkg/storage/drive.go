package storage

import (
	"context"
	"fmt"
	"io"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveBucket stores objects in a Google Drive folder shared with anyone holding the link
type DriveBucket struct {
	client   *drive.Service
	folderID string
}

// NewDriveBucket authenticates with a Service Account JSON file
func NewDriveBucket(ctx context.Context, credentialsPath, folderID string) (*DriveBucket, error) {
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveBucket{client: client, folderID: folderID}, nil
}

// PublicURL takes the Drive file id returned by Upload
func (b *DriveBucket) PublicURL(fileID string) string {
	return fmt.Sprintf("https://drive.google.com/uc?id=%s", fileID)
}

func (b *DriveBucket) Upload(ctx context.Context, name, contentType string, r io.Reader) (Object, error) {
	meta := &drive.File{Name: name, MimeType: contentType}
	if b.folderID != "" {
		meta.Parents = []string{b.folderID}
	}

	file, err := b.client.Files.Create(meta).
		Media(r).
		Fields("id, name, size, mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return Object{}, fmt.Errorf("failed to upload to drive: %w", err)
	}

	_, err = b.client.Permissions.Create(file.Id, &drive.Permission{Type: "anyone", Role: "reader"}).
		Context(ctx).
		Do()
	if err != nil {
		log.Printf("warning: drive file %s is not public: %v", file.Id, err)
	}

	return Object{
		Name:        file.Name,
		URL:         b.PublicURL(file.Id),
		ContentType: file.MimeType,
		Size:        file.Size,
	}, nil
}
