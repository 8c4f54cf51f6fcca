// Package storage abstracts the deliverable file backend so local disk and
// Cloudinary are swappable by configuration.
package storage

import (
	"context"
	"mime/multipart"

	config "github.com/desainhub/desainhub-api/configs"
)

// StoredFile is the durable result of an upload. Handle is whatever the
// backend needs to delete the file again.
type StoredFile struct {
	URL    string
	Handle string
}

type Storage interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*StoredFile, error)
	UploadBytes(ctx context.Context, data []byte, name, folder string) (*StoredFile, error)
	Delete(ctx context.Context, handle string) error
}

// FromConfig picks the backend: Cloudinary when CLOUDINARY_URL is set,
// local disk otherwise.
func FromConfig() Storage {
	if config.Config("CLOUDINARY_URL") != "" {
		return NewCloudinaryStorage()
	}
	return NewLocalStorage(config.ConfigOr("UPLOAD_DIR", "uploads"))
}
