package storage

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/desainhub/desainhub-api/configs"
	"github.com/google/uuid"
)

type CloudinaryStorage struct{}

func NewCloudinaryStorage() *CloudinaryStorage {
	return &CloudinaryStorage{}
}

func (s *CloudinaryStorage) client() (*cloudinary.Cloudinary, error) {
	return cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
}

func (s *CloudinaryStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*StoredFile, error) {
	cld, err := s.client()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   folder,
		PublicID: fmt.Sprintf("%d_%s", time.Now().Unix(), file.Filename),
	})
	if err != nil {
		return nil, err
	}

	return &StoredFile{URL: result.SecureURL, Handle: result.PublicID}, nil
}

func (s *CloudinaryStorage) UploadBytes(ctx context.Context, data []byte, name, folder string) (*StoredFile, error) {
	cld, err := s.client()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       folder,
		PublicID:     fmt.Sprintf("%s_%s", name, uuid.New().String()),
		ResourceType: "raw",
	})
	if err != nil {
		return nil, err
	}

	return &StoredFile{URL: result.SecureURL, Handle: result.PublicID}, nil
}

func (s *CloudinaryStorage) Delete(ctx context.Context, handle string) error {
	cld, err := s.client()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err = cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: handle})
	return err
}
