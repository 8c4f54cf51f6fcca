package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"
)

// LocalStorage writes files under a base directory and serves them by
// relative URL. Suitable for single-instance deployments and tests.
type LocalStorage struct {
	BaseDir string
}

func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{BaseDir: baseDir}
}

func (s *LocalStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (*StoredFile, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	return s.UploadBytes(ctx, data, file.Filename, folder)
}

func (s *LocalStorage) UploadBytes(ctx context.Context, data []byte, name, folder string) (*StoredFile, error) {
	dir := filepath.Join(s.BaseDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	fileName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(name))
	path := filepath.Join(dir, fileName)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, err
	}

	return &StoredFile{
		URL:    "/" + filepath.ToSlash(path),
		Handle: path,
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, handle string) error {
	err := os.Remove(handle)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
