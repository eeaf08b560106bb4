package application

import (
	"context"
	"io"
	"time"

	"github.com/eduticket/eduticket-api/internal/modules/filestorage/domain"
)

// FileService is the thin application layer over blob storage. Other
// modules depend on this type, never on a concrete backend.
type FileService struct {
	storage domain.BlobStorage
}

func NewFileService(storage domain.BlobStorage) *FileService {
	return &FileService{storage: storage}
}

// UploadWithKey stores content under a caller-chosen key. Callers own key
// layout so that object paths stay meaningful per module.
func (s *FileService) UploadWithKey(ctx context.Context, content io.Reader, key, contentType string) (string, error) {
	return s.storage.Upload(ctx, key, content, contentType)
}

func (s *FileService) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	return s.storage.PresignedURL(ctx, key, expiration)
}

func (s *FileService) GetPresignedDownloadURL(ctx context.Context, key, filename string, expiration time.Duration) (string, error) {
	return s.storage.PresignedDownloadURL(ctx, key, filename, expiration)
}

func (s *FileService) Delete(ctx context.Context, key string) error {
	return s.storage.Delete(ctx, key)
}
