package filestorage

import (
	"context"
	"fmt"

	"github.com/eduticket/eduticket-api/internal/modules/filestorage/application"
	"github.com/eduticket/eduticket-api/internal/modules/filestorage/domain"
	"github.com/eduticket/eduticket-api/internal/modules/filestorage/infrastructure/local"
	"github.com/eduticket/eduticket-api/internal/modules/filestorage/infrastructure/s3"
	"github.com/eduticket/eduticket-api/internal/shared/infrastructure/config"
)

type Module struct {
	service *application.FileService
	storage domain.BlobStorage
}

func NewModule(ctx context.Context, cfg config.FileStorageConfig) (*Module, error) {
	var storage domain.BlobStorage
	var err error

	if cfg.UseS3 {
		storage, err = s3.NewS3Storage(ctx, s3.Config{
			BucketName:     cfg.S3BucketName,
			Region:         cfg.S3Region,
			Endpoint:       cfg.S3Endpoint,
			PublicEndpoint: cfg.S3PublicEndpoint,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			UseSSL:         cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	} else {
		storage, err = local.NewLocalStorage(cfg.LocalPath, cfg.LocalBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
	}

	return &Module{
		service: application.NewFileService(storage),
		storage: storage,
	}, nil
}

// Service returns the file service for use by other modules.
func (m *Module) Service() *application.FileService {
	return m.service
}
