// Package storage persists uploaded customer images.
package storage

import (
	"context"
	"fmt"

	"hotel-frontdesk/config"
)

// Storage writes an object and returns the URL it can be fetched from.
type Storage interface {
	Put(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	Delete(ctx context.Context, key string) error
}

// New picks the backend configured by STORAGE_DRIVER.
func New(ctx context.Context, cfg config.Config) (Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3(ctx, S3Options{
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			PublicDomain:    cfg.S3PublicDomain,
		})
	case "", "local":
		return NewLocal(cfg.UploadDir, cfg.UploadBaseURL), nil
	}
	return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
}
