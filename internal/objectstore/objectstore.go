// Package objectstore загружает пользовательские файлы в S3-совместимое хранилище.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/shopping-mall/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sony/gobreaker/v2"
)

var ErrUploadFailed = errors.New("object upload failed")

// Uploader сохраняет объект и возвращает его публичный URL
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// objectPutter часть minio.Client, которой пользуется хранилище
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

type Store struct {
	client    objectPutter
	bucket    string
	publicURL string
	cb        *gobreaker.CircuitBreaker[minio.UploadInfo]
}

func New(cfg config.StorageConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newStore(client, cfg.Bucket, cfg.PublicURL), nil
}

func newStore(client objectPutter, bucket, publicURL string) *Store {
	cb := gobreaker.NewCircuitBreaker[minio.UploadInfo](gobreaker.Settings{
		Name:        "object-storage",
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		cb:        cb,
	}
}

func (s *Store) Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	_, err := s.cb.Execute(func() (minio.UploadInfo, error) {
		return s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUploadFailed, key, err)
	}
	return s.URL(key), nil
}

// URL публичный адрес объекта: <public_url>/<bucket>/<key>
func (s *Store) URL(key string) string {
	return s.publicURL + "/" + path.Join(s.bucket, key)
}

// ReviewImageKey ключ изображения отзыва: review/<id>/<uuid><ext>
func ReviewImageKey(reviewID int64, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("review/%d/%s%s", reviewID, uuid.NewString(), ext)
}
