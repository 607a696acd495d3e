// Package objectstore provides durable blob storage for task inputs and
// extraction outputs, keyed by task id, backed by any S3-compatible service.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/docsift/docsift-api/internal/config"
	"github.com/docsift/docsift-api/internal/platform/logger"
)

// Sentinel errors surfaced by the store. ErrUnavailable marks transient
// infrastructure failures that are safe to retry with backoff; ErrNotFound
// marks a key that does not exist in the bucket.
var (
	ErrNotFound    = errors.New("object not found")
	ErrUnavailable = errors.New("object store unavailable")
)

// MinioStore is an ObjectStore backed by an S3-compatible service.
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *slog.Logger
}

// New creates a MinioStore from the given configuration and ensures the
// configured bucket exists. If log is nil, a default logger is used.
func New(ctx context.Context, cfg config.ObjectStoreConfig, log *slog.Logger) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint cannot be empty")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object store bucket cannot be empty")
	}

	if log == nil {
		log = slog.Default()
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	if err := ensureBucket(ctx, client, cfg.Bucket); err != nil {
		return nil, err
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		logger: log.With(slog.String("component", "object_store")),
	}, nil
}

// ensureBucket creates the bucket if it does not exist yet.
func ensureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket exists: %v", ErrUnavailable, err)
	}
	if exists {
		return nil
	}

	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("%w: create bucket: %v", ErrUnavailable, err)
	}
	return nil
}

// Put durably stores the object under key. The write must complete before
// the corresponding task row is inserted; callers rely on that ordering.
func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	objectName, err := objectName(key)
	if err != nil {
		return err
	}

	info, err := s.client.PutObject(
		ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{},
	)
	if err != nil {
		log.Error("failed to put object",
			slog.String("error", err.Error()),
			slog.String("key", objectName))
		return mapMinioError(err, "put object")
	}

	log.Debug("object stored",
		slog.String("key", objectName),
		slog.Int64("size", info.Size))
	return nil
}

// Get opens the object stored under key. The caller owns the returned
// reader and must close it.
func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	objectName, err := objectName(key)
	if err != nil {
		return nil, 0, err
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, 0, mapMinioError(err, "get object")
	}

	// GetObject is lazy; Stat forces the round-trip so missing keys are
	// reported here rather than on first read.
	st, err := obj.Stat()
	if err != nil {
		if closeErr := obj.Close(); closeErr != nil {
			log.Error("failed to close object after stat error",
				slog.String("error", closeErr.Error()))
		}
		return nil, 0, mapMinioError(err, "stat object")
	}

	return obj, st.Size, nil
}

// Delete removes the object stored under key. Deleting a missing key is a
// no-op; blobs are only deleted as part of task deletion or expiration.
func (s *MinioStore) Delete(ctx context.Context, key string) error {
	objectName, err := objectName(key)
	if err != nil {
		return err
	}

	err = s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return mapMinioError(err, "remove object")
	}

	return nil
}

// mapMinioError translates a minio error into the store's error classes.
// Responses without a service error code are network-level failures and map
// to ErrUnavailable.
func mapMinioError(err error, op string) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %s: %v", ErrNotFound, op, err)
	case "":
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// objectName validates a caller-supplied key. Keys are derived from task
// ids, so anything outside the expected shape indicates a programming error.
func objectName(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid object key: %s", key)
	}
	return key, nil
}
