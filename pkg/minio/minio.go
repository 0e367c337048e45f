package minio

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/seeliang/google-cloud-engineering/config"
)

// Location is the region buckets are created in.
const Location = "us-east-1"

// ReportDir is the object prefix reports are stored under.
const ReportDir = "reports"

const uploadAttempts = 3

// Storage copies run reports to a MinIO bucket.
type Storage struct {
	client  *minio.Client
	bucket  string
	logger  *zap.Logger
	backoff time.Duration
}

// NewStorage connects to MinIO and creates the bucket when it is missing.
func NewStorage(ctx context.Context, cfg config.MinioConfig, logger *zap.Logger) (*Storage, error) {
	endpoint := net.JoinHostPort(cfg.Host, cfg.Port)
	logger = logger.With(zap.String("host:port", endpoint), zap.String("bucket", cfg.Bucket))

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.User, cfg.Password, ""),
		Secure: cfg.Secure,
		Region: Location,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to MinIO: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: Location}); err != nil {
			return nil, fmt.Errorf("creating bucket: %w", err)
		}
		logger.Info("Successfully created bucket")
	} else {
		logger.Info("Bucket already exists")
	}

	return &Storage{
		client:  client,
		bucket:  cfg.Bucket,
		logger:  logger,
		backoff: time.Second,
	}, nil
}

// ObjectPath is the key a report file is stored under.
func ObjectPath(name string) string {
	return path.Join(ReportDir, name)
}

// Upload stores data as the report called name, retrying transient failures.
func (s *Storage) Upload(ctx context.Context, name string, data []byte) error {
	key := ObjectPath(name)

	var err error
	for attempt := 1; attempt <= uploadAttempts; attempt++ {
		_, err = s.client.PutObject(
			ctx,
			s.bucket,
			key,
			bytes.NewReader(data),
			int64(len(data)),
			minio.PutObjectOptions{ContentType: "application/json"},
		)
		if err == nil {
			return nil
		}
		s.logger.Error("Failed to upload report to MinIO, retrying...", zap.String("key", key), zap.Int("attempt", attempt), zap.Error(err))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * s.backoff):
		}
	}
	return fmt.Errorf("uploading %s after %d attempts: %w", key, uploadAttempts, err)
}
