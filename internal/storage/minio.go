package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/infinityfire/api/internal/config"
)

const defaultObjectStoreTimeout = 5 * time.Second

// NewMinIOClient builds an S3-compatible client from configuration.
func NewMinIOClient(cfg config.ObjectStoreConfig) (*minio.Client, error) {
	endpoint := strings.TrimPrefix(strings.TrimPrefix(cfg.Endpoint, "https://"), "http://")
	endpoint = strings.TrimSuffix(endpoint, "/")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return client, nil
}

// CheckBucket checks that the configured bucket is reachable and logs the
// outcome. The bucket is never created: it holds operator-managed files.
func CheckBucket(ctx context.Context, client *minio.Client, bucket string, log *zap.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, defaultObjectStoreTimeout)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucket)
	switch {
	case err != nil:
		log.Warn("object store bucket check failed", zap.String("bucket", bucket), zap.Error(err))
		return false
	case !exists:
		log.Warn("object store bucket does not exist", zap.String("bucket", bucket))
		return false
	}

	log.Info("object store bucket reachable", zap.String("bucket", bucket))
	return true
}
