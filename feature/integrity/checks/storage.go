package checks

import (
	"context"
	"fmt"

	"sheet-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// CheckStorage returns the buckets that do not exist.
func CheckStorage(ctx context.Context, client storage.Client, buckets []string) ([]string, error) {
	if client == nil {
		return nil, fmt.Errorf("object storage is not configured")
	}

	missing := []string{}
	for _, bucket := range buckets {
		exists, err := client.BucketExists(ctx, bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to check bucket %s: %w", bucket, err)
		}
		if !exists {
			missing = append(missing, bucket)
		}
	}
	return missing, nil
}

// FixStorage creates the missing buckets.
func FixStorage(ctx context.Context, client storage.Client, logger *zap.Logger, missing []string) error {
	for _, bucket := range missing {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			logger.Error("Failed to create bucket", zap.String("bucket", bucket), zap.Error(err))
			return err
		}
		logger.Info("Created missing bucket", zap.String("bucket", bucket))
	}
	return nil
}
