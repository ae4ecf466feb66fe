package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/pkg/jobs"
)

// AssetCleanupJobType tags queued retries of failed blob deletions.
const AssetCleanupJobType = "archive.asset.delete"

// NewAssetCleanupHandler retries removal of one asset per job. Removal is idempotent.
func NewAssetCleanupHandler(store assetRemover, metrics *MetricsService, logger *zap.Logger) jobs.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context, job jobs.Job) error {
		key, ok := job.Payload.(models.AssetKey)
		if !ok {
			logger.Error("dropping cleanup job with unexpected payload", zap.String("job_id", job.ID))
			return nil
		}
		if err := store.Remove(ctx, key.Bucket, key.Key); err != nil {
			return err
		}
		metrics.RecordAssetDeletion("retried")
		logger.Info("asset removed on retry",
			zap.String("bucket", key.Bucket),
			zap.String("key", key.Key),
			zap.Int("attempt", job.Attempt),
		)
		return nil
	}
}

// NewAssetCleanupDeadLetter logs and counts deletions that could not be completed.
func NewAssetCleanupDeadLetter(metrics *MetricsService, logger *zap.Logger) jobs.DeadLetterFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(job jobs.Job, err error) {
		metrics.RecordCleanupAbandoned()
		logger.Error("asset left orphaned in object storage",
			zap.String("job_id", job.ID),
			zap.Int("attempts", job.Attempt),
			zap.Error(err),
		)
	}
}
