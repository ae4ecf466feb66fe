package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bidportal-archiver/internal/models"
	"github.com/noah-isme/bidportal-archiver/pkg/jobs"
)

func TestAssetCleanupHandlerRemovesAsset(t *testing.T) {
	store := &objectStoreStub{}
	metrics := NewMetricsService()
	handler := NewAssetCleanupHandler(store, metrics, nil)

	err := handler(context.Background(), jobs.Job{
		ID:      "gantt-charts/gantt/plan.pdf",
		Type:    AssetCleanupJobType,
		Payload: models.AssetKey{Kind: models.AssetKindGanttChart, Bucket: "gantt-charts", Key: "gantt/plan.pdf"},
		Attempt: 2,
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"gantt-charts/gantt/plan.pdf"}, store.removed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.assetsTotal.WithLabelValues("retried")))
}

func TestAssetCleanupHandlerReturnsStoreErrorForRetry(t *testing.T) {
	store := &objectStoreStub{fail: map[string]error{"projects/front.jpg": errors.New("timeout")}}
	handler := NewAssetCleanupHandler(store, nil, nil)

	err := handler(context.Background(), jobs.Job{
		Payload: models.AssetKey{Bucket: "project-images", Key: "projects/front.jpg"},
	})

	assert.EqualError(t, err, "timeout")
}

func TestAssetCleanupHandlerDropsUnknownPayload(t *testing.T) {
	store := &objectStoreStub{}
	handler := NewAssetCleanupHandler(store, nil, nil)

	err := handler(context.Background(), jobs.Job{ID: "bogus", Payload: "projects/front.jpg"})

	require.NoError(t, err)
	assert.Empty(t, store.removed)
}

func TestAssetCleanupDeadLetterCountsAbandonedAssets(t *testing.T) {
	metrics := NewMetricsService()
	deadLetter := NewAssetCleanupDeadLetter(metrics, nil)

	deadLetter(jobs.Job{ID: "task-documents/documents/a.pdf", Attempt: 5}, errors.New("access denied"))

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cleanupAbandoned))
}
