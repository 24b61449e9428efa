//go:build !integration && !e2e

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleMetrics(base time.Time, n int) []models.FallbackMetric {
	out := make([]models.FallbackMetric, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.FallbackMetric{
			Timestamp:       base.Add(time.Duration(i) * time.Minute),
			RequestID:       "req",
			Plan:            models.PlanStarter,
			PrimaryProvider: "openai",
			FallbackProvider: "google",
			Reason:          models.ReasonTimeout,
			CostSavings:     1.2,
			Success:         true,
			RetryAttempts:   2,
		})
	}
	return out
}

func TestInsertBatchAndCount(t *testing.T) {
	repo := NewFallbackMetricRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertBatch(ctx, sampleMetrics(base, 5)))

	count, err := repo.CountSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// Only rows at or after the cutoff count.
	count, err = repo.CountSince(ctx, base.Add(3*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestInsertBatchEmptyIsNoop(t *testing.T) {
	repo := NewFallbackMetricRepository(newTestDB(t), zap.NewNop())
	require.NoError(t, repo.InsertBatch(context.Background(), nil))
}

func TestPruneBefore(t *testing.T) {
	repo := NewFallbackMetricRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertBatch(ctx, sampleMetrics(base, 10)))

	pruned, err := repo.PruneBefore(ctx, base.Add(5*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(5), pruned)

	remaining, err := repo.CountSince(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, int64(5), remaining)
}

func TestInsertBatchServesAsFlushSink(t *testing.T) {
	repo := NewFallbackMetricRepository(newTestDB(t), zap.NewNop())

	// The method satisfies the aggregator's flush contract directly.
	var sink func(context.Context, []models.FallbackMetric) error = repo.InsertBatch
	require.NoError(t, sink(context.Background(), sampleMetrics(time.Now().UTC(), 3)))

	count, err := repo.CountSince(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
