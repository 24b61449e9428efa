package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"go.uber.org/zap"
)

// FallbackMetricRepository persists flushed fallback metric batches. Its
// InsertBatch method is the sink behind service.FlushFunc.
type FallbackMetricRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewFallbackMetricRepository creates a new FallbackMetricRepository.
func NewFallbackMetricRepository(db *sql.DB, logger *zap.Logger) *FallbackMetricRepository {
	return &FallbackMetricRepository{db: db, logger: logger}
}

// InsertBatch writes a detached batch in one transaction. All-or-nothing:
// a failed batch is reported back so the aggregator can re-admit records.
func (r *FallbackMetricRepository) InsertBatch(ctx context.Context, batch []models.FallbackMetric) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin metric batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fallback_metrics (
			recorded_at, request_id, plan, primary_provider, fallback_provider,
			reason, cost_savings, success, retry_attempts, compression_attempted
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare metric insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range batch {
		_, err := stmt.ExecContext(ctx,
			m.Timestamp.UTC().Format(time.RFC3339Nano),
			m.RequestID,
			string(m.Plan),
			m.PrimaryProvider,
			m.FallbackProvider,
			string(m.Reason),
			m.CostSavings,
			boolToInt(m.Success),
			m.RetryAttempts,
			boolToInt(m.CompressionAttempted),
		)
		if err != nil {
			return fmt.Errorf("insert fallback metric: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metric batch: %w", err)
	}
	r.logger.Debug("flushed fallback metric batch", zap.Int("count", len(batch)))
	return nil
}

// CountSince returns how many metric rows were recorded at or after the cutoff.
func (r *FallbackMetricRepository) CountSince(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fallback_metrics WHERE recorded_at >= ?`,
		cutoff.UTC().Format(time.RFC3339Nano),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count fallback metrics: %w", err)
	}
	return count, nil
}

// PruneBefore deletes metric rows older than the cutoff, returning how many
// were removed.
func (r *FallbackMetricRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM fallback_metrics WHERE recorded_at < ?`,
		cutoff.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("prune fallback metrics: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune fallback metrics rows: %w", err)
	}
	return n, nil
}
