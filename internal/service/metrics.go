package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultMetricsCapacity bounds the in-memory fallback metric buffer.
	DefaultMetricsCapacity = 1000
	// timerFlushThreshold is the buffer size above which the periodic timer
	// flushes, independent of the hard cap.
	timerFlushThreshold = 100
)

// FlushFunc delivers a detached batch of metrics to an external sink.
type FlushFunc func(ctx context.Context, batch []models.FallbackMetric) error

// FallbackMetrics is a bounded-memory recorder of fallback events. Appends
// update running aggregates in O(1); the raw records are buffered until a
// flush hands them to the injected sink. The buffer never exceeds its
// capacity: an append that would overflow triggers a flush-and-clear first.
type FallbackMetrics struct {
	capacity int
	logger   *zap.Logger

	mu     sync.Mutex // guards buffer, aggregates and flushFn
	buffer []models.FallbackMetric
	flushFn FlushFunc

	// flushMu serializes overflow-, timer- and manually-triggered flushes so
	// a flush in progress cannot race another into duplicating a batch.
	flushMu sync.Mutex

	total            int64
	byReason         map[models.FallbackReason]int64
	byProvider       map[string]int64
	byPlan           map[models.PlanTier]int64
	totalCostSavings float64
	successCount     int64
	compressionCount int64
	retrySum         int64
	flushCount       int64
	dropped          int64

	cancel context.CancelFunc
	done   chan struct{}
}

// NewFallbackMetrics creates an aggregator with the given capacity;
// capacity <= 0 uses the default.
func NewFallbackMetrics(capacity int, logger *zap.Logger) *FallbackMetrics {
	if capacity <= 0 {
		capacity = DefaultMetricsCapacity
	}
	return &FallbackMetrics{
		capacity:   capacity,
		logger:     logger,
		buffer:     make([]models.FallbackMetric, 0, capacity),
		byReason:   make(map[models.FallbackReason]int64),
		byProvider: make(map[string]int64),
		byPlan:     make(map[models.PlanTier]int64),
	}
}

// SetFlushCallback injects the sink invoked with detached batches.
func (fm *FallbackMetrics) SetFlushCallback(fn FlushFunc) {
	fm.mu.Lock()
	fm.flushFn = fn
	fm.mu.Unlock()
}

// RecordFallback appends one event. If the buffer is full the append first
// flushes synchronously, so the capacity bound holds at all times.
func (fm *FallbackMetrics) RecordFallback(m models.FallbackMetric) {
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	fm.mu.Lock()
	// Re-check after re-locking: concurrent writers may refill the buffer
	// while the lock is released for the flush.
	for len(fm.buffer) >= fm.capacity {
		fm.mu.Unlock()
		fm.Flush()
		fm.mu.Lock()
	}
	fm.buffer = append(fm.buffer, m)
	fm.total++
	fm.byReason[m.Reason]++
	fm.byProvider[m.PrimaryProvider]++
	fm.byPlan[m.Plan]++
	fm.totalCostSavings += m.CostSavings
	if m.Success {
		fm.successCount++
	}
	if m.CompressionAttempted {
		fm.compressionCount++
	}
	fm.retrySum += int64(m.RetryAttempts)
	fm.mu.Unlock()
}

// Flush detaches the current buffer and hands it to the sink asynchronously.
// Overflow, timer and manual flushes all funnel through here, serialized by
// flushMu; flushing an empty buffer is a no-op.
func (fm *FallbackMetrics) Flush() {
	fm.flushMu.Lock()
	defer fm.flushMu.Unlock()

	fm.mu.Lock()
	if len(fm.buffer) == 0 {
		fm.mu.Unlock()
		return
	}
	batch := fm.buffer
	fm.buffer = make([]models.FallbackMetric, 0, fm.capacity)
	fn := fm.flushFn
	fm.flushCount++
	fm.mu.Unlock()

	if fn == nil {
		fm.mu.Lock()
		fm.dropped += int64(len(batch))
		fm.mu.Unlock()
		fm.logger.Warn("no flush callback set, dropping metric batch",
			zap.Int("count", len(batch)))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := fn(ctx, batch); err != nil {
			fm.readmit(batch, err)
		}
	}()
}

// readmit puts up to half the capacity back into the live buffer after a
// failed flush. Bounded re-buffering: whatever does not fit is dropped and
// counted, never retried indefinitely.
func (fm *FallbackMetrics) readmit(batch []models.FallbackMetric, cause error) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	limit := fm.capacity / 2
	if limit > len(batch) {
		limit = len(batch)
	}
	space := fm.capacity - len(fm.buffer)
	if limit > space {
		limit = space
	}
	if limit > 0 {
		// Keep the newest records; the oldest are the first to go.
		fm.buffer = append(fm.buffer, batch[len(batch)-limit:]...)
	}
	droppedNow := int64(len(batch) - limit)
	fm.dropped += droppedNow
	fm.logger.Warn("metric flush failed, re-admitted partial batch",
		zap.Error(cause),
		zap.Int("readmitted", limit),
		zap.Int64("dropped", droppedNow))
}

// Start launches the periodic flusher: whenever the live buffer exceeds the
// threshold the batch is flushed, independent of the hard cap.
func (fm *FallbackMetrics) Start(ctx context.Context, interval time.Duration) {
	runCtx, cancel := context.WithCancel(ctx)
	fm.cancel = cancel
	fm.done = make(chan struct{})

	go func() {
		defer close(fm.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				fm.mu.Lock()
				pending := len(fm.buffer)
				fm.mu.Unlock()
				if pending > timerFlushThreshold {
					fm.Flush()
				}
			}
		}
	}()
}

// Stop halts the periodic flusher and performs a final flush.
func (fm *FallbackMetrics) Stop() {
	if fm.cancel != nil {
		fm.cancel()
		<-fm.done
	}
	fm.Flush()
}

// GetStats returns a copy of the running aggregates.
func (fm *FallbackMetrics) GetStats() models.FallbackStats {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	stats := models.FallbackStats{
		TotalRecorded:         fm.total,
		Buffered:              len(fm.buffer),
		ByReason:              make(map[models.FallbackReason]int64, len(fm.byReason)),
		ByPrimaryProvider:     make(map[string]int64, len(fm.byProvider)),
		ByPlan:                make(map[models.PlanTier]int64, len(fm.byPlan)),
		TotalCostSavings:      fm.totalCostSavings,
		SuccessCount:          fm.successCount,
		CompressionCount:      fm.compressionCount,
		FlushCount:            fm.flushCount,
		DroppedOnFlushFailure: fm.dropped,
	}
	if fm.total > 0 {
		stats.MeanRetryAttempts = float64(fm.retrySum) / float64(fm.total)
	}
	for k, v := range fm.byReason {
		stats.ByReason[k] = v
	}
	for k, v := range fm.byProvider {
		stats.ByPrimaryProvider[k] = v
	}
	for k, v := range fm.byPlan {
		stats.ByPlan[k] = v
	}
	return stats
}

// GetReport derives operator recommendations purely from the aggregates; no
// replay of raw records is needed.
func (fm *FallbackMetrics) GetReport() models.FallbackReport {
	stats := fm.GetStats()
	report := models.FallbackReport{
		GeneratedAt: time.Now(),
		Stats:       stats,
	}
	if stats.TotalRecorded == 0 {
		report.Recommendations = []string{"No fallback events recorded"}
		return report
	}

	total := float64(stats.TotalRecorded)
	if float64(stats.ByReason[models.ReasonRateLimit])/total > 0.2 {
		report.Recommendations = append(report.Recommendations,
			"Rate-limit fallbacks exceed 20% of traffic - raise provider quotas or spread load")
	}
	if float64(stats.ByReason[models.ReasonTimeout])/total > 0.15 {
		report.Recommendations = append(report.Recommendations,
			"Timeout fallbacks exceed 15% of traffic - review provider latency or timeout budget")
	}
	if float64(stats.ByReason[models.ReasonContextLength])/total > 0.1 {
		report.Recommendations = append(report.Recommendations,
			"Context-length fallbacks exceed 10% of traffic - tighten context assembly upstream")
	}
	if stats.MeanRetryAttempts > 2.5 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Mean retry attempts is %.1f - primary providers are degrading before fallback", stats.MeanRetryAttempts))
	}
	for provider, count := range stats.ByPrimaryProvider {
		if float64(count)/total > 0.5 {
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("Provider %q accounts for over half of all fallbacks", provider))
		}
	}
	if stats.DroppedOnFlushFailure > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("%d metric records dropped on flush failure - check the metrics sink", stats.DroppedOnFlushFailure))
	}
	if len(report.Recommendations) == 0 {
		report.Recommendations = []string{"Fallback traffic within normal bounds"}
	}
	return report
}
