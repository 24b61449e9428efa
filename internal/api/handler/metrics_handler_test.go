//go:build !integration && !e2e

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsStats(t *testing.T) {
	metrics := service.NewFallbackMetrics(100, zap.NewNop())
	metrics.RecordFallback(models.FallbackMetric{
		RequestID:       "r1",
		Plan:            models.PlanStarter,
		PrimaryProvider: "openai",
		Reason:          models.ReasonTimeout,
	})
	h := NewMetricsHandler(metrics)

	c, w := newTestContext(t)
	c.Request = httptest.NewRequest("GET", "/api/metrics/fallback", nil)
	h.Stats(c)

	require.Equal(t, http.StatusOK, w.Code)
	var stats models.FallbackStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(1), stats.TotalRecorded)
	assert.Equal(t, int64(1), stats.ByReason[models.ReasonTimeout])
}

func TestMetricsReport(t *testing.T) {
	metrics := service.NewFallbackMetrics(100, zap.NewNop())
	h := NewMetricsHandler(metrics)

	c, w := newTestContext(t)
	c.Request = httptest.NewRequest("GET", "/api/metrics/fallback/report", nil)
	h.Report(c)

	require.Equal(t, http.StatusOK, w.Code)
	var report models.FallbackReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, []string{"No fallback events recorded"}, report.Recommendations)
}

func TestMetricsRecord(t *testing.T) {
	metrics := service.NewFallbackMetrics(100, zap.NewNop())
	h := NewMetricsHandler(metrics)

	c, w := newTestContext(t)
	jsonRequest(t, c, "POST", "/api/metrics/fallback", map[string]any{
		"request_id":       "r9",
		"plan":             "LITE",
		"primary_provider": "google",
		"reason":           "NETWORK_ERROR",
		"success":          true,
	})
	h.Record(c)

	require.Equal(t, http.StatusAccepted, w.Code)
	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.TotalRecorded)
	assert.Equal(t, int64(1), stats.ByReason[models.ReasonNetworkError])
}

func TestMetricsRecordRequiresRequestID(t *testing.T) {
	h := NewMetricsHandler(service.NewFallbackMetrics(100, zap.NewNop()))

	c, w := newTestContext(t)
	jsonRequest(t, c, "POST", "/api/metrics/fallback", map[string]any{
		"plan": "LITE",
	})
	h.Record(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsFlush(t *testing.T) {
	metrics := service.NewFallbackMetrics(100, zap.NewNop())
	h := NewMetricsHandler(metrics)

	c, w := newTestContext(t)
	c.Request = httptest.NewRequest("POST", "/api/metrics/fallback/flush", nil)
	h.Flush(c)
	assert.Equal(t, http.StatusAccepted, w.Code)
}
