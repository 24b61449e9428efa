package handler

import (
	"net/http"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/gin-gonic/gin"
)

// MetricsHandler exposes the fallback metrics aggregator.
type MetricsHandler struct {
	metrics *service.FallbackMetrics
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(metrics *service.FallbackMetrics) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Stats handles GET /api/metrics/fallback.
func (h *MetricsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetStats())
}

// Report handles GET /api/metrics/fallback/report.
func (h *MetricsHandler) Report(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.GetReport())
}

// Flush handles POST /api/metrics/fallback/flush.
func (h *MetricsHandler) Flush(c *gin.Context) {
	h.metrics.Flush()
	c.JSON(http.StatusAccepted, gin.H{"status": "flush scheduled"})
}

// Record handles POST /api/metrics/fallback for callers that run the
// fallback themselves and report the outcome afterwards.
func (h *MetricsHandler) Record(c *gin.Context) {
	var metric models.FallbackMetric
	if err := c.ShouldBindJSON(&metric); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if metric.RequestID == "" {
		errorResponse(c, http.StatusBadRequest, "request_id is required")
		return
	}
	h.metrics.RecordFallback(metric)
	c.JSON(http.StatusAccepted, gin.H{"status": "recorded"})
}
