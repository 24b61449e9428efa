package handler

import (
	"net/http"
	"time"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FallbackHandler serves post-failure fallback decisions.
type FallbackHandler struct {
	engine   *service.FallbackEngine
	registry *service.ModelRegistry
	metrics  *service.FallbackMetrics
	logger   *zap.Logger
}

// NewFallbackHandler creates a new FallbackHandler.
func NewFallbackHandler(
	engine *service.FallbackEngine,
	registry *service.ModelRegistry,
	metrics *service.FallbackMetrics,
	logger *zap.Logger,
) *FallbackHandler {
	return &FallbackHandler{engine: engine, registry: registry, metrics: metrics, logger: logger}
}

// fallbackDecideRequest is the wire format for POST /v1/fallback/decide.
type fallbackDecideRequest struct {
	ErrorMessage        string                  `json:"error_message"`
	StatusCode          int                     `json:"status_code,omitempty"`
	Plan                models.PlanTier         `json:"plan_type"`
	RequestID           string                  `json:"request_id"`
	PrimaryModel        string                  `json:"primary_model"`
	FallbackModel       string                  `json:"fallback_model"`
	HasFallbackProvider bool                    `json:"has_fallback_provider"`
	RetryContext        *models.FallbackContext `json:"retry_context,omitempty"`
}

// Decide handles POST /v1/fallback/decide. Callers invoke it once per
// failed attempt with an incremented retry_context.attempt_number; decisions
// that trigger a fallback are recorded into the metrics aggregator.
func (h *FallbackHandler) Decide(c *gin.Context) {
	var req fallbackDecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if !validPlans[req.Plan] {
		errorResponse(c, http.StatusBadRequest, "unknown plan tier: "+string(req.Plan))
		return
	}
	if req.RequestID == "" {
		req.RequestID = c.GetString("request_id")
	}

	decision := h.engine.ShouldUseFallbackEnhanced(
		&service.UpstreamError{Message: req.ErrorMessage, StatusCode: req.StatusCode},
		req.Plan,
		req.RequestID,
		req.PrimaryModel,
		req.FallbackModel,
		req.HasFallbackProvider,
		req.RetryContext,
	)

	if decision.ShouldFallback {
		attempts := 0
		compressed := false
		if req.RetryContext != nil {
			attempts = req.RetryContext.AttemptNumber
			compressed = req.RetryContext.CompressionAttempted
		}
		// Success stays false here: the fallback call has not run yet.
		// Callers report the final outcome via POST /api/metrics/fallback.
		h.metrics.RecordFallback(models.FallbackMetric{
			Timestamp:            time.Now(),
			RequestID:            req.RequestID,
			Plan:                 req.Plan,
			PrimaryProvider:      h.providerOf(req.PrimaryModel),
			FallbackProvider:     h.providerOf(req.FallbackModel),
			Reason:               decision.Reason,
			CostSavings:          decision.CostSavings,
			RetryAttempts:        attempts,
			CompressionAttempted: compressed,
		})
	}

	c.JSON(http.StatusOK, decision)
}

func (h *FallbackHandler) providerOf(modelID string) string {
	if m, ok := h.registry.Get(modelID); ok {
		return m.Provider
	}
	return modelID
}
