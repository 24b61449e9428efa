package models

import "time"

// FallbackReason is the closed taxonomy of classified provider failures.
type FallbackReason string

const (
	ReasonTimeout         FallbackReason = "TIMEOUT"
	ReasonRateLimit       FallbackReason = "RATE_LIMIT"
	ReasonServerError     FallbackReason = "SERVER_ERROR"
	ReasonNetworkError    FallbackReason = "NETWORK_ERROR"
	ReasonModelUnavailable FallbackReason = "MODEL_UNAVAILABLE"
	ReasonContextLength   FallbackReason = "CONTEXT_LENGTH_EXCEEDED"
	ReasonUnknown         FallbackReason = "UNKNOWN"
)

// FallbackContext is caller-held retry state for one logical request. The
// caller increments AttemptNumber and flips the flags across retries; the
// engine never mutates it.
type FallbackContext struct {
	AttemptNumber        int  `json:"attempt_number"`
	MaxAttempts          int  `json:"max_attempts"`
	CompressionAttempted bool `json:"compression_attempted"`
	ContextReduced       bool `json:"context_reduced"`
}

// FallbackDecision is the outcome of one fallback protocol evaluation.
type FallbackDecision struct {
	ShouldFallback      bool           `json:"should_fallback"`
	Reason              FallbackReason `json:"reason"`
	Silent              bool           `json:"silent"`
	QualityDrop         bool           `json:"quality_drop"`
	CostSavings         float64        `json:"cost_savings"`
	ShouldCompressFirst bool           `json:"should_compress_first"`
	RetryCountMet       bool           `json:"retry_count_met"`
	Suggestion          string         `json:"suggestion,omitempty"`
}

// PlanFallbackPolicy controls how aggressively a plan may fall back.
type PlanFallbackPolicy struct {
	RetryBeforeFallback       int     `json:"retry_before_fallback"`
	AllowSilentFallback       bool    `json:"allow_silent_fallback"`
	AllowQualityDrop          bool    `json:"allow_quality_drop"`
	CompressionBeforeFallback bool    `json:"compression_before_fallback"`
	UnknownTriggerRate        float64 `json:"unknown_trigger_rate"` // (0,1]
}

// FallbackMetric is one recorded fallback event. Metrics live in a
// capacity-bounded in-memory buffer until flushed to an external sink.
type FallbackMetric struct {
	Timestamp            time.Time      `json:"timestamp"`
	RequestID            string         `json:"request_id"`
	Plan                 PlanTier       `json:"plan"`
	PrimaryProvider      string         `json:"primary_provider"`
	FallbackProvider     string         `json:"fallback_provider"`
	Reason               FallbackReason `json:"reason"`
	CostSavings          float64        `json:"cost_savings"`
	Success              bool           `json:"success"`
	RetryAttempts        int            `json:"retry_attempts"`
	CompressionAttempted bool           `json:"compression_attempted"`
}

// FallbackStats is a point-in-time view of the metrics aggregates.
type FallbackStats struct {
	TotalRecorded        int64                      `json:"total_recorded"`
	Buffered             int                        `json:"buffered"`
	ByReason             map[FallbackReason]int64   `json:"by_reason"`
	ByPrimaryProvider    map[string]int64           `json:"by_primary_provider"`
	ByPlan               map[PlanTier]int64         `json:"by_plan"`
	TotalCostSavings     float64                    `json:"total_cost_savings"`
	SuccessCount         int64                      `json:"success_count"`
	CompressionCount     int64                      `json:"compression_count"`
	MeanRetryAttempts    float64                    `json:"mean_retry_attempts"`
	FlushCount           int64                      `json:"flush_count"`
	DroppedOnFlushFailure int64                     `json:"dropped_on_flush_failure"`
}

// FallbackReport is a derived human-readable summary of the aggregates.
type FallbackReport struct {
	GeneratedAt     time.Time      `json:"generated_at"`
	Stats           FallbackStats  `json:"stats"`
	Recommendations []string       `json:"recommendations"`
}
