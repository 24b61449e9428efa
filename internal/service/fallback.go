package service

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"go.uber.org/zap"
)

// UpstreamError carries what the caller knows about a failed provider call:
// the raw message and, when available, the HTTP status.
type UpstreamError struct {
	Message    string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Message)
	}
	return e.Message
}

// planPolicies is the per-tier fallback policy table. Policies grow stricter
// with tier: premium plans retry the primary longer, never fall back
// silently, and never accept a quality drop.
var planPolicies = map[models.PlanTier]models.PlanFallbackPolicy{
	models.PlanStarter: {
		RetryBeforeFallback: 2, AllowSilentFallback: true, AllowQualityDrop: true,
		CompressionBeforeFallback: false, UnknownTriggerRate: 0.3,
	},
	models.PlanLite: {
		RetryBeforeFallback: 2, AllowSilentFallback: true, AllowQualityDrop: true,
		CompressionBeforeFallback: true, UnknownTriggerRate: 0.25,
	},
	models.PlanPlus: {
		RetryBeforeFallback: 2, AllowSilentFallback: true, AllowQualityDrop: false,
		CompressionBeforeFallback: true, UnknownTriggerRate: 0.2,
	},
	models.PlanPro: {
		RetryBeforeFallback: 3, AllowSilentFallback: false, AllowQualityDrop: false,
		CompressionBeforeFallback: true, UnknownTriggerRate: 0.15,
	},
	models.PlanApex: {
		RetryBeforeFallback: 3, AllowSilentFallback: false, AllowQualityDrop: false,
		CompressionBeforeFallback: true, UnknownTriggerRate: 0.1,
	},
	models.PlanSovereign: {
		RetryBeforeFallback: 4, AllowSilentFallback: false, AllowQualityDrop: false,
		CompressionBeforeFallback: true, UnknownTriggerRate: 0.05,
	},
}

// PolicyFor returns the fallback policy for the plan. Unknown plans get the
// STARTER policy.
func PolicyFor(plan models.PlanTier) models.PlanFallbackPolicy {
	if p, ok := planPolicies[plan]; ok {
		return p
	}
	return planPolicies[models.PlanStarter]
}

// securityMarkers match error text that indicates a security event rather
// than an operational failure. These are never masked by fallback.
var securityMarkers = []string{
	"jailbreak",
	"system prompt exposure",
	"system-prompt-exposure",
	"prompt exposure",
	"model reveal",
	"model-reveal",
	"model identity",
}

// IsSecurityError reports whether the failure is security-classified
// (jailbreak attempt, system prompt exposure, model reveal).
func IsSecurityError(err *UpstreamError) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Message)
	for _, marker := range securityMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ClassifyError maps an upstream failure into the closed taxonomy. Matching
// runs in fixed priority order; the first hit wins and ambiguity falls
// through to UNKNOWN.
func ClassifyError(err *UpstreamError) models.FallbackReason {
	if err == nil {
		return models.ReasonUnknown
	}
	msg := strings.ToLower(err.Message)

	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") || strings.Contains(msg, "deadline exceeded"):
		return models.ReasonTimeout
	case err.StatusCode == 429 || strings.Contains(msg, "rate limit") || strings.Contains(msg, "too many requests") || strings.Contains(msg, "quota exceeded"):
		return models.ReasonRateLimit
	case err.StatusCode >= 500 && err.StatusCode <= 599:
		return models.ReasonServerError
	case strings.Contains(msg, "internal server error") || strings.Contains(msg, "service unavailable") || strings.Contains(msg, "bad gateway"):
		return models.ReasonServerError
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "connection reset") || strings.Contains(msg, "no such host") || strings.Contains(msg, "network"):
		return models.ReasonNetworkError
	case err.StatusCode == 404 || strings.Contains(msg, "model not found") || strings.Contains(msg, "model_not_found") || strings.Contains(msg, "does not exist"):
		return models.ReasonModelUnavailable
	case strings.Contains(msg, "context length") || strings.Contains(msg, "context_length_exceeded") || strings.Contains(msg, "maximum context") || strings.Contains(msg, "token limit"):
		return models.ReasonContextLength
	default:
		return models.ReasonUnknown
	}
}

// criticalReasons fall back once retries on the primary are exhausted.
var criticalReasons = map[models.FallbackReason]bool{
	models.ReasonTimeout:          true,
	models.ReasonRateLimit:        true,
	models.ReasonServerError:      true,
	models.ReasonNetworkError:     true,
	models.ReasonModelUnavailable: true,
}

// FallbackEngine evaluates the post-failure decision protocol. It holds no
// per-request state; callers pass a FallbackContext that they own and
// advance across retries.
type FallbackEngine struct {
	registry *ModelRegistry
	scores   *QualityScores
	logger   *zap.Logger
}

// NewFallbackEngine creates a FallbackEngine.
func NewFallbackEngine(registry *ModelRegistry, scores *QualityScores, logger *zap.Logger) *FallbackEngine {
	return &FallbackEngine{
		registry: registry,
		scores:   scores,
		logger:   logger,
	}
}

// ShouldUseFallbackEnhanced decides what the caller should do after a failed
// attempt: retry the primary, compress context first, fall back, or abort.
// It must be invoked exactly once per failed attempt with an incremented
// retryCtx.AttemptNumber.
func (f *FallbackEngine) ShouldUseFallbackEnhanced(
	upErr *UpstreamError,
	plan models.PlanTier,
	requestID string,
	primaryModel string,
	fallbackModel string,
	hasFallbackProvider bool,
	retryCtx *models.FallbackContext,
) models.FallbackDecision {
	policy := PolicyFor(plan)
	reason := ClassifyError(upErr)
	qualityDrop := f.scores.IsQualityDrop(primaryModel, fallbackModel)
	costSavings := f.costSavings(primaryModel, fallbackModel)
	silent := policy.AllowSilentFallback && (policy.AllowQualityDrop || !qualityDrop)

	attempt := 1
	compressionAttempted := false
	if retryCtx != nil {
		attempt = retryCtx.AttemptNumber
		compressionAttempted = retryCtx.CompressionAttempted
	}

	// 1. Nowhere to go.
	if !hasFallbackProvider {
		return models.FallbackDecision{
			ShouldFallback: false,
			Reason:         reason,
			RetryCountMet:  attempt >= policy.RetryBeforeFallback,
			Suggestion:     "No fallback provider configured",
		}
	}

	// 2. Security-classified failures always propagate, regardless of retries.
	if IsSecurityError(upErr) {
		return models.FallbackDecision{
			ShouldFallback: false,
			Reason:         reason,
			RetryCountMet:  true,
			Suggestion:     "Security-classified error - surface to caller",
		}
	}

	// 3. Retry gate: exhaust the primary before anything else.
	if attempt < policy.RetryBeforeFallback {
		return models.FallbackDecision{
			ShouldFallback: false,
			Reason:         reason,
			RetryCountMet:  false,
			Suggestion:     fmt.Sprintf("Retry %d/%d - Keep trying primary", attempt, policy.RetryBeforeFallback),
		}
	}

	// 4. Context-length failures prefer compression over substitution.
	if reason == models.ReasonContextLength {
		if policy.CompressionBeforeFallback && !compressionAttempted {
			return models.FallbackDecision{
				ShouldFallback:      false,
				Reason:              reason,
				ShouldCompressFirst: true,
				RetryCountMet:       true,
				Suggestion:          "Compress context and retry primary",
			}
		}
		return models.FallbackDecision{
			ShouldFallback: true,
			Reason:         reason,
			Silent:         silent,
			QualityDrop:    qualityDrop,
			CostSavings:    costSavings,
			RetryCountMet:  true,
			Suggestion:     "Context exhausted - switch provider",
		}
	}

	// 5. Critical operational failures fall back once retries are spent.
	if criticalReasons[reason] {
		return models.FallbackDecision{
			ShouldFallback: true,
			Reason:         reason,
			Silent:         silent,
			QualityDrop:    qualityDrop,
			CostSavings:    costSavings,
			RetryCountMet:  true,
			Suggestion:     "Switch to fallback provider",
		}
	}

	// 6. UNKNOWN errors use deterministic hash gating so only a reproducible
	// slice of unclassifiable failures degrades to a fallback at scale.
	if reason == models.ReasonUnknown {
		if hashGateOpen(requestID, policy.UnknownTriggerRate) && (policy.AllowQualityDrop || !qualityDrop) {
			return models.FallbackDecision{
				ShouldFallback: true,
				Reason:         reason,
				Silent:         silent,
				QualityDrop:    qualityDrop,
				CostSavings:    costSavings,
				RetryCountMet:  true,
				Suggestion:     "Sampled unknown error - switch provider",
			}
		}
		return models.FallbackDecision{
			ShouldFallback: false,
			Reason:         reason,
			QualityDrop:    qualityDrop,
			RetryCountMet:  true,
			Suggestion:     "Unclassified error - surface to caller",
		}
	}

	// 7. Anything else stays on the primary.
	return models.FallbackDecision{
		ShouldFallback: false,
		Reason:         reason,
		RetryCountMet:  true,
	}
}

// costSavings is the per-1M-token saving of the fallback over the primary,
// floored at zero. Unknown models cost zero.
func (f *FallbackEngine) costSavings(primaryID, fallbackID string) float64 {
	var primaryCost, fallbackCost float64
	if m, ok := f.registry.Get(primaryID); ok {
		primaryCost = m.CostPer1M
	}
	if m, ok := f.registry.Get(fallbackID); ok {
		fallbackCost = m.CostPer1M
	}
	return math.Max(0, primaryCost-fallbackCost)
}

// hashGateOpen implements the deterministic pseudo-random trigger:
// fnv32a(requestID) mod floor(1/rate) == 0. The same requestID always gets
// the same answer, which keeps the UNKNOWN path reproducible and testable.
func hashGateOpen(requestID string, rate float64) bool {
	if rate <= 0 {
		return false
	}
	if rate >= 1 {
		return true
	}
	modulus := uint32(math.Floor(1 / rate))
	if modulus == 0 {
		return true
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(requestID))
	return h.Sum32()%modulus == 0
}
