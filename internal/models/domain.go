// Package models defines the domain models for the Soriva routing engine.
package models

// PlanTier represents a subscription plan tier. Tiers are ordered from
// cheapest to most premium; ordering drives both model availability and
// fallback policy strictness.
type PlanTier string

const (
	PlanStarter   PlanTier = "STARTER"
	PlanLite      PlanTier = "LITE"
	PlanPlus      PlanTier = "PLUS"
	PlanPro       PlanTier = "PRO"
	PlanApex      PlanTier = "APEX"
	PlanSovereign PlanTier = "SOVEREIGN"
)

// planRank orders tiers for comparisons (higher = more premium).
var planRank = map[PlanTier]int{
	PlanStarter:   0,
	PlanLite:      1,
	PlanPlus:      2,
	PlanPro:       3,
	PlanApex:      4,
	PlanSovereign: 5,
}

// Rank returns the ordinal position of the tier. Unknown tiers rank as STARTER.
func (p PlanTier) Rank() int {
	return planRank[p]
}

// AtLeast reports whether the tier is at or above the given tier.
func (p PlanTier) AtLeast(other PlanTier) bool {
	return planRank[p] >= planRank[other]
}

// Region represents a serving region.
type Region string

const (
	RegionIN   Region = "IN"
	RegionINTL Region = "INTL"
)

// Complexity represents the heuristic complexity tier of a message.
type Complexity string

const (
	ComplexityCasual  Complexity = "CASUAL"
	ComplexitySimple  Complexity = "SIMPLE"
	ComplexityMedium  Complexity = "MEDIUM"
	ComplexityComplex Complexity = "COMPLEX"
	ComplexityExpert  Complexity = "EXPERT"
)

// Specialization represents a detected domain specialization tag.
type Specialization string

const (
	SpecCode      Specialization = "code"
	SpecBusiness  Specialization = "business"
	SpecWriting   Specialization = "writing"
	SpecReasoning Specialization = "reasoning"
)

// SpecializationVector holds per-domain affinity scores for a model, each in [0,1].
type SpecializationVector struct {
	Code      float64 `json:"code"`
	Business  float64 `json:"business"`
	Writing   float64 `json:"writing"`
	Reasoning float64 `json:"reasoning"`
}

// For returns the score for the given specialization tag.
func (v SpecializationVector) For(tag Specialization) float64 {
	switch tag {
	case SpecCode:
		return v.Code
	case SpecBusiness:
		return v.Business
	case SpecWriting:
		return v.Writing
	case SpecReasoning:
		return v.Reasoning
	default:
		return 0
	}
}

// ModelDescriptor describes one upstream completion model. Descriptors are
// immutable and process-wide; they are owned by the model registry.
type ModelDescriptor struct {
	ID               string               `json:"id"`
	Provider         string               `json:"provider"`
	DisplayName      string               `json:"display_name"`
	QualityScore     float64              `json:"quality_score"`     // [0,1]
	LatencyScore     float64              `json:"latency_score"`     // [0,1], higher = faster
	ReliabilityScore float64              `json:"reliability_score"` // [0,1]
	Specialization   SpecializationVector `json:"specialization"`
	CostPer1M        float64              `json:"cost_per_1m"` // currency units per 1M tokens
}

// RoutingRequest is the per-turn input to the routing engine.
type RoutingRequest struct {
	Text                string   `json:"text"`
	Plan                PlanTier `json:"plan_type"`
	UserID              string   `json:"user_id"`
	MonthlyUsedTokens   int64    `json:"monthly_used_tokens"`
	MonthlyLimitTokens  int64    `json:"monthly_limit_tokens"`
	DailyUsedTokens     int64    `json:"daily_used_tokens"`
	DailyLimitTokens    int64    `json:"daily_limit_tokens"`
	IsRepetitive        bool     `json:"is_repetitive,omitempty"`
	IsHighStakesContext bool     `json:"is_high_stakes_context,omitempty"`
	ConversationContext string   `json:"conversation_context,omitempty"`
	Region              Region   `json:"region"`
	RequestID           string   `json:"request_id,omitempty"`
}

// QualityBucket is a coarse human-readable quality expectation.
type QualityBucket string

const (
	QualityExcellent QualityBucket = "excellent"
	QualityHigh      QualityBucket = "high"
	QualityGood      QualityBucket = "good"
	QualityBasic     QualityBucket = "basic"
)

// RoutingDecision is the result of one routing call. It is ephemeral and
// returned to the caller; the engine does not persist it.
type RoutingDecision struct {
	ModelID          string         `json:"model_id"`
	Provider         string         `json:"provider"`
	DisplayName      string         `json:"display_name"`
	Reason           string         `json:"reason"`
	Complexity       Complexity     `json:"complexity"`
	BudgetPressure   float64        `json:"budget_pressure"`
	EstimatedCost    float64        `json:"estimated_cost"`
	ExpectedQuality  QualityBucket  `json:"expected_quality"`
	Specialization   Specialization `json:"specialization,omitempty"`
	FallbackChain    []string       `json:"fallback_chain"`
	Temperature      float64        `json:"temperature"`
	Confidence       float64        `json:"confidence"`
	WasKillSwitched  bool           `json:"was_kill_switched,omitempty"`
	KillSwitchReason string         `json:"kill_switch_reason,omitempty"`
	Region           Region         `json:"region"`
}

// QuotaResult is the answer from the external quota gate.
type QuotaResult struct {
	ModelID       string `json:"model_id"`
	WasDowngraded bool   `json:"was_downgraded"`
	Reason        string `json:"reason,omitempty"`
}
