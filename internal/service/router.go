package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuotaGate is the external authority on per-user quota downgrades. It runs
// after ranking and its substitutions are final.
type QuotaGate interface {
	GetBestAvailableModel(ctx context.Context, userID string, plan models.PlanTier, proposedModelID string, region models.Region) (models.QuotaResult, error)
}

// ObservabilitySink receives fire-and-forget routing events. Implementations
// must never panic into the routing path.
type ObservabilitySink interface {
	LogRouting(decision *models.RoutingDecision, req *models.RoutingRequest)
	LogWarn(msg string, requestID string)
}

// ZapSink is the default ObservabilitySink backed by a zap logger.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink creates a ZapSink.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return &ZapSink{logger: logger}
}

// LogRouting emits one structured line per decision.
func (s *ZapSink) LogRouting(d *models.RoutingDecision, req *models.RoutingRequest) {
	s.logger.Info("routing decision",
		zap.String("request_id", req.RequestID),
		zap.String("model", d.ModelID),
		zap.String("plan", string(req.Plan)),
		zap.String("region", string(d.Region)),
		zap.String("complexity", string(d.Complexity)),
		zap.Float64("pressure", d.BudgetPressure),
		zap.Float64("confidence", d.Confidence),
		zap.Bool("kill_switched", d.WasKillSwitched))
}

// LogWarn emits a warning tied to a request.
func (s *ZapSink) LogWarn(msg string, requestID string) {
	s.logger.Warn(msg, zap.String("request_id", requestID))
}

// RoutingEngine selects the upstream model for each inbound chat turn. It is
// built once at process start and shared by reference across request
// handlers; every method is safe for concurrent use. All state it reads is
// either immutable (registry, availability) or atomically snapshotted
// (kill-switch config).
type RoutingEngine struct {
	registry   *ModelRegistry
	classifier *ComplexityClassifier
	specDet    *SpecializationDetector
	stakesDet  *HighStakesDetector
	snapshots  *SnapshotStore
	gate       QuotaGate // optional
	sink       ObservabilitySink
	logger     *zap.Logger
}

// RoutingEngineDeps holds the collaborators for NewRoutingEngine.
type RoutingEngineDeps struct {
	Registry  *ModelRegistry
	Snapshots *SnapshotStore
	Gate      QuotaGate
	Sink      ObservabilitySink
	Logger    *zap.Logger
}

// NewRoutingEngine creates a RoutingEngine.
func NewRoutingEngine(deps RoutingEngineDeps) *RoutingEngine {
	sink := deps.Sink
	if sink == nil {
		sink = NewZapSink(deps.Logger)
	}
	return &RoutingEngine{
		registry:   deps.Registry,
		classifier: NewComplexityClassifier(),
		specDet:    NewSpecializationDetector(),
		stakesDet:  NewHighStakesDetector(),
		snapshots:  deps.Snapshots,
		gate:       deps.Gate,
		sink:       sink,
		logger:     deps.Logger,
	}
}

// Route produces a RoutingDecision for the request. Pure computation: no
// I/O, no blocking, deterministic for identical inputs and snapshot.
func (e *RoutingEngine) Route(req *models.RoutingRequest) *models.RoutingDecision {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	snap := e.snapshots.Current()

	complexity := e.classifier.Classify(req.Text)
	if req.IsRepetitive && complexityRank(complexity) > complexityRank(models.ComplexityMedium) {
		// Repetitive turns don't earn frontier models.
		complexity = models.ComplexityMedium
	}
	specialization := e.specDet.Detect(req.Text, req.ConversationContext)
	highStakes := e.stakesDet.Detect(req.Text, req.IsHighStakesContext)

	rawPressure := math.Max(
		Pressure(req.MonthlyUsedTokens, req.MonthlyLimitTokens),
		Pressure(req.DailyUsedTokens, req.DailyLimitTokens),
	)
	pressure := snap.EffectivePressure(rawPressure)
	wasKillSwitched := pressure > rawPressure
	killSwitchReason := ""
	if wasKillSwitched {
		killSwitchReason = "operator pressure floor"
	}

	// Plan/region availability, then kill-switch filtering.
	available := e.registry.ModelsFor(req.Plan, req.Region)
	candidates := make([]models.ModelDescriptor, 0, len(available))
	for _, m := range available {
		if snap.IsModelAllowed(m.ID) {
			candidates = append(candidates, m)
		}
	}

	// Last resort: every candidate kill-switched away. Synthesize a result
	// from the first registry entry and flag it for operator visibility.
	if len(candidates) == 0 {
		first := e.registry.First()
		d := e.buildDecision(req, first, nil, complexity, pressure, specialization, highStakes,
			"all candidates disabled; last-resort registry fallback", 0.3)
		d.WasKillSwitched = true
		d.KillSwitchReason = "kill-switch emptied candidate set"
		e.sink.LogWarn("routing candidate set empty after kill-switch filter", req.RequestID)
		e.sink.LogRouting(d, req)
		return d
	}

	// Maintenance mode and force-flash both pin to the cheapest candidate.
	if snap.InMaintenance() || snap.ShouldForceFlash(req.Plan) {
		cheapest, _ := Cheapest(candidates)
		reason := "forced to cheapest model by operator kill-switch"
		ksReason := "force-flash"
		if snap.InMaintenance() {
			reason = "maintenance mode: cheapest model only"
			ksReason = "maintenance"
		}
		d := e.buildDecision(req, cheapest, nil, complexity, pressure, specialization, highStakes, reason, 0.6)
		d.WasKillSwitched = true
		d.KillSwitchReason = ksReason
		e.sink.LogRouting(d, req)
		return d
	}

	// Budget admission control.
	if !costFilterExempt(req.Plan, highStakes, pressure) {
		filtered := filterByCost(candidates, pressure)
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	rank, ok := Rank(RankInput{
		Candidates:     candidates,
		Complexity:     complexity,
		Pressure:       pressure,
		HighStakes:     highStakes,
		Specialization: specialization,
		MaxCost:        e.registry.MaxCost(),
	})
	if !ok {
		// Unreachable with a non-empty candidate set; keep the guard anyway.
		first := e.registry.First()
		d := e.buildDecision(req, first, nil, complexity, pressure, specialization, highStakes,
			"empty ranking pool; last-resort registry fallback", 0.3)
		d.WasKillSwitched = true
		d.KillSwitchReason = "empty ranking pool"
		return d
	}

	chainIDs := make([]string, 0, len(rank.FallbackChain))
	for _, m := range rank.FallbackChain {
		chainIDs = append(chainIDs, m.ID)
	}

	d := e.buildDecision(req, rank.Selected, chainIDs, complexity, pressure, specialization, highStakes,
		e.reasonString(rank, complexity, pressure, specialization, highStakes, req.IsRepetitive), rank.Confidence)
	d.WasKillSwitched = wasKillSwitched
	d.KillSwitchReason = killSwitchReason
	e.sink.LogRouting(d, req)
	return d
}

// RouteWithQuota wraps Route with the post-hoc quota gate check. A gate
// substitution is authoritative: it is surfaced via the kill-switch flags
// and intentionally not re-validated against the kill-switch allow-list.
func (e *RoutingEngine) RouteWithQuota(ctx context.Context, req *models.RoutingRequest) *models.RoutingDecision {
	d := e.Route(req)
	if e.gate == nil {
		return d
	}

	res, err := e.gate.GetBestAvailableModel(ctx, req.UserID, req.Plan, d.ModelID, req.Region)
	if err != nil {
		e.sink.LogWarn("quota gate unavailable, keeping ranked model: "+err.Error(), req.RequestID)
		return d
	}
	if !res.WasDowngraded || res.ModelID == d.ModelID {
		return d
	}

	substitute, ok := e.registry.Get(res.ModelID)
	if !ok {
		e.sink.LogWarn("quota gate proposed unknown model "+res.ModelID, req.RequestID)
		return d
	}

	d.ModelID = substitute.ID
	d.Provider = substitute.Provider
	d.DisplayName = substitute.DisplayName
	d.EstimatedCost = estimateCost(req.Text, substitute)
	d.ExpectedQuality = qualityBucket(substitute.QualityScore)
	d.Reason = d.Reason + "; quota gate downgrade: " + res.Reason
	d.WasKillSwitched = true
	d.KillSwitchReason = res.Reason
	return d
}

// buildDecision assembles the common decision fields.
func (e *RoutingEngine) buildDecision(
	req *models.RoutingRequest,
	selected models.ModelDescriptor,
	chain []string,
	complexity models.Complexity,
	pressure float64,
	specialization models.Specialization,
	highStakes bool,
	reason string,
	conf float64,
) *models.RoutingDecision {
	if chain == nil {
		chain = []string{}
	}
	return &models.RoutingDecision{
		ModelID:         selected.ID,
		Provider:        selected.Provider,
		DisplayName:     selected.DisplayName,
		Reason:          reason,
		Complexity:      complexity,
		BudgetPressure:  pressure,
		EstimatedCost:   estimateCost(req.Text, selected),
		ExpectedQuality: qualityBucket(selected.QualityScore),
		Specialization:  specialization,
		FallbackChain:   chain,
		Temperature:     temperatureFor(complexity, specialization),
		Confidence:      conf,
		Region:          req.Region,
	}
}

// reasonString builds the human-readable audit trail for a ranked decision.
func (e *RoutingEngine) reasonString(
	rank RankResult,
	complexity models.Complexity,
	pressure float64,
	specialization models.Specialization,
	highStakes bool,
	repetitive bool,
) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%s complexity", strings.ToLower(string(complexity))))
	switch {
	case pressure >= 0.9:
		parts = append(parts, "severe budget pressure")
	case pressure > 0.6:
		parts = append(parts, "elevated budget pressure")
	}
	if highStakes {
		parts = append(parts, "high-stakes context")
	}
	if specialization != "" {
		parts = append(parts, string(specialization)+" specialization")
	}
	if repetitive {
		parts = append(parts, "repetitive turn")
	}
	if rank.Scored {
		parts = append(parts, fmt.Sprintf("ranked first of %d (score %.3f)", len(rank.FallbackChain)+1, rank.Score))
	} else {
		parts = append(parts, "single candidate")
	}
	return strings.Join(parts, ", ")
}

// estimateCost approximates the turn cost from the prompt length plus a
// nominal completion allowance.
func estimateCost(text string, m models.ModelDescriptor) float64 {
	promptTokens := float64(len(text)) / 4
	const completionAllowance = 600
	return (promptTokens + completionAllowance) / 1_000_000 * m.CostPer1M
}

func qualityBucket(score float64) models.QualityBucket {
	switch {
	case score >= 0.9:
		return models.QualityExcellent
	case score >= 0.75:
		return models.QualityHigh
	case score >= 0.6:
		return models.QualityGood
	default:
		return models.QualityBasic
	}
}

// temperatureFor picks a sampling temperature by task shape: precise for
// code and reasoning, loose for casual chat and creative writing.
func temperatureFor(complexity models.Complexity, specialization models.Specialization) float64 {
	switch specialization {
	case models.SpecCode:
		return 0.3
	case models.SpecReasoning:
		return 0.4
	case models.SpecWriting:
		return 0.9
	}
	if complexity == models.ComplexityCasual {
		return 0.8
	}
	return 0.7
}

var complexityRanks = map[models.Complexity]int{
	models.ComplexityCasual:  0,
	models.ComplexitySimple:  1,
	models.ComplexityMedium:  2,
	models.ComplexityComplex: 3,
	models.ComplexityExpert:  4,
}

func complexityRank(c models.Complexity) int {
	return complexityRanks[c]
}
