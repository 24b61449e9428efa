package service

import (
	"github.com/Aman3189/soriva-backend-sub009/internal/models"
)

// ModelRegistry is the static catalog of upstream models plus the per-plan,
// per-region availability map. It is read-only after construction and safe
// for concurrent use without locking.
type ModelRegistry struct {
	ordered      []models.ModelDescriptor
	byID         map[string]models.ModelDescriptor
	availability map[models.PlanTier]map[models.Region][]string
	maxCost      float64
}

// NewModelRegistry creates a registry with the default catalog.
func NewModelRegistry() *ModelRegistry {
	return newRegistry(defaultCatalog, defaultAvailability)
}

// NewModelRegistryWith creates a registry from an explicit catalog and
// availability map. Used by tests and by deployments with trimmed catalogs.
func NewModelRegistryWith(catalog []models.ModelDescriptor, availability map[models.PlanTier]map[models.Region][]string) *ModelRegistry {
	return newRegistry(catalog, availability)
}

func newRegistry(catalog []models.ModelDescriptor, availability map[models.PlanTier]map[models.Region][]string) *ModelRegistry {
	byID := make(map[string]models.ModelDescriptor, len(catalog))
	var maxCost float64
	for _, m := range catalog {
		byID[m.ID] = m
		if m.CostPer1M > maxCost {
			maxCost = m.CostPer1M
		}
	}
	return &ModelRegistry{
		ordered:      catalog,
		byID:         byID,
		availability: availability,
		maxCost:      maxCost,
	}
}

// Get returns the descriptor for the given model id.
func (r *ModelRegistry) Get(id string) (models.ModelDescriptor, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// All returns the full ordered catalog.
func (r *ModelRegistry) All() []models.ModelDescriptor {
	return r.ordered
}

// First returns the first catalog entry. It is the documented last resort
// when every candidate has been kill-switched away.
func (r *ModelRegistry) First() models.ModelDescriptor {
	return r.ordered[0]
}

// MaxCost returns the highest CostPer1M across the catalog, used to
// normalize cost scores.
func (r *ModelRegistry) MaxCost() float64 {
	return r.maxCost
}

// ModelsFor returns the descriptors a plan may use in a region, in
// availability order. Unknown plan/region combinations yield nil.
func (r *ModelRegistry) ModelsFor(plan models.PlanTier, region models.Region) []models.ModelDescriptor {
	regions, ok := r.availability[plan]
	if !ok {
		return nil
	}
	ids, ok := regions[region]
	if !ok {
		return nil
	}
	out := make([]models.ModelDescriptor, 0, len(ids))
	for _, id := range ids {
		if m, ok := r.byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Cheapest returns the lowest-cost descriptor from the list, or false when
// the list is empty. Ties keep the earlier entry (stable).
func Cheapest(list []models.ModelDescriptor) (models.ModelDescriptor, bool) {
	if len(list) == 0 {
		return models.ModelDescriptor{}, false
	}
	best := list[0]
	for _, m := range list[1:] {
		if m.CostPer1M < best.CostPer1M {
			best = m
		}
	}
	return best, true
}

// defaultCatalog is the production model catalog. Scores are hand-tuned;
// CostPer1M is blended input+output cost in currency units per million tokens.
var defaultCatalog = []models.ModelDescriptor{
	{
		ID: "gemini-2.0-flash", Provider: "google", DisplayName: "Gemini 2.0 Flash",
		QualityScore: 0.68, LatencyScore: 0.95, ReliabilityScore: 0.97,
		Specialization: models.SpecializationVector{Code: 0.55, Business: 0.5, Writing: 0.55, Reasoning: 0.5},
		CostPer1M:      0.4,
	},
	{
		ID: "gpt-4o-mini", Provider: "openai", DisplayName: "GPT-4o mini",
		QualityScore: 0.7, LatencyScore: 0.9, ReliabilityScore: 0.96,
		Specialization: models.SpecializationVector{Code: 0.6, Business: 0.55, Writing: 0.6, Reasoning: 0.55},
		CostPer1M:      0.75,
	},
	{
		ID: "claude-3-5-haiku", Provider: "anthropic", DisplayName: "Claude 3.5 Haiku",
		QualityScore: 0.72, LatencyScore: 0.88, ReliabilityScore: 0.95,
		Specialization: models.SpecializationVector{Code: 0.65, Business: 0.55, Writing: 0.7, Reasoning: 0.6},
		CostPer1M:      2.4,
	},
	{
		ID: "deepseek-chat", Provider: "deepseek", DisplayName: "DeepSeek Chat",
		QualityScore: 0.74, LatencyScore: 0.75, ReliabilityScore: 0.9,
		Specialization: models.SpecializationVector{Code: 0.8, Business: 0.45, Writing: 0.5, Reasoning: 0.75},
		CostPer1M:      1.1,
	},
	{
		ID: "gemini-2.5-pro", Provider: "google", DisplayName: "Gemini 2.5 Pro",
		QualityScore: 0.88, LatencyScore: 0.7, ReliabilityScore: 0.94,
		Specialization: models.SpecializationVector{Code: 0.8, Business: 0.75, Writing: 0.75, Reasoning: 0.85},
		CostPer1M:      7.0,
	},
	{
		ID: "gpt-4o", Provider: "openai", DisplayName: "GPT-4o",
		QualityScore: 0.87, LatencyScore: 0.72, ReliabilityScore: 0.95,
		Specialization: models.SpecializationVector{Code: 0.8, Business: 0.8, Writing: 0.8, Reasoning: 0.8},
		CostPer1M:      10.0,
	},
	{
		ID: "claude-sonnet-4", Provider: "anthropic", DisplayName: "Claude Sonnet 4",
		QualityScore: 0.92, LatencyScore: 0.65, ReliabilityScore: 0.95,
		Specialization: models.SpecializationVector{Code: 0.92, Business: 0.8, Writing: 0.9, Reasoning: 0.88},
		CostPer1M:      13.5,
	},
	{
		ID: "o3", Provider: "openai", DisplayName: "OpenAI o3",
		QualityScore: 0.95, LatencyScore: 0.4, ReliabilityScore: 0.92,
		Specialization: models.SpecializationVector{Code: 0.9, Business: 0.7, Writing: 0.65, Reasoning: 0.97},
		CostPer1M:      32.0,
	},
}

// defaultAvailability maps plan tier and region to the allowed model ids.
// IN excludes the priciest frontier models on lower tiers to keep unit
// economics viable in the discounted-pricing region.
var defaultAvailability = map[models.PlanTier]map[models.Region][]string{
	models.PlanStarter: {
		models.RegionIN:   {"gemini-2.0-flash", "gpt-4o-mini"},
		models.RegionINTL: {"gemini-2.0-flash", "gpt-4o-mini"},
	},
	models.PlanLite: {
		models.RegionIN:   {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat"},
		models.RegionINTL: {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku"},
	},
	models.PlanPlus: {
		models.RegionIN:   {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro"},
		models.RegionINTL: {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro", "gpt-4o"},
	},
	models.PlanPro: {
		models.RegionIN:   {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro", "gpt-4o"},
		models.RegionINTL: {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro", "gpt-4o", "claude-sonnet-4"},
	},
	models.PlanApex: {
		models.RegionIN:   {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro", "gpt-4o", "claude-sonnet-4"},
		models.RegionINTL: {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro", "gpt-4o", "claude-sonnet-4", "o3"},
	},
	models.PlanSovereign: {
		models.RegionIN:   {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro", "gpt-4o", "claude-sonnet-4", "o3"},
		models.RegionINTL: {"gemini-2.0-flash", "gpt-4o-mini", "deepseek-chat", "claude-3-5-haiku", "gemini-2.5-pro", "gpt-4o", "claude-sonnet-4", "o3"},
	},
}
