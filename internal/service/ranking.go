package service

import (
	"sort"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
)

// qualityWeightByComplexity sets how much model quality matters per tier.
var qualityWeightByComplexity = map[models.Complexity]float64{
	models.ComplexityCasual:  0.25,
	models.ComplexitySimple:  0.45,
	models.ComplexityMedium:  0.65,
	models.ComplexityComplex: 0.80,
	models.ComplexityExpert:  0.95,
}

const (
	highStakesQualityBoost = 0.15
	specializationBonusCap = 0.15
	reliabilityWeight      = 0.10
	maxFallbackChainLen    = 3
)

// RankInput carries everything the ranking pass needs.
type RankInput struct {
	Candidates     []models.ModelDescriptor
	Complexity     models.Complexity
	Pressure       float64
	HighStakes     bool
	Specialization models.Specialization
	MaxCost        float64 // registry-wide cost ceiling for normalization
}

// RankResult is an ordered candidate list plus selection metadata.
type RankResult struct {
	Selected      models.ModelDescriptor
	FallbackChain []models.ModelDescriptor
	Score         float64
	RunnerUpScore float64
	Confidence    float64
	Scored        bool
}

// scoredModel pairs a candidate with its computed score.
type scoredModel struct {
	model models.ModelDescriptor
	score float64
}

// Rank orders candidates by a pressure- and complexity-aware score and
// returns the winner plus up to three next-best fallbacks. Pools of zero or
// one member skip scoring entirely.
func Rank(in RankInput) (RankResult, bool) {
	switch len(in.Candidates) {
	case 0:
		return RankResult{}, false
	case 1:
		return RankResult{
			Selected:   in.Candidates[0],
			Confidence: confidence(in, in.Candidates[0], 0, 0, false),
		}, true
	}

	scored := make([]scoredModel, 0, len(in.Candidates))
	for _, m := range in.Candidates {
		scored = append(scored, scoredModel{model: m, score: scoreModel(in, m)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	chain := make([]models.ModelDescriptor, 0, maxFallbackChainLen)
	for _, s := range scored[1:] {
		if len(chain) == maxFallbackChainLen {
			break
		}
		chain = append(chain, s.model)
	}

	res := RankResult{
		Selected:      scored[0].model,
		FallbackChain: chain,
		Score:         scored[0].score,
		RunnerUpScore: scored[1].score,
		Scored:        true,
	}
	res.Confidence = confidence(in, res.Selected, res.Score, res.RunnerUpScore, true)
	return res, true
}

// scoreModel computes the pressure- and complexity-weighted score. Higher
// pressure shifts weight from quality to cost; CASUAL traffic values
// latency more.
func scoreModel(in RankInput, m models.ModelDescriptor) float64 {
	qualityWeight := qualityWeightByComplexity[in.Complexity]

	effectiveQuality := m.QualityScore
	if in.HighStakes {
		effectiveQuality = min(1, effectiveQuality+highStakesQualityBoost)
	}

	costNorm := 0.0
	if in.MaxCost > 0 {
		costNorm = clamp01(1 - m.CostPer1M/in.MaxCost)
	}

	adjQualityWeight := qualityWeight * (0.85 - 0.35*in.Pressure)
	costWeight := 0.25 + 0.45*in.Pressure

	latencyWeight := 0.08
	if in.Complexity == models.ComplexityCasual {
		latencyWeight = 0.2
	}

	specBonus := 0.0
	if in.Specialization != "" {
		specBonus = m.Specialization.For(in.Specialization) * specializationBonusCap
	}

	return adjQualityWeight*effectiveQuality +
		costWeight*costNorm +
		latencyWeight*m.LatencyScore +
		reliabilityWeight*m.ReliabilityScore +
		specBonus
}

// confidence is a heuristic bucket: base 0.7 plus bumps for a deep pool,
// tier extremity, high-stakes with a strong winner, a strong specialization
// match, and a clear score margin. Capped at 1.0.
func confidence(in RankInput, selected models.ModelDescriptor, score, runnerUp float64, scored bool) float64 {
	c := 0.7
	if len(in.Candidates) >= 3 {
		c += 0.1
	}
	if in.Complexity == models.ComplexityCasual || in.Complexity == models.ComplexityExpert {
		c += 0.08
	}
	if in.HighStakes && selected.QualityScore >= 0.85 {
		c += 0.1
	}
	if in.Specialization != "" && selected.Specialization.For(in.Specialization) >= 0.8 {
		c += 0.07
	}
	if scored && score-runnerUp > 0.15 {
		c += 0.05
	}
	return min(1, c)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
