package service

import (
	"github.com/Aman3189/soriva-backend-sub009/internal/models"
)

// Cost ceilings in currency units per 1M tokens. Models at or below the
// cheap ceiling survive the strictest filter; the expensive ceiling is an
// exclusive upper bound for the mildest filter.
const (
	cheapCostCeiling     = 1.0
	mediumCostCeiling    = 5.0
	expensiveCostCeiling = 15.0
)

// apexPressureThreshold is the pressure below which APEX users are exempt
// from cost filtering.
const apexPressureThreshold = 0.85

// Pressure maps a usage ratio onto [0,1]. Zero or negative limits count as
// fully exhausted. The curve is flat at 0 below 50% usage, flat at 1 above
// 95%, and linear in between, so pressure is monotonic non-decreasing in
// the ratio.
func Pressure(used, limit int64) float64 {
	if limit <= 0 {
		return 1
	}
	ratio := float64(used) / float64(limit)
	switch {
	case ratio <= 0.5:
		return 0
	case ratio >= 0.95:
		return 1
	default:
		return (ratio - 0.5) / 0.45
	}
}

// costFilterExempt reports whether the request bypasses cost filtering
// entirely: SOVEREIGN always, high-stakes always, APEX while pressure stays
// under the threshold.
func costFilterExempt(plan models.PlanTier, highStakes bool, pressure float64) bool {
	if plan == models.PlanSovereign || highStakes {
		return true
	}
	return plan == models.PlanApex && pressure < apexPressureThreshold
}

// filterByCost trims candidates according to budget pressure. The strictest
// band falls back to the single cheapest candidate rather than emptying the
// pool.
func filterByCost(candidates []models.ModelDescriptor, pressure float64) []models.ModelDescriptor {
	switch {
	case pressure > 0.9:
		kept := keepAtMost(candidates, cheapCostCeiling)
		if len(kept) == 0 {
			if cheapest, ok := Cheapest(candidates); ok {
				return []models.ModelDescriptor{cheapest}
			}
		}
		return kept
	case pressure > 0.75:
		return keepAtMost(candidates, mediumCostCeiling)
	case pressure > 0.6:
		return keepBelow(candidates, expensiveCostCeiling)
	default:
		return candidates
	}
}

func keepAtMost(candidates []models.ModelDescriptor, ceiling float64) []models.ModelDescriptor {
	var out []models.ModelDescriptor
	for _, m := range candidates {
		if m.CostPer1M <= ceiling {
			out = append(out, m)
		}
	}
	return out
}

func keepBelow(candidates []models.ModelDescriptor, ceiling float64) []models.ModelDescriptor {
	var out []models.ModelDescriptor
	for _, m := range candidates {
		if m.CostPer1M < ceiling {
			out = append(out, m)
		}
	}
	return out
}
