//go:build !integration && !e2e

package service

import (
	"testing"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLookups(t *testing.T) {
	r := NewModelRegistry()

	m, ok := r.Get("claude-sonnet-4")
	require.True(t, ok)
	assert.Equal(t, "anthropic", m.Provider)

	_, ok = r.Get("no-such-model")
	assert.False(t, ok)

	assert.NotEmpty(t, r.All())
	assert.Equal(t, r.All()[0].ID, r.First().ID)
	assert.Equal(t, 32.0, r.MaxCost())
}

func TestModelsForPlanOrdering(t *testing.T) {
	r := NewModelRegistry()

	starter := r.ModelsFor(models.PlanStarter, models.RegionIN)
	sovereign := r.ModelsFor(models.PlanSovereign, models.RegionIN)
	assert.Less(t, len(starter), len(sovereign),
		"premium plans must see at least as many models as starter")

	// Every starter model is also available to sovereign.
	sovereignIDs := map[string]bool{}
	for _, m := range sovereign {
		sovereignIDs[m.ID] = true
	}
	for _, m := range starter {
		assert.True(t, sovereignIDs[m.ID], "model %s missing from sovereign set", m.ID)
	}
}

func TestModelsForRegionRestrictions(t *testing.T) {
	r := NewModelRegistry()

	in := r.ModelsFor(models.PlanApex, models.RegionIN)
	intl := r.ModelsFor(models.PlanApex, models.RegionINTL)

	inIDs := map[string]bool{}
	for _, m := range in {
		inIDs[m.ID] = true
	}
	assert.False(t, inIDs["o3"], "frontier model should be held back from IN at APEX")

	intlIDs := map[string]bool{}
	for _, m := range intl {
		intlIDs[m.ID] = true
	}
	assert.True(t, intlIDs["o3"])
}

func TestModelsForUnknownPlan(t *testing.T) {
	r := NewModelRegistry()
	assert.Nil(t, r.ModelsFor(models.PlanTier("FREE"), models.RegionIN))
}

func TestCheapest(t *testing.T) {
	_, ok := Cheapest(nil)
	assert.False(t, ok)

	list := []models.ModelDescriptor{
		{ID: "a", CostPer1M: 2},
		{ID: "b", CostPer1M: 1},
		{ID: "c", CostPer1M: 1},
	}
	m, ok := Cheapest(list)
	require.True(t, ok)
	// Ties keep the earlier entry.
	assert.Equal(t, "b", m.ID)
}
