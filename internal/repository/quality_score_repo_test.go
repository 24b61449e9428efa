//go:build !integration && !e2e

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQualityScoreCRUD(t *testing.T) {
	repo := NewQualityScoreRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	scores, err := repo.LoadQualityScores(ctx)
	require.NoError(t, err)
	assert.Empty(t, scores)

	require.NoError(t, repo.UpsertScore(ctx, "gpt-4o", 0.8))
	require.NoError(t, repo.UpsertScore(ctx, "claude-sonnet-4", 0.95))
	// Upsert overwrites.
	require.NoError(t, repo.UpsertScore(ctx, "gpt-4o", 0.75))

	scores, err = repo.LoadQualityScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"gpt-4o":          0.75,
		"claude-sonnet-4": 0.95,
	}, scores)

	require.NoError(t, repo.DeleteScore(ctx, "gpt-4o"))
	scores, err = repo.LoadQualityScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"claude-sonnet-4": 0.95}, scores)
}

func TestUpsertScoreRejectsOutOfRange(t *testing.T) {
	repo := NewQualityScoreRepository(newTestDB(t), zap.NewNop())
	ctx := context.Background()

	// The schema CHECK constraint refuses scores outside [0,1].
	assert.Error(t, repo.UpsertScore(ctx, "gpt-4o", 1.5))
	assert.Error(t, repo.UpsertScore(ctx, "gpt-4o", -0.1))
}
