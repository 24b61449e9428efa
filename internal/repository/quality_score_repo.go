package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// QualityScoreRepository stores model quality-score overrides. It implements
// service.QualityScoreSource.
type QualityScoreRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewQualityScoreRepository creates a new QualityScoreRepository.
func NewQualityScoreRepository(db *sql.DB, logger *zap.Logger) *QualityScoreRepository {
	return &QualityScoreRepository{db: db, logger: logger}
}

// LoadQualityScores returns all stored overrides keyed by model id.
func (r *QualityScoreRepository) LoadQualityScores(ctx context.Context) (map[string]float64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT model_id, score FROM model_quality_scores`)
	if err != nil {
		return nil, fmt.Errorf("query quality scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]float64)
	for rows.Next() {
		var id string
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, fmt.Errorf("scan quality score: %w", err)
		}
		scores[id] = score
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quality scores: %w", err)
	}
	return scores, nil
}

// UpsertScore writes one override.
func (r *QualityScoreRepository) UpsertScore(ctx context.Context, modelID string, score float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO model_quality_scores (model_id, score, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(model_id) DO UPDATE SET score = excluded.score, updated_at = CURRENT_TIMESTAMP`,
		modelID, score)
	if err != nil {
		return fmt.Errorf("upsert quality score %s: %w", modelID, err)
	}
	return nil
}

// DeleteScore removes one override, reverting the model to its baked-in score.
func (r *QualityScoreRepository) DeleteScore(ctx context.Context, modelID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM model_quality_scores WHERE model_id = ?`, modelID)
	if err != nil {
		return fmt.Errorf("delete quality score %s: %w", modelID, err)
	}
	return nil
}
