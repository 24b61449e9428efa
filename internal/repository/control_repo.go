// Package repository provides SQLite-backed data access for the routing engine.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"go.uber.org/zap"
)

// ControlRepository reads and mutates the operator kill-switch state stored
// in the routing_control and disabled_models tables. It implements
// service.ControlSource.
type ControlRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewControlRepository creates a new ControlRepository.
func NewControlRepository(db *sql.DB, logger *zap.Logger) *ControlRepository {
	return &ControlRepository{db: db, logger: logger}
}

// LoadControlState assembles a full ConfigSnapshot from the control tables.
// A missing singleton row yields a permissive snapshot.
func (r *ControlRepository) LoadControlState(ctx context.Context) (*service.ConfigSnapshot, error) {
	snap := &service.ConfigSnapshot{
		DisabledModels:  map[string]bool{},
		ForceFlashPlans: map[models.PlanTier]bool{},
	}

	var maintenance int
	var pressureFloor float64
	err := r.db.QueryRowContext(ctx,
		`SELECT maintenance, pressure_floor FROM routing_control WHERE id = 1`,
	).Scan(&maintenance, &pressureFloor)
	switch {
	case err == sql.ErrNoRows:
		// Control row not seeded yet; defaults are permissive.
	case err != nil:
		return nil, fmt.Errorf("load routing control: %w", err)
	default:
		snap.Maintenance = maintenance == 1
		snap.PressureFloor = pressureFloor
	}

	rows, err := r.db.QueryContext(ctx, `SELECT model_id FROM disabled_models`)
	if err != nil {
		return nil, fmt.Errorf("load disabled models: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan disabled model: %w", err)
		}
		snap.DisabledModels[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate disabled models: %w", err)
	}

	planRows, err := r.db.QueryContext(ctx, `SELECT plan FROM force_flash_plans`)
	if err != nil {
		return nil, fmt.Errorf("load force-flash plans: %w", err)
	}
	defer planRows.Close()
	for planRows.Next() {
		var plan string
		if err := planRows.Scan(&plan); err != nil {
			return nil, fmt.Errorf("scan force-flash plan: %w", err)
		}
		snap.ForceFlashPlans[models.PlanTier(plan)] = true
	}
	if err := planRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate force-flash plans: %w", err)
	}

	return snap, nil
}

// SetModelDisabled toggles a model kill-switch.
func (r *ControlRepository) SetModelDisabled(ctx context.Context, modelID string, disabled bool) error {
	if disabled {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO disabled_models (model_id) VALUES (?)`, modelID)
		if err != nil {
			return fmt.Errorf("disable model %s: %w", modelID, err)
		}
		return nil
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM disabled_models WHERE model_id = ?`, modelID)
	if err != nil {
		return fmt.Errorf("enable model %s: %w", modelID, err)
	}
	return nil
}

// SetMaintenance toggles maintenance mode.
func (r *ControlRepository) SetMaintenance(ctx context.Context, on bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE routing_control SET maintenance = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		boolToInt(on))
	if err != nil {
		return fmt.Errorf("set maintenance: %w", err)
	}
	return nil
}

// SetPressureFloor sets the operator pressure floor.
func (r *ControlRepository) SetPressureFloor(ctx context.Context, floor float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE routing_control SET pressure_floor = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1`,
		floor)
	if err != nil {
		return fmt.Errorf("set pressure floor: %w", err)
	}
	return nil
}

// boolToInt converts a boolean to an integer (1 or 0) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
