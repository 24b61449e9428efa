package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"go.uber.org/zap"
)

// ConfigSnapshot is an immutable view of the operator kill-switch state.
// Routing reads exactly one snapshot per decision; updates replace the whole
// value so concurrent readers never observe a torn configuration.
type ConfigSnapshot struct {
	DisabledModels  map[string]bool
	ForceFlashPlans map[models.PlanTier]bool
	PressureFloor   float64
	Maintenance     bool
	UpdatedAt       time.Time
}

// IsModelAllowed reports whether the model has not been kill-switched.
func (s *ConfigSnapshot) IsModelAllowed(id string) bool {
	return !s.DisabledModels[id]
}

// ShouldForceFlash reports whether the plan is pinned to the cheapest model.
func (s *ConfigSnapshot) ShouldForceFlash(plan models.PlanTier) bool {
	return s.ForceFlashPlans[plan]
}

// EffectivePressure applies the operator pressure floor. The override may
// only raise pressure, never lower it.
func (s *ConfigSnapshot) EffectivePressure(pressure float64) float64 {
	if s.PressureFloor > pressure {
		return s.PressureFloor
	}
	return pressure
}

// InMaintenance reports whether the platform is in maintenance mode.
func (s *ConfigSnapshot) InMaintenance() bool {
	return s.Maintenance
}

// ControlSource supplies the raw kill-switch state, typically backed by the
// routing_control table.
type ControlSource interface {
	LoadControlState(ctx context.Context) (*ConfigSnapshot, error)
}

// SnapshotStore holds the current ConfigSnapshot behind an atomic pointer
// and refreshes it from a ControlSource on an interval.
type SnapshotStore struct {
	current  atomic.Pointer[ConfigSnapshot]
	source   ControlSource
	interval time.Duration
	logger   *zap.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSnapshotStore creates a store seeded with a permissive empty snapshot.
func NewSnapshotStore(source ControlSource, interval time.Duration, logger *zap.Logger) *SnapshotStore {
	st := &SnapshotStore{
		source:   source,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
	st.current.Store(emptySnapshot())
	return st
}

func emptySnapshot() *ConfigSnapshot {
	return &ConfigSnapshot{
		DisabledModels:  map[string]bool{},
		ForceFlashPlans: map[models.PlanTier]bool{},
		UpdatedAt:       time.Now(),
	}
}

// Current returns the live snapshot. Never nil.
func (st *SnapshotStore) Current() *ConfigSnapshot {
	return st.current.Load()
}

// Replace atomically swaps in a new snapshot. Used by tests and by the
// admin API for immediate effect.
func (st *SnapshotStore) Replace(s *ConfigSnapshot) {
	if s == nil {
		return
	}
	st.current.Store(s)
}

// Refresh reloads once from the source and swaps on success. A failed load
// keeps the previous snapshot in place.
func (st *SnapshotStore) Refresh(ctx context.Context) error {
	if st.source == nil {
		return nil
	}
	snap, err := st.source.LoadControlState(ctx)
	if err != nil {
		return err
	}
	snap.UpdatedAt = time.Now()
	st.current.Store(snap)
	return nil
}

// Start launches the background refresh loop.
func (st *SnapshotStore) Start(ctx context.Context) {
	if st.source == nil || st.interval <= 0 {
		close(st.done)
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	st.cancel = cancel

	go func() {
		defer close(st.done)
		ticker := time.NewTicker(st.interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if err := st.Refresh(runCtx); err != nil {
					st.logger.Warn("config snapshot refresh failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the refresh loop and waits for it to exit.
func (st *SnapshotStore) Stop() {
	if st.cancel == nil {
		return
	}
	st.cancel()
	<-st.done
}
