package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// QualityScoreSource supplies score overrides from an external store,
// typically the model_quality_scores table.
type QualityScoreSource interface {
	LoadQualityScores(ctx context.Context) (map[string]float64, error)
}

// QualityScores is the hot-reloadable model quality table used by the
// fallback protocol's quality-drop check. Defaults are baked in from the
// registry; overrides can come from a YAML file (watched) or an external
// source (on demand). The full table is swapped atomically on reload.
type QualityScores struct {
	table    atomic.Pointer[map[string]float64]
	defaults map[string]float64
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewQualityScores builds the table from the registry's baked-in scores.
func NewQualityScores(registry *ModelRegistry, logger *zap.Logger) *QualityScores {
	defaults := make(map[string]float64, len(registry.All()))
	for _, m := range registry.All() {
		defaults[m.ID] = m.QualityScore
	}
	qs := &QualityScores{
		defaults: defaults,
		logger:   logger,
	}
	qs.table.Store(&defaults)
	return qs
}

// Score returns the current quality score for the model. Unknown models
// score zero, which makes any substitution toward them a quality drop.
func (qs *QualityScores) Score(modelID string) float64 {
	return (*qs.table.Load())[modelID]
}

// IsQualityDrop reports whether falling back would lower quality.
func (qs *QualityScores) IsQualityDrop(primaryID, fallbackID string) bool {
	t := *qs.table.Load()
	return t[fallbackID] < t[primaryID]
}

// LoadFile merges a YAML override file over the defaults and swaps the
// table. File format: flat mapping of model id to score.
func (qs *QualityScores) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read quality scores %s: %w", path, err)
	}
	var overrides map[string]float64
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("parse quality scores %s: %w", path, err)
	}
	qs.applyOverrides(overrides)
	qs.logger.Info("quality scores loaded from file",
		zap.String("path", path),
		zap.Int("overrides", len(overrides)))
	return nil
}

// ReloadFromSource merges overrides from the external source and swaps the
// table. Intended for the admin refresh endpoint and startup.
func (qs *QualityScores) ReloadFromSource(ctx context.Context, source QualityScoreSource) error {
	overrides, err := source.LoadQualityScores(ctx)
	if err != nil {
		return fmt.Errorf("load quality scores: %w", err)
	}
	qs.applyOverrides(overrides)
	qs.logger.Info("quality scores reloaded", zap.Int("overrides", len(overrides)))
	return nil
}

func (qs *QualityScores) applyOverrides(overrides map[string]float64) {
	merged := make(map[string]float64, len(qs.defaults)+len(overrides))
	for id, score := range qs.defaults {
		merged[id] = score
	}
	for id, score := range overrides {
		if score < 0 || score > 1 {
			qs.logger.Warn("ignoring out-of-range quality score",
				zap.String("model", id),
				zap.Float64("score", score))
			continue
		}
		merged[id] = score
	}
	qs.table.Store(&merged)
}

// Watch reloads the override file whenever it changes. Editors often
// replace files via rename, so the parent directory is watched and events
// are filtered by name.
func (qs *QualityScores) Watch(path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	qs.watcher = watcher
	qs.done = make(chan struct{})

	target := filepath.Clean(path)
	go func() {
		defer close(qs.done)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if err := qs.LoadFile(path); err != nil {
					qs.logger.Warn("quality score reload failed", zap.Error(err))
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				qs.logger.Warn("quality score watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

// StopWatch closes the file watcher if one is running.
func (qs *QualityScores) StopWatch() {
	if qs.watcher == nil {
		return
	}
	qs.watcher.Close()
	<-qs.done
	qs.watcher = nil
}
