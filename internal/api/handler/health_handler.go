package handler

import (
	"net/http"
	"time"

	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/Aman3189/soriva-backend-sub009/internal/version"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports process liveness and control-state freshness.
type HealthHandler struct {
	snapshots *service.SnapshotStore
	started   time.Time
}

func NewHealthHandler(snapshots *service.SnapshotStore) *HealthHandler {
	return &HealthHandler{snapshots: snapshots, started: time.Now()}
}

// Health handles GET /api/health.
func (h *HealthHandler) Health(c *gin.Context) {
	snap := h.snapshots.Current()
	c.JSON(http.StatusOK, gin.H{
		"status":           "ok",
		"version":          version.Short(),
		"uptime_seconds":   int64(time.Since(h.started).Seconds()),
		"maintenance":      snap.Maintenance,
		"snapshot_age_sec": int64(time.Since(snap.UpdatedAt).Seconds()),
	})
}
