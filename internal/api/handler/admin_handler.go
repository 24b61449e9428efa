package handler

import (
	"net/http"

	"github.com/Aman3189/soriva-backend-sub009/internal/repository"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes operator controls: model kill switches, maintenance
// mode, the pressure floor, and quality score overrides. Every mutation
// refreshes the relevant in-memory state so changes take effect without
// waiting for the next poll cycle.
type AdminHandler struct {
	control   *repository.ControlRepository
	scoreRepo *repository.QualityScoreRepository
	snapshots *service.SnapshotStore
	scores    *service.QualityScores
	logger    *zap.Logger
}

func NewAdminHandler(
	control *repository.ControlRepository,
	scoreRepo *repository.QualityScoreRepository,
	snapshots *service.SnapshotStore,
	scores *service.QualityScores,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		control:   control,
		scoreRepo: scoreRepo,
		snapshots: snapshots,
		scores:    scores,
		logger:    logger,
	}
}

// Snapshot handles GET /api/admin/control. It returns the control state
// the routing engine is currently acting on.
func (h *AdminHandler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshots.Current())
}

type modelDisableRequest struct {
	Disabled bool `json:"disabled"`
}

// SetModelDisabled handles PUT /api/admin/models/:id/disabled.
func (h *AdminHandler) SetModelDisabled(c *gin.Context) {
	modelID := c.Param("id")
	var req modelDisableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.control.SetModelDisabled(c.Request.Context(), modelID, req.Disabled); err != nil {
		h.logger.Error("failed to update model kill switch",
			zap.String("model_id", modelID),
			zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "failed to update model state")
		return
	}
	h.refreshSnapshot(c)

	h.logger.Info("model kill switch updated",
		zap.String("model_id", modelID),
		zap.Bool("disabled", req.Disabled))
	c.JSON(http.StatusOK, gin.H{"model_id": modelID, "disabled": req.Disabled})
}

type maintenanceRequest struct {
	Enabled bool `json:"enabled"`
}

// SetMaintenance handles PUT /api/admin/maintenance.
func (h *AdminHandler) SetMaintenance(c *gin.Context) {
	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.control.SetMaintenance(c.Request.Context(), req.Enabled); err != nil {
		h.logger.Error("failed to update maintenance mode", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "failed to update maintenance mode")
		return
	}
	h.refreshSnapshot(c)

	h.logger.Warn("maintenance mode changed", zap.Bool("enabled", req.Enabled))
	c.JSON(http.StatusOK, gin.H{"maintenance": req.Enabled})
}

type pressureFloorRequest struct {
	Floor float64 `json:"floor"`
}

// SetPressureFloor handles PUT /api/admin/pressure-floor. The floor only
// raises observed pressure, so 0 restores normal behavior.
func (h *AdminHandler) SetPressureFloor(c *gin.Context) {
	var req pressureFloorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Floor < 0 || req.Floor > 1 {
		errorResponse(c, http.StatusBadRequest, "floor must be between 0 and 1")
		return
	}

	if err := h.control.SetPressureFloor(c.Request.Context(), req.Floor); err != nil {
		h.logger.Error("failed to update pressure floor", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "failed to update pressure floor")
		return
	}
	h.refreshSnapshot(c)

	h.logger.Info("pressure floor updated", zap.Float64("floor", req.Floor))
	c.JSON(http.StatusOK, gin.H{"pressure_floor": req.Floor})
}

type qualityScoreRequest struct {
	Score float64 `json:"score"`
}

// UpsertQualityScore handles PUT /api/admin/quality-scores/:id.
func (h *AdminHandler) UpsertQualityScore(c *gin.Context) {
	modelID := c.Param("id")
	var req qualityScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Score < 0 || req.Score > 1 {
		errorResponse(c, http.StatusBadRequest, "score must be between 0 and 1")
		return
	}

	if err := h.scoreRepo.UpsertScore(c.Request.Context(), modelID, req.Score); err != nil {
		h.logger.Error("failed to upsert quality score",
			zap.String("model_id", modelID),
			zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "failed to store quality score")
		return
	}
	if err := h.scores.ReloadFromSource(c.Request.Context(), h.scoreRepo); err != nil {
		h.logger.Warn("quality score stored but reload failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"model_id": modelID, "score": req.Score})
}

// DeleteQualityScore handles DELETE /api/admin/quality-scores/:id.
func (h *AdminHandler) DeleteQualityScore(c *gin.Context) {
	modelID := c.Param("id")

	if err := h.scoreRepo.DeleteScore(c.Request.Context(), modelID); err != nil {
		h.logger.Error("failed to delete quality score",
			zap.String("model_id", modelID),
			zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, "failed to delete quality score")
		return
	}
	if err := h.scores.ReloadFromSource(c.Request.Context(), h.scoreRepo); err != nil {
		h.logger.Warn("quality score deleted but reload failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"model_id": modelID, "deleted": true})
}

func (h *AdminHandler) refreshSnapshot(c *gin.Context) {
	if err := h.snapshots.Refresh(c.Request.Context()); err != nil {
		h.logger.Warn("control state stored but snapshot refresh failed", zap.Error(err))
	}
}
