// Package handler implements the HTTP handlers for the routing API.
package handler

import (
	"net/http"

	"github.com/Aman3189/soriva-backend-sub009/internal/models"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouteHandler serves routing decisions.
type RouteHandler struct {
	engine *service.RoutingEngine
	logger *zap.Logger
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(engine *service.RoutingEngine, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{engine: engine, logger: logger}
}

var validPlans = map[models.PlanTier]bool{
	models.PlanStarter:   true,
	models.PlanLite:      true,
	models.PlanPlus:      true,
	models.PlanPro:       true,
	models.PlanApex:      true,
	models.PlanSovereign: true,
}

// Route handles POST /v1/route.
func (h *RouteHandler) Route(c *gin.Context) {
	var req models.RoutingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		errorResponse(c, http.StatusBadRequest, "text is required")
		return
	}
	if !validPlans[req.Plan] {
		errorResponse(c, http.StatusBadRequest, "unknown plan tier: "+string(req.Plan))
		return
	}
	if req.Region == "" {
		req.Region = models.RegionIN
	}
	if req.Region != models.RegionIN && req.Region != models.RegionINTL {
		errorResponse(c, http.StatusBadRequest, "unknown region: "+string(req.Region))
		return
	}
	if req.RequestID == "" {
		req.RequestID = c.GetString("request_id")
	}

	decision := h.engine.RouteWithQuota(c.Request.Context(), &req)
	c.JSON(http.StatusOK, decision)
}
