package api

import (
	"net/http"

	"github.com/Aman3189/soriva-backend-sub009/internal/api/handler"
	"github.com/Aman3189/soriva-backend-sub009/internal/api/middleware"
	"github.com/Aman3189/soriva-backend-sub009/internal/repository"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and dependencies.
type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

// ServerDeps holds all dependencies for the API server.
type ServerDeps struct {
	RoutingEngine  *service.RoutingEngine
	FallbackEngine *service.FallbackEngine
	Registry       *service.ModelRegistry
	Metrics        *service.FallbackMetrics
	Snapshots      *service.SnapshotStore
	QualityScores  *service.QualityScores
	ControlRepo    *repository.ControlRepository
	ScoreRepo      *repository.QualityScoreRepository
	Logger         *zap.Logger
}

// NewServer creates a new API server with all routes configured.
func NewServer(deps ServerDeps) *Server {
	logger := deps.Logger

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware.
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())

	// Health check.
	healthHandler := handler.NewHealthHandler(deps.Snapshots)
	r.GET("/api/health", healthHandler.Health)

	// Core decision endpoints.
	routeHandler := handler.NewRouteHandler(deps.RoutingEngine, logger)
	fallbackHandler := handler.NewFallbackHandler(deps.FallbackEngine, deps.Registry, deps.Metrics, logger)
	v1 := r.Group("/v1")
	{
		v1.POST("/route", routeHandler.Route)
		v1.POST("/fallback/decide", fallbackHandler.Decide)
	}

	// Metrics endpoints.
	metricsHandler := handler.NewMetricsHandler(deps.Metrics)
	metricsGroup := r.Group("/api/metrics/fallback")
	{
		metricsGroup.GET("", metricsHandler.Stats)
		metricsGroup.GET("/report", metricsHandler.Report)
		metricsGroup.POST("", metricsHandler.Record)
		metricsGroup.POST("/flush", metricsHandler.Flush)
	}

	// Operator controls.
	adminHandler := handler.NewAdminHandler(deps.ControlRepo, deps.ScoreRepo, deps.Snapshots, deps.QualityScores, logger)
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.GET("/control", adminHandler.Snapshot)
		adminGroup.PUT("/models/:id/disabled", adminHandler.SetModelDisabled)
		adminGroup.PUT("/maintenance", adminHandler.SetMaintenance)
		adminGroup.PUT("/pressure-floor", adminHandler.SetPressureFloor)
		adminGroup.PUT("/quality-scores/:id", adminHandler.UpsertQualityScore)
		adminGroup.DELETE("/quality-scores/:id", adminHandler.DeleteQualityScore)
	}

	return &Server{
		router: r,
		logger: logger,
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run starts the HTTP server.
func (s *Server) Run(addr string) error {
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.router.Run(addr)
}
