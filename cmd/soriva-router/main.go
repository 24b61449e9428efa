package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Aman3189/soriva-backend-sub009/internal/api"
	"github.com/Aman3189/soriva-backend-sub009/internal/config"
	"github.com/Aman3189/soriva-backend-sub009/internal/database"
	"github.com/Aman3189/soriva-backend-sub009/internal/repository"
	"github.com/Aman3189/soriva-backend-sub009/internal/service"
	"github.com/Aman3189/soriva-backend-sub009/internal/version"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v":
			fmt.Println(version.Info())
			os.Exit(0)
		case "--help", "-h":
			printUsage()
			os.Exit(0)
		}
	}
	if err := run(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func printUsage() {
	fmt.Printf("Soriva Router - %s\n\n", version.Short())
	fmt.Println("Usage: soriva-router [OPTIONS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v  Show version information")
	fmt.Println("  --help, -h     Show this help message")
	fmt.Println()
	fmt.Println("Without options, starts the routing decision server.")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  Use environment variables or a .env file (SORIVA_ROUTER_* keys)")
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger.
	logDir := getLogDir()
	logger, err := newLogger(cfg.Server.LogLevel, logDir, cfg.LogRotation)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting soriva-router",
		zap.String("version", version.Short()),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	// Initialize database.
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer db.Close()

	// Run migrations.
	if err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Initialize repositories.
	controlRepo := repository.NewControlRepository(db, logger)
	scoreRepo := repository.NewQualityScoreRepository(db, logger)
	metricRepo := repository.NewFallbackMetricRepository(db, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Model catalog and quality scores.
	registry := service.NewModelRegistry()
	scores := service.NewQualityScores(registry, logger)
	if err := scores.ReloadFromSource(ctx, scoreRepo); err != nil {
		logger.Warn("failed to load stored quality scores", zap.Error(err))
	}
	if cfg.Quality.OverrideFile != "" {
		if err := scores.LoadFile(cfg.Quality.OverrideFile); err != nil {
			logger.Warn("failed to load quality override file",
				zap.String("path", cfg.Quality.OverrideFile),
				zap.Error(err))
		}
		if err := scores.Watch(cfg.Quality.OverrideFile); err != nil {
			logger.Warn("failed to watch quality override file", zap.Error(err))
		} else {
			defer scores.StopWatch()
		}
	}

	// Kill-switch snapshot store, seeded before serving.
	snapshots := service.NewSnapshotStore(controlRepo, cfg.Snapshot.RefreshInterval, logger)
	if err := snapshots.Refresh(ctx); err != nil {
		logger.Warn("failed to seed control snapshot, using defaults", zap.Error(err))
	}
	snapshots.Start(ctx)
	defer snapshots.Stop()

	// Fallback metrics with durable flushes.
	metrics := service.NewFallbackMetrics(cfg.Metrics.Capacity, logger)
	metrics.SetFlushCallback(metricRepo.InsertBatch)
	metrics.Start(ctx, cfg.Metrics.FlushInterval)
	defer metrics.Stop()

	// Decision engines.
	routingEngine := service.NewRoutingEngine(service.RoutingEngineDeps{
		Registry:  registry,
		Snapshots: snapshots,
		Logger:    logger,
	})
	fallbackEngine := service.NewFallbackEngine(registry, scores, logger)

	// Create HTTP server.
	server := api.NewServer(api.ServerDeps{
		RoutingEngine:  routingEngine,
		FallbackEngine: fallbackEngine,
		Registry:       registry,
		Metrics:        metrics,
		Snapshots:      snapshots,
		QualityScores:  scores,
		ControlRepo:    controlRepo,
		ScoreRepo:      scoreRepo,
		Logger:         logger,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("server started", zap.String("addr", addr))

	// Wait for shutdown signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(level string, logDir string, rotation config.LogRotationConfig) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug", "DEBUG":
		zapLevel = zap.DebugLevel
	case "warn", "WARN":
		zapLevel = zap.WarnLevel
	case "error", "ERROR":
		zapLevel = zap.ErrorLevel
	default:
		zapLevel = zap.InfoLevel
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", logDir, err)
	}

	lj := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "soriva-router.log"),
		MaxSize:    rotation.MaxSizeMB,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAgeDays,
		Compress:   rotation.Compress,
	}

	// File core: JSON encoder for structured log parsing
	fileEncoderCfg := zap.NewProductionEncoderConfig()
	fileEncoderCfg.TimeKey = "ts"
	fileEncoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(fileEncoderCfg),
		zapcore.AddSync(lj),
		zapLevel,
	)

	// Console core: human-readable output to stdout/stderr
	consoleEncoderCfg := zap.NewDevelopmentEncoderConfig()
	consoleEncoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoder := zapcore.NewConsoleEncoder(consoleEncoderCfg)

	// stdout for DEBUG/INFO, stderr for WARN/ERROR+
	stdoutCore := zapcore.NewCore(
		consoleEncoder,
		zapcore.Lock(os.Stdout),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l < zapcore.WarnLevel
		}),
	)
	stderrCore := zapcore.NewCore(
		consoleEncoder,
		zapcore.Lock(os.Stderr),
		zap.LevelEnablerFunc(func(l zapcore.Level) bool {
			return l >= zapLevel && l >= zapcore.WarnLevel
		}),
	)

	core := zapcore.NewTee(fileCore, stdoutCore, stderrCore)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
	), nil
}

func getLogDir() string {
	if dir := os.Getenv("SORIVA_ROUTER_LOGS_DIR"); dir != "" {
		return dir
	}
	return "logs"
}
