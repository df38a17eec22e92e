package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campuskit/attendance-report-api/api/swagger"
	"github.com/campuskit/attendance-report-api/internal/handler"
	"github.com/campuskit/attendance-report-api/internal/middleware"
	"github.com/campuskit/attendance-report-api/internal/repository"
	"github.com/campuskit/attendance-report-api/internal/service"
	"github.com/campuskit/attendance-report-api/pkg/cache"
	"github.com/campuskit/attendance-report-api/pkg/config"
	"github.com/campuskit/attendance-report-api/pkg/database"
	"github.com/campuskit/attendance-report-api/pkg/logger"
	corsmiddleware "github.com/campuskit/attendance-report-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campuskit/attendance-report-api/pkg/middleware/requestid"
)

// @title Attendance Report API
// @version 1.0.0
// @description Attendance aggregation and reporting engine
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metrics := service.NewMetricsService()

	cacheEnabled := cfg.Report.CacheEnabled
	var cacheRepo *repository.CacheRepository
	if cacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report caching disabled", zap.Error(err))
			cacheEnabled = false
		} else {
			cacheRepo = repository.NewCacheRepository(client, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Report.CacheTTL, logr, cacheEnabled)
	}

	eventRepo := repository.NewAttendanceEventRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)

	reportSvc := service.NewReportService(eventRepo, catalogRepo, cacheSvc, metrics, nil, logr, cfg.Report.CacheTTL)
	exportSvc := service.NewExportService(reportSvc, logr)
	reportHandler := handler.NewReportHandler(reportSvc, exportSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group(cfg.APIPrefix)
	api.GET("/reports/attendance", reportHandler.Attendance)
	if cfg.Report.ExportEnabled {
		api.GET("/reports/attendance/export", reportHandler.Export)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
