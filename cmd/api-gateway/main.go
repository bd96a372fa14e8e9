package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-report-card/api/swagger"
	"github.com/noah-isme/sma-report-card/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-report-card/internal/middleware"
	"github.com/noah-isme/sma-report-card/internal/repository"
	"github.com/noah-isme/sma-report-card/internal/service"
	"github.com/noah-isme/sma-report-card/pkg/cache"
	"github.com/noah-isme/sma-report-card/pkg/config"
	"github.com/noah-isme/sma-report-card/pkg/export"
	"github.com/noah-isme/sma-report-card/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-report-card/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-report-card/pkg/middleware/requestid"
)

// @title SMA Report Card API
// @version 1.0.0
// @description Per-student, per-year grade records
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	metrics := service.NewMetricsService()

	var readiness []handler.ReadinessCheck
	var cacheRepo service.CacheRepository
	if cfg.RenderCache.Enabled {
		client, err := cache.NewRedis(context.Background(), cfg.Redis, 5*time.Second)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.String("addr", cache.Addr(cfg.Redis)), zap.Error(err))
		}
		renderCache := repository.NewRenderCacheRepository(client, cfg.RenderCache.KeyPrefix, logr)
		defer renderCache.Close() //nolint:errcheck
		cacheRepo = renderCache
		readiness = append(readiness, handler.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		})
	}

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.RenderCache.TTL, logr, cfg.RenderCache.Enabled)
	exportSvc := service.NewExportService(cacheSvc, export.NewCSVExporter(), export.NewPDFExporter("SMA Report Card"), cfg.RenderCache.TTL, logr)
	tokenSvc := service.NewTokenService(service.TokenConfig{
		Secret: cfg.JWT.Secret,
		Expiry: cfg.JWT.Expiration,
		Issuer: cfg.JWT.Issuer,
	})
	reportCardSvc := service.NewReportCardService(
		repository.NewReportCardRepository(),
		exportSvc,
		metrics,
		validator.New(),
		logr,
		service.ReportCardConfig{DefaultDateFormat: cfg.ReportCards.DefaultDateFormat},
	)

	metricsHandler := handler.NewMetricsHandler(metrics, readiness...)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(internalmiddleware.Metrics(metrics, cfg.Metrics.Path, "/health", "/ready"))
		r.GET(cfg.Metrics.Path, metricsHandler.Prometheus)
	}

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterReportCardRoutes(r.Group(cfg.APIPrefix), tokenSvc, handler.NewReportCardHandler(reportCardSvc), logr.Named("audit"))

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "render_cache", cfg.RenderCache.Enabled)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
