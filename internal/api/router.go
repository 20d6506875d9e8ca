package api

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-cart/internal/api/handlers/health"
	mappingHandler "recipe-cart/internal/api/handlers/mapping"
	recipeHandler "recipe-cart/internal/api/handlers/recipe"
	"recipe-cart/internal/api/middleware"
	"recipe-cart/internal/core/mapping"
	"recipe-cart/internal/infrastructure/config"
	"recipe-cart/internal/pkg/common"
)

// Dependencies 路由需要的服務
type Dependencies struct {
	Processor    recipeHandler.RecipeProcessor
	Mapper       *mapping.Mapper
	Catalog      health.ProductCounter
	Cache        health.CacheReporter
	Deduplicator *middleware.Deduplicator // nil 時不做去重
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if deps.Processor == nil || deps.Mapper == nil {
		return nil, errors.New("router requires a recipe processor and a mapper")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 健康檢查不受限流與逾時影響
	healthHandler := health.NewHandler(cfg.App.Version, deps.Catalog, deps.Cache)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if deps.Deduplicator != nil {
		api.Use(deps.Deduplicator.Middleware())
	}
	api.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	recipeHandlerInstance := recipeHandler.NewHandler(deps.Processor)
	mappingHandlerInstance := mappingHandler.NewHandler(deps.Mapper)

	recipeGroup := api.Group("/recipe")
	{
		// 食譜名稱 → 食材 → 商品
		recipeGroup.POST("/process", recipeHandlerInstance.HandleProcess)
	}

	// 已解析食材直接對應
	api.POST("/mapping", mappingHandlerInstance.HandleMap)

	catalogGroup := api.Group("/catalog")
	{
		catalogGroup.GET("/lookup", mappingHandlerInstance.HandleLookup)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Bool("dedup", deps.Deduplicator != nil),
	)

	return router, nil
}
