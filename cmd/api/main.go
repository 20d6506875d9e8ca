package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"recipe-cart/internal/api"
	"recipe-cart/internal/api/middleware"
	"recipe-cart/internal/core/ai/cache"
	aiService "recipe-cart/internal/core/ai/service"
	"recipe-cart/internal/core/catalog"
	"recipe-cart/internal/core/mapping"
	"recipe-cart/internal/core/recipe"
	"recipe-cart/internal/core/service"
	"recipe-cart/internal/infrastructure/config"
	"recipe-cart/internal/pkg/common"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("catalog_backend", cfg.Catalog.Backend),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Int("mapping_workers", cfg.Mapping.Workers),
	)

	if cfg.OpenRouter.APIKey == "" {
		common.LogWarn("OPENROUTER_API_KEY 未設定，/api/v1/recipe/process 將無法使用")
	}

	// 初始化快取
	cacheStore, err := cache.New(cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if cacheStore != nil {
		defer cacheStore.Close()
	}

	// 初始化商品目錄
	store, closeCatalog, err := openCatalog(cfg.Catalog)
	if err != nil {
		common.LogFatal("Failed to open catalog", zap.Error(err))
	}
	defer closeCatalog()

	// AI 服務
	provider := service.NewOpenRouterService(service.ProviderConfig(cfg))
	defer provider.Close()
	ai := aiService.NewService(cfg, provider, cacheStore)

	// 食材對應與食譜處理
	mapper := mapping.NewMapper(store, nil,
		mapping.WithWorkers(cfg.Mapping.Workers),
		mapping.WithLookupTimeout(cfg.Mapping.LookupTimeout),
	)
	processor := recipe.NewProcessor(recipe.NewExtractionService(ai), mapper)

	var dedup *middleware.Deduplicator
	if cfg.DedupWindow > 0 {
		dedup = middleware.NewDeduplicator(cfg.DedupWindow)
		defer dedup.Close()
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Dependencies{
		Processor:    processor,
		Mapper:       mapper,
		Catalog:      store,
		Cache:        ai,
		Deduplicator: dedup,
	})
	if err != nil {
		common.LogFatal("Failed to setup router", zap.Error(err))
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	// 設置關閉超時
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}

// openCatalog 依設定開啟商品目錄，需要時寫入初始商品
func openCatalog(cfg config.CatalogConfig) (catalog.Store, func(), error) {
	var (
		store   catalog.Store
		closeFn = func() {}
	)

	switch cfg.Backend {
	case "sqlite":
		db, err := catalog.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store = db
		closeFn = func() {
			if err := db.Close(); err != nil {
				common.LogError("Failed to close catalog", zap.Error(err))
			}
		}
	default:
		store = catalog.NewMemoryCatalog()
	}

	if cfg.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		n, err := catalog.Seed(ctx, store, catalog.DefaultProducts())
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("seed catalog: %w", err)
		}
		common.LogInfo("Catalog ready", zap.String("backend", cfg.Backend), zap.Int("seeded", n))
	}

	return store, closeFn, nil
}
