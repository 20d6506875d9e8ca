package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-cart/internal/pkg/common"
)

const readinessTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Catalog   *CatalogStatus         `json:"catalog,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// CatalogStatus 商品目錄狀態
type CatalogStatus struct {
	Products int    `json:"products"`
	Error    string `json:"error,omitempty"`
}

// ProductCounter 可回報商品數的目錄
type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

// CacheReporter 可回報快取統計的服務
type CacheReporter interface {
	CacheStats() map[string]interface{}
}

// Handler 健康檢查處理程序
type Handler struct {
	version string
	catalog ProductCounter
	cache   CacheReporter
}

// NewHandler 創建健康檢查處理程序，cache 可為 nil
func NewHandler(version string, catalog ProductCounter, cache CacheReporter) *Handler {
	return &Handler{version: version, catalog: catalog, cache: cache}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if h.catalog != nil {
		status := h.catalogStatus(c.Request.Context())
		if status.Error != "" {
			response.Status = "degraded"
		}
		response.Catalog = status
	}
	if h.cache != nil {
		response.Cache = h.cache.CacheStats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("status", response.Status),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 商品目錄可查詢時才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.catalog != nil {
		status := h.catalogStatus(c.Request.Context())
		if status.Error != "" {
			common.LogWarn("Readiness check failed", zap.String("error", status.Error))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not_ready",
				"catalog": status,
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (h *Handler) catalogStatus(ctx context.Context) *CatalogStatus {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	n, err := h.catalog.Count(ctx)
	if err != nil {
		return &CatalogStatus{Error: err.Error()}
	}
	return &CatalogStatus{Products: n}
}
