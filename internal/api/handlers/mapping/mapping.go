package mapping

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-cart/internal/core/catalog"
	"recipe-cart/internal/core/mapping"
	"recipe-cart/internal/pkg/common"
)

// MapRequest 直接提交已解析的食材清單
type MapRequest struct {
	Ingredients []mapping.ParsedIngredient `json:"ingredients" binding:"required"`
}

// LookupResponse 查詢商品的結果
type LookupResponse struct {
	Query      string           `json:"query"`
	Candidates []string         `json:"candidates"`
	Product    *catalog.Product `json:"product"`
}

// Handler 商品對應處理程序
type Handler struct {
	mapper *mapping.Mapper
}

// NewHandler 創建商品對應處理程序
func NewHandler(mapper *mapping.Mapper) *Handler {
	return &Handler{mapper: mapper}
}

// HandleMap 將食材清單對應到商品
func (h *Handler) HandleMap(c *gin.Context) {
	requestID := common.RequestID(c)

	var req MapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteErrorResponse(c, common.ErrInvalidRequest, "ingredients must be an array of {name, quantity:{value, unit}}")
		return
	}

	result, err := h.mapper.Map(c.Request.Context(), req.Ingredients)
	if err != nil {
		customErr := mapError(err)
		common.LogWarn("食材對應失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("code", customErr.Code),
		)
		common.WriteErrorResponse(c, customErr, err.Error())
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleLookup 回傳 Matcher 對此名稱會選到的商品，供人工檢查
func (h *Handler) HandleLookup(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		common.WriteErrorResponse(c, common.ErrInvalidRequest, "query parameter 'name' is required")
		return
	}

	product, err := h.mapper.Matcher().Match(c.Request.Context(), name)
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		common.WriteErrorResponse(c, common.ErrNotFound, mapping.ReasonNotFound)
		return
	case err != nil:
		common.LogError("商品查詢失敗",
			zap.Error(err),
			zap.String("name", name),
			zap.String("request_id", common.RequestID(c)),
		)
		common.WriteErrorResponse(c, mapError(err), err.Error())
		return
	}

	c.JSON(http.StatusOK, LookupResponse{
		Query:      name,
		Candidates: mapping.Candidates(name),
		Product:    product,
	})
}

func mapError(err error) *common.CustomError {
	switch {
	case errors.Is(err, mapping.ErrInvalidIngredients):
		return common.ErrInvalidIngredient
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout
	case errors.Is(err, context.Canceled):
		return common.ErrRequestTimeout
	default:
		return common.ErrCatalogUnavailable
	}
}
