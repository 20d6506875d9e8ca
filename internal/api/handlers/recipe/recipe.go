package recipe

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipe-cart/internal/core/mapping"
	recipeService "recipe-cart/internal/core/recipe"
	"recipe-cart/internal/pkg/common"
)

// ProcessRequest 食譜處理請求
type ProcessRequest struct {
	RecipeName string `json:"recipeName" binding:"required"` // 食譜名稱
	Servings   int    `json:"servings"`                      // 份數，需為正整數
}

// RecipeProcessor 食譜處理流程
type RecipeProcessor interface {
	Process(ctx context.Context, recipeName string, servings int) (*recipeService.ProcessResult, error)
}

// Handler 食譜處理程序
type Handler struct {
	processor RecipeProcessor
}

// NewHandler 創建新的食譜處理程序
func NewHandler(processor RecipeProcessor) *Handler {
	return &Handler{processor: processor}
}

// HandleProcess 依食譜名稱抽取食材並對應到商品
func (h *Handler) HandleProcess(c *gin.Context) {
	requestID := common.RequestID(c)

	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteErrorResponse(c, common.ErrInvalidRequest, "recipeName and servings are required")
		return
	}

	common.LogInfo("開始處理食譜",
		zap.String("request_id", requestID),
		zap.String("recipe_name", req.RecipeName),
		zap.Int("servings", req.Servings),
	)

	result, err := h.processor.Process(c.Request.Context(), req.RecipeName, req.Servings)
	if err != nil {
		customErr := processError(err)
		common.LogError("食譜處理失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("code", customErr.Code),
		)
		common.WriteErrorResponse(c, customErr, err.Error())
		return
	}

	common.LogInfo("食譜處理完成",
		zap.String("request_id", requestID),
		zap.Int("matched", len(result.MatchedItems)),
		zap.Int("unavailable", len(result.UnavailableItems)),
		zap.Int("steps", len(result.RecipeSteps)),
	)
	c.JSON(http.StatusOK, result)
}

// processError 將處理流程的錯誤轉為 HTTP 錯誤
func processError(err error) *common.CustomError {
	switch {
	case errors.Is(err, recipeService.ErrInvalidInput):
		return common.ErrInvalidRequest
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout
	case errors.Is(err, recipeService.ErrMalformedExtraction),
		errors.Is(err, mapping.ErrInvalidIngredients):
		// 抽取結果不符合食材清單格式，屬於 AI 回覆問題
		return common.ErrMalformedAIReply
	case errors.Is(err, recipeService.ErrExtractionFailed):
		return common.ErrAIServiceError
	case errors.Is(err, context.Canceled):
		return common.ErrRequestTimeout
	default:
		return common.ErrInternalError
	}
}
