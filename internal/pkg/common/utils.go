package common

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RequestID 取得 requestid middleware 設定的請求 ID，沒有時產生新的
func RequestID(c *gin.Context) string {
	if id := c.Writer.Header().Get("X-Request-ID"); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return GenerateUUID()
}

// WriteErrorResponse 寫入錯誤響應並中止後續 handler
func WriteErrorResponse(c *gin.Context, err *CustomError, details string) {
	c.AbortWithStatusJSON(err.Status, ErrorResponse{
		Code:    err.Code,
		Message: err.Message,
		Details: details,
	})
}
