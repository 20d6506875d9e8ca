package common

import "net/http"

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 讓 errors.Is / errors.As 可以看到原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest    = "INVALID_REQUEST"    // 400
	ErrCodeNotFound          = "NOT_FOUND"          // 404
	ErrCodeRequestTimeout    = "REQUEST_TIMEOUT"    // 408
	ErrCodeConflict          = "CONFLICT"           // 409
	ErrCodePayloadTooLarge   = "PAYLOAD_TOO_LARGE"  // 413
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"  // 429
	ErrCodeInvalidIngredient = "INVALID_INGREDIENT" // 400

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"      // 500
	ErrCodeAIService          = "AI_SERVICE_ERROR"    // 502
	ErrCodeMalformedAIReply   = "MALFORMED_AI_REPLY"  // 502
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE" // 503
	ErrCodeCatalogUnavailable = "CATALOG_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout     = "GATEWAY_TIMEOUT"     // 504
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest    = NewError(ErrCodeInvalidRequest, "Invalid request", http.StatusBadRequest, nil)
	ErrNotFound          = NewError(ErrCodeNotFound, "Resource not found", http.StatusNotFound, nil)
	ErrRequestTimeout    = NewError(ErrCodeRequestTimeout, "Request timed out", http.StatusRequestTimeout, nil)
	ErrConflict          = NewError(ErrCodeConflict, "Duplicate request in progress", http.StatusConflict, nil)
	ErrPayloadTooLarge   = NewError(ErrCodePayloadTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrTooManyRequests   = NewError(ErrCodeTooManyRequests, "Too many requests", http.StatusTooManyRequests, nil)
	ErrInvalidIngredient = NewError(ErrCodeInvalidIngredient, "Invalid ingredient list", http.StatusBadRequest, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavailable, "Service temporarily unavailable", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "Upstream timed out", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrAIServiceError     = NewError(ErrCodeAIService, "Failed to get recipe details from AI", http.StatusBadGateway, nil)
	ErrMalformedAIReply   = NewError(ErrCodeMalformedAIReply, "AI returned data in an unexpected format", http.StatusBadGateway, nil)
	ErrCatalogUnavailable = NewError(ErrCodeCatalogUnavailable, "Product catalog unavailable", http.StatusServiceUnavailable, nil)
)
