package recipe

import (
	"context"
	"fmt"
	"strings"

	"recipe-cart/internal/core/ai/service"
)

// AIService 文字生成服務
type AIService interface {
	ProcessRequest(ctx context.Context, prompt string, opts ...service.RequestOption) (*service.Response, error)
}

// Service 食譜服務基礎結構
type Service struct {
	aiService AIService
}

// NewService 創建新的食譜服務
func NewService(aiService AIService) *Service {
	return &Service{aiService: aiService}
}

// handleAIResponse 取出 AI 回應文字
func (s *Service) handleAIResponse(resp *service.Response) (string, error) {
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("empty AI response")
	}

	return strings.TrimSpace(resp.Content), nil
}
