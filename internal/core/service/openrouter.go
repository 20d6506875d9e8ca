package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"recipe-cart/internal/core/ai/provider"
	"recipe-cart/internal/infrastructure/config"
	"recipe-cart/internal/pkg/common"
)

// ErrUpstream OpenRouter 回傳非 2xx 或內容不完整
var ErrUpstream = errors.New("openrouter upstream error")

// OpenRouterService OpenRouter 服務，實作 provider.Provider
type OpenRouterService struct {
	cfg    provider.Config
	client *resty.Client
}

var _ provider.Provider = (*OpenRouterService)(nil)

// ProviderConfig 將應用設定轉為 provider 設定
func ProviderConfig(cfg *config.Config) provider.Config {
	return provider.Config{
		APIKey:     cfg.OpenRouter.APIKey,
		Model:      cfg.OpenRouter.Model,
		BaseURL:    cfg.OpenRouter.BaseURL,
		Timeout:    cfg.OpenRouter.Timeout,
		MaxRetries: 2,
		Referer:    "https://recipe-cart.app",
		Title:      cfg.App.Name,
	}
}

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg provider.Config) *OpenRouterService {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", cfg.Referer).
		SetHeader("X-Title", cfg.Title).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
		})

	return &OpenRouterService{
		cfg:    cfg,
		client: client,
	}
}

type chatRequest struct {
	Model          string             `json:"model"`
	Messages       []provider.Message `json:"messages"`
	MaxTokens      int                `json:"max_tokens,omitempty"`
	Temperature    float64            `json:"temperature,omitempty"`
	ResponseFormat *responseFormat    `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage provider.Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate 呼叫 chat completions
func (s *OpenRouterService) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	body := chatRequest{
		Model:       s.cfg.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		common.LogAICall(s.cfg.Model, time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode(), common.Truncate(resp.String(), 300))
		common.LogAICall(s.cfg.Model, time.Since(start), err)
		return nil, err
	}

	var result chatResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to parse OpenRouter response: %v", ErrUpstream, err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in OpenRouter response", ErrUpstream)
	}

	common.LogAICall(s.cfg.Model, time.Since(start), nil)
	common.LogDebug("OpenRouter 回應",
		zap.Int("prompt_tokens", result.Usage.PromptTokens),
		zap.Int("completion_tokens", result.Usage.CompletionTokens),
	)

	model := result.Model
	if model == "" {
		model = s.cfg.Model
	}
	return &provider.Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取當前使用的模型名稱
func (s *OpenRouterService) GetModel() string {
	return s.cfg.Model
}

// Close resty 沒有需要釋放的資源
func (s *OpenRouterService) Close() error {
	return nil
}
