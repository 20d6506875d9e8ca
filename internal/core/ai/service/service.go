package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"recipe-cart/internal/core/ai/cache"
	"recipe-cart/internal/core/ai/provider"
	"recipe-cart/internal/infrastructure/config"
	"recipe-cart/internal/pkg/common"
)

// Response AI 回應
type Response struct {
	Content  string
	Model    string
	CacheHit bool
}

// ErrInvalidResponse AI 回覆未通過呼叫端的檢查
var ErrInvalidResponse = errors.New("invalid AI response")

// Validator 檢查回覆內容，未通過的回覆不寫入快取
type Validator func(content string) error

// RequestOption 單次請求的選項
type RequestOption func(*requestOptions)

type requestOptions struct {
	validate Validator
}

// WithValidator 只有通過 v 的回覆才會被快取或從快取返回
func WithValidator(v Validator) RequestOption {
	return func(o *requestOptions) {
		o.validate = v
	}
}

func (o *requestOptions) check(content string) error {
	if o.validate == nil {
		return nil
	}
	if err := o.validate(content); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

// Service AI 服務：正規化 prompt、查快取、限流後呼叫 provider
type Service struct {
	provider  provider.Provider
	cache     cache.Store
	limiter   *rate.Limiter
	maxTokens int
}

// NewService 創建 AI 服務，cacheStore 可為 nil
func NewService(cfg *config.Config, p provider.Provider, cacheStore cache.Store) *Service {
	perMinute := cfg.OpenRouter.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	burst := cfg.OpenRouter.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Service{
		provider:  p,
		cache:     cacheStore,
		limiter:   rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		maxTokens: cfg.OpenRouter.MaxTokens,
	}
}

// NormalizePrompt 合併連續空白，確保快取鍵一致
func NormalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}

// ProcessRequest 統一對外方法
func (s *Service) ProcessRequest(ctx context.Context, prompt string, opts ...RequestOption) (*Response, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	prompt = NormalizePrompt(prompt)
	if prompt == "" {
		return nil, errors.New("empty prompt")
	}

	if s.cache != nil {
		if val, err := s.cache.Get(ctx, prompt); err == nil && val != "" {
			verr := o.check(val)
			if verr == nil {
				return &Response{Content: val, Model: s.provider.GetModel(), CacheHit: true}, nil
			}
			common.LogWarn("快取內容未通過檢查，重新呼叫 AI", zap.Error(verr))
		} else if err != nil && !errors.Is(err, cache.ErrCacheMiss) {
			common.LogWarn("讀取快取失敗", zap.Error(err))
		}
	}

	// 等待配額；context 到期時直接返回
	if err := s.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// 需要等待的時間超過 context 期限
		return nil, fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}

	resp, err := s.provider.Generate(ctx, provider.UserPrompt(prompt, s.maxTokens))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.Content) == "" {
		return nil, errors.New("empty AI response")
	}
	if err := o.check(resp.Content); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, prompt, resp.Content); err != nil {
			common.LogWarn("寫入快取失敗", zap.Error(err))
		}
	}

	return &Response{Content: resp.Content, Model: resp.Model}, nil
}

// CacheStats 快取統計，未啟用時回傳 nil
func (s *Service) CacheStats() map[string]interface{} {
	if s.cache == nil {
		return nil
	}
	return s.cache.Stats()
}
