package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"recipe-cart/internal/infrastructure/config"
	"recipe-cart/internal/pkg/common"
)

var (
	// ErrCacheMiss 快取中沒有此鍵或已過期
	ErrCacheMiss = errors.New("cache miss")
	// ErrCacheFull 快取已滿且無法淘汰
	ErrCacheFull = errors.New("cache full")
)

// Store AI 回覆快取
type Store interface {
	Get(ctx context.Context, prompt string) (string, error)
	Set(ctx context.Context, prompt, value string) error
	Stats() map[string]interface{}
	Close() error
}

// New 依設定建立快取；停用時回傳 nil
func New(cfg config.CacheConfig) (Store, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}
	switch cfg.Backend {
	case "redis":
		store, err := NewRedisStore(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "memory", "":
		return NewManager(cfg), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
}

// Key 以 SHA-256 產生固定長度的快取鍵
func Key(prompt string) string {
	hash := sha256.Sum256([]byte(prompt))
	return "text:" + hex.EncodeToString(hash[:])
}
