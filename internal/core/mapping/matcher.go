package mapping

import (
	"context"
	"errors"
	"strings"

	"recipe-cart/internal/core/catalog"
)

// Matcher 將食材名稱對應到商品
type Matcher struct {
	catalog catalog.Catalog
}

// NewMatcher 創建 Matcher
func NewMatcher(c catalog.Catalog) *Matcher {
	return &Matcher{catalog: c}
}

// NormalizeName 轉小寫並去除前後空白
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Singularize 簡單去掉字尾 es / s，不處理不規則複數
func Singularize(normalized string) string {
	switch {
	case strings.HasSuffix(normalized, "es"):
		return normalized[:len(normalized)-2]
	case strings.HasSuffix(normalized, "s"):
		return normalized[:len(normalized)-1]
	}
	return normalized
}

// Candidates 依查詢順序列出要比對的名稱
func Candidates(name string) []string {
	normalized := NormalizeName(name)
	singular := Singularize(normalized)
	if singular == normalized {
		return []string{normalized}
	}
	return []string{singular, normalized}
}

// Match 依序以單數名稱、單數標籤、原名稱、原標籤查詢
//
// 全部查無時回傳 catalog.ErrProductNotFound；其他錯誤（資料庫、context）原樣回傳。
func (m *Matcher) Match(ctx context.Context, name string) (*catalog.Product, error) {
	for _, candidate := range Candidates(name) {
		if candidate == "" {
			continue
		}
		for _, lookup := range []func(context.Context, string) (*catalog.Product, error){
			m.catalog.FindByName,
			m.catalog.FindByTag,
		} {
			p, err := lookup(ctx, candidate)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, catalog.ErrProductNotFound) {
				return nil, err
			}
		}
	}
	return nil, catalog.ErrProductNotFound
}
