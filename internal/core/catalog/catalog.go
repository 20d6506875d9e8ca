package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Unit 商品計價單位
type Unit string

// 支援的六種計價單位
const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "piece"
	UnitPack       Unit = "pack"
)

// Valid 檢查單位是否為支援的代碼
func (u Unit) Valid() bool {
	switch u {
	case UnitGram, UnitKilogram, UnitMilliliter, UnitLiter, UnitPiece, UnitPack:
		return true
	}
	return false
}

var (
	// ErrProductNotFound 查無商品
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct 商品資料不合法
	ErrInvalidProduct = errors.New("invalid product")
)

// Product 商品目錄中的一項可購買商品
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Category     string   `json:"category,omitempty"`
	Brand        string   `json:"brand,omitempty"`
	Tags         []string `json:"tags"`
	Price        float64  `json:"price"`
	Unit         Unit     `json:"unit"`
	UnitQuantity float64  `json:"unitQuantity"`
	ImageURL     string   `json:"imageUrl,omitempty"`
}

// Validate 驗證商品資料
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if !p.Unit.Valid() {
		return fmt.Errorf("%w: unsupported unit %q", ErrInvalidProduct, p.Unit)
	}
	if !(p.UnitQuantity > 0) {
		return fmt.Errorf("%w: unit quantity must be positive, got %v", ErrInvalidProduct, p.UnitQuantity)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	return nil
}

// HasTag 判斷商品是否帶有指定標籤（不分大小寫）
func (p *Product) HasTag(tag string) bool {
	tag = NormalizeKey(tag)
	for _, t := range p.Tags {
		if NormalizeKey(t) == tag {
			return true
		}
	}
	return false
}

// PackSize 回傳商品包裝規格，例如 "200 g"
func (p *Product) PackSize() string {
	return fmt.Sprintf("%s %s", formatAmount(p.UnitQuantity), p.Unit)
}

// NormalizeKey 比對用的鍵值：去除前後空白並轉小寫
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// normalizeTags 標籤一律小寫、去空白、去重複
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		key := NormalizeKey(t)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	return out
}

func formatAmount(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.3f", v), "0"), ".")
}

// Catalog 食材對應所需的唯讀查詢能力
//
// 兩個查詢皆為完全比對且不分大小寫；多筆符合時回傳最早加入的商品，
// 查無資料時回傳 ErrProductNotFound。
type Catalog interface {
	FindByName(ctx context.Context, name string) (*Product, error)
	FindByTag(ctx context.Context, tag string) (*Product, error)
}

// Store 可寫入的商品目錄，用於初始化資料
type Store interface {
	Catalog
	Add(ctx context.Context, p *Product) error
	Count(ctx context.Context) (int, error)
}
