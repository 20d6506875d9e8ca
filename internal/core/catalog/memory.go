package catalog

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryCatalog 以記憶體保存的商品目錄
type MemoryCatalog struct {
	mu       sync.RWMutex
	products []*Product
	byName   map[string]int
	byTag    map[string]int
}

// NewMemoryCatalog 創建記憶體商品目錄
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		byName: make(map[string]int),
		byTag:  make(map[string]int),
	}
}

// Add 新增商品，未指定 ID 時自動產生
func (c *MemoryCatalog) Add(ctx context.Context, p *Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	stored := *p
	stored.Tags = normalizeTags(p.Tags)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := len(c.products)
	c.products = append(c.products, &stored)

	// 只記錄第一個符合的索引，確保查詢結果固定
	if key := NormalizeKey(stored.Name); key != "" {
		if _, ok := c.byName[key]; !ok {
			c.byName[key] = idx
		}
	}
	for _, tag := range stored.Tags {
		if _, ok := c.byTag[tag]; !ok {
			c.byTag[tag] = idx
		}
	}

	p.ID = stored.ID
	return nil
}

// Count 回傳商品數量
func (c *MemoryCatalog) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products), nil
}

// FindByName 依名稱查詢
func (c *MemoryCatalog) FindByName(ctx context.Context, name string) (*Product, error) {
	return c.find(ctx, c.byName, name)
}

// FindByTag 依標籤查詢
func (c *MemoryCatalog) FindByTag(ctx context.Context, tag string) (*Product, error) {
	return c.find(ctx, c.byTag, tag)
}

func (c *MemoryCatalog) find(ctx context.Context, index map[string]int, key string) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, ok := index[NormalizeKey(key)]
	if !ok {
		return nil, ErrProductNotFound
	}
	found := *c.products[idx]
	found.Tags = append([]string(nil), found.Tags...)
	return &found, nil
}
