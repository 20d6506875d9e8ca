package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipe-cart/internal/pkg/common"
)

// DefaultProducts 預設的入門商品
func DefaultProducts() []Product {
	return []Product{
		{
			Name:         "Onion",
			Description:  "Fresh red onions, sold per kg.",
			Category:     "Vegetables",
			Tags:         []string{"vegetable", "onion", "pyaz", "kanda"},
			Price:        40,
			Unit:         UnitKilogram,
			UnitQuantity: 1,
			ImageURL:     "https://via.placeholder.com/150/FF0000/FFFFFF?text=Onion",
		},
		{
			Name:         "Tomato",
			Description:  "Ripe red tomatoes, sold per kg.",
			Category:     "Vegetables",
			Tags:         []string{"vegetable", "tomato", "tamatar"},
			Price:        30,
			Unit:         UnitKilogram,
			UnitQuantity: 1,
			ImageURL:     "https://via.placeholder.com/150/FF6347/FFFFFF?text=Tomato",
		},
		{
			Name:         "Amul Taaza Paneer",
			Description:  "Fresh cottage cheese block.",
			Category:     "Dairy",
			Brand:        "Amul",
			Tags:         []string{"paneer", "cottage cheese", "dairy", "amul"},
			Price:        80,
			Unit:         UnitGram,
			UnitQuantity: 200,
			ImageURL:     "https://via.placeholder.com/150/FFFFFF/000000?text=Paneer",
		},
		{
			Name:         "Aashirvaad Select Atta",
			Description:  "Whole wheat flour.",
			Category:     "Grains & Flour",
			Brand:        "Aashirvaad",
			Tags:         []string{"atta", "flour", "wheat", "aashirvaad", "whole wheat flour"},
			Price:        550,
			Unit:         UnitKilogram,
			UnitQuantity: 5,
			ImageURL:     "https://via.placeholder.com/150/F5DEB3/000000?text=Atta",
		},
		{
			Name:         "Tata Salt Iodized",
			Description:  "Iodized salt for everyday cooking.",
			Category:     "Spices & Masalas",
			Brand:        "Tata",
			Tags:         []string{"salt", "tata", "iodized salt", "namak"},
			Price:        25,
			Unit:         UnitKilogram,
			UnitQuantity: 1,
			ImageURL:     "https://via.placeholder.com/150/FFFFFF/000000?text=Salt",
		},
		{
			Name:         "Fortune Sunlite Refined Sunflower Oil",
			Description:  "Light and healthy refined sunflower oil.",
			Category:     "Oils & Ghee",
			Brand:        "Fortune",
			Tags:         []string{"oil", "sunflower oil", "refined oil", "fortune", "cooking oil"},
			Price:        130,
			Unit:         UnitLiter,
			UnitQuantity: 1,
			ImageURL:     "https://via.placeholder.com/150/FFFF00/000000?text=Oil",
		},
	}
}

// Seed 目錄為空時寫入商品；已有資料則跳過，回傳實際寫入筆數
func Seed(ctx context.Context, store Store, products []Product) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	if count > 0 {
		common.LogInfo("商品目錄已有資料，略過初始化", zap.Int("existing", count))
		return 0, nil
	}

	for i := range products {
		p := products[i]
		if err := store.Add(ctx, &p); err != nil {
			return i, fmt.Errorf("seed product %q: %w", p.Name, err)
		}
	}

	common.LogInfo("商品目錄初始化完成", zap.Int("products", len(products)))
	return len(products), nil
}
