package mapping

import "recipe-cart/internal/core/catalog"

// Quantity 食譜上的份量，value 保留字串以容納分數或 "to taste" 等描述
type Quantity struct {
	Value string `json:"value"`
	Unit  string `json:"unit" validate:"notblank"`
}

// ParsedIngredient 上游抽取步驟產生的食材
type ParsedIngredient struct {
	Name     string   `json:"name" validate:"notblank"`
	Quantity Quantity `json:"quantity"`
}

// OriginalQuantity 原樣組回 "value unit"，不做修剪
func (i ParsedIngredient) OriginalQuantity() string {
	return i.Quantity.Value + " " + i.Quantity.Unit
}

// MappedItem 成功對應到商品的食材
type MappedItem struct {
	OriginalIngredientName   string          `json:"originalIngredientName"`
	OriginalQuantity         string          `json:"originalQuantity"`
	MatchedProduct           catalog.Product `json:"matchedProduct"`
	CalculatedQuantityNeeded int             `json:"calculatedQuantityNeeded"`
	CalculationNotes         string          `json:"calculationNotes,omitempty"`
}

// UnavailableItem 無法對應或無法計算數量的食材
type UnavailableItem struct {
	OriginalIngredientName string `json:"originalIngredientName"`
	OriginalQuantity       string `json:"originalQuantity"`
	Reason                 string `json:"reason"`
}

// MappingResult 一次對應的結果，每個輸入食材恰好出現在其中一個列表
type MappingResult struct {
	MatchedItems     []MappedItem      `json:"matchedItems"`
	UnavailableItems []UnavailableItem `json:"unavailableItems"`
}

// Total 回傳結果中的食材總數
func (r *MappingResult) Total() int {
	return len(r.MatchedItems) + len(r.UnavailableItems)
}
