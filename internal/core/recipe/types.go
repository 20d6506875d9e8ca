package recipe

import (
	"errors"

	"recipe-cart/internal/core/mapping"
)

var (
	// ErrInvalidInput 食譜名稱或份數不合法
	ErrInvalidInput = errors.New("invalid recipe input")
	// ErrExtractionFailed 文字生成服務呼叫失敗或逾時
	ErrExtractionFailed = errors.New("recipe extraction failed")
	// ErrMalformedExtraction 文字生成服務回覆的結構不符預期
	ErrMalformedExtraction = errors.New("AI service returned data in an unexpected format")
)

// MinRecipeNameLength 食譜名稱最短長度（去除前後空白後）
const MinRecipeNameLength = 3

// Extraction 從 AI 回覆中取出的食材與步驟
type Extraction struct {
	Ingredients []mapping.ParsedIngredient `json:"ingredients"`
	RecipeSteps []string                   `json:"recipeSteps"`
	// Dropped 被過濾掉的不完整食材數
	Dropped  int  `json:"-"`
	CacheHit bool `json:"-"`
}

// ProcessResult 食譜處理結果
type ProcessResult struct {
	RecipeName       string                    `json:"recipeName"`
	Servings         int                       `json:"servings"`
	MatchedItems     []mapping.MappedItem      `json:"matchedItems"`
	UnavailableItems []mapping.UnavailableItem `json:"unavailableItems"`
	RecipeSteps      []string                  `json:"recipeSteps"`
}
