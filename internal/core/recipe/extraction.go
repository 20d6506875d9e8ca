package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"recipe-cart/internal/core/ai/service"
	"recipe-cart/internal/core/mapping"
	"recipe-cart/internal/pkg/common"
)

// ExtractionService 透過文字生成服務取得食譜的食材與步驟
type ExtractionService struct {
	*Service
}

// NewExtractionService 創建食材抽取服務
func NewExtractionService(aiService AIService) *ExtractionService {
	return &ExtractionService{Service: NewService(aiService)}
}

// ValidateInput 檢查食譜名稱與份數
func ValidateInput(recipeName string, servings int) error {
	if len([]rune(strings.TrimSpace(recipeName))) < MinRecipeNameLength {
		return fmt.Errorf("%w: recipe name must be at least %d characters", ErrInvalidInput, MinRecipeNameLength)
	}
	if servings <= 0 {
		return fmt.Errorf("%w: servings must be a positive number", ErrInvalidInput)
	}
	return nil
}

// BuildPrompt 組裝抽取食材與步驟的 prompt
func BuildPrompt(recipeName string, servings int) string {
	return fmt.Sprintf(`Analyze the recipe "%[1]s" for %[2]d servings.

Your tasks are:
1. Extract the list of ingredients and their required quantities. Use standard metric units (g, ml, kg, l) or common units (piece, tsp, tbsp, pinch, dash) where appropriate. Represent all quantity values as strings (e.g., "200", "1", "0.5", "a pinch"). Use "to taste" as the value when the recipe does not give an amount.
2. Provide clear, concise, step-by-step cooking instructions for the recipe.

Generate ONLY a JSON object. The JSON object must contain:
- An "ingredients" array: each element is an object with "name" (string) and "quantity" (object with string "value" and string "unit").
- A "recipeSteps" array: each element is a string representing a single cooking step.

Example structure expected (content will vary):
{"ingredients":[{"name":"...","quantity":{"value":"...","unit":"..."}}],"recipeSteps":["Step 1: Do something.","Step 2: Do something else."]}

Now, provide the JSON output for "%[1]s" for %[2]d servings.`, recipeName, servings)
}

// Extract 呼叫 AI 並解析結果
//
// AI 呼叫失敗（含逾時）回傳 ErrExtractionFailed；回覆缺少 ingredients 或 recipeSteps
// 陣列時回傳 ErrMalformedExtraction。不完整的食材會被過濾掉而不是讓整個請求失敗。
func (s *ExtractionService) Extract(ctx context.Context, recipeName string, servings int) (*Extraction, error) {
	recipeName = strings.TrimSpace(recipeName)
	if err := ValidateInput(recipeName, servings); err != nil {
		return nil, err
	}

	resp, err := s.aiService.ProcessRequest(ctx, BuildPrompt(recipeName, servings),
		service.WithValidator(validateExtraction))
	if errors.Is(err, service.ErrInvalidResponse) {
		common.LogError("AI 回應解析失敗", zap.Error(err), zap.String("recipe", recipeName))
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtractionFailed, err)
	}

	content, err := s.handleAIResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}

	extraction, err := ParseExtraction(content)
	if err != nil {
		common.LogError("AI 回應解析失敗",
			zap.Error(err),
			zap.String("recipe", recipeName),
			zap.String("ai_response_preview", common.Truncate(content, 200)),
		)
		return nil, err
	}
	extraction.CacheHit = resp.CacheHit

	common.LogInfo("食材抽取完成",
		zap.String("recipe", recipeName),
		zap.Int("servings", servings),
		zap.Int("ingredients", len(extraction.Ingredients)),
		zap.Int("dropped", extraction.Dropped),
		zap.Int("steps", len(extraction.RecipeSteps)),
		zap.Bool("cache_hit", resp.CacheHit),
	)
	return extraction, nil
}

// validateExtraction 無法解析的回覆不應進入快取
func validateExtraction(content string) error {
	_, err := ParseExtraction(content)
	return err
}

type rawExtraction struct {
	Ingredients json.RawMessage `json:"ingredients"`
	RecipeSteps json.RawMessage `json:"recipeSteps"`
}

type rawIngredient struct {
	Name     *string `json:"name"`
	Quantity *struct {
		Value *string `json:"value"`
		Unit  *string `json:"unit"`
	} `json:"quantity"`
}

// ParseExtraction 解析 AI 回覆，容許外層有 markdown 圍欄或說明文字
func ParseExtraction(content string) (*Extraction, error) {
	body := common.ExtractJSONObject(content)

	var raw rawExtraction
	if err := common.ParseJSON(body, &raw); err != nil {
		// 再試一次修補寬鬆 JSON
		raw = rawExtraction{}
		if err2 := common.ParseJSON(common.RepairJSON(body), &raw); err2 != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrMalformedExtraction, err)
		}
	}

	items, err := jsonArray(raw.Ingredients)
	if err != nil {
		return nil, fmt.Errorf("%w: ingredients: %v", ErrMalformedExtraction, err)
	}
	steps, err := jsonArray(raw.RecipeSteps)
	if err != nil {
		return nil, fmt.Errorf("%w: recipeSteps: %v", ErrMalformedExtraction, err)
	}

	out := &Extraction{
		Ingredients: make([]mapping.ParsedIngredient, 0, len(items)),
		RecipeSteps: make([]string, 0, len(steps)),
	}
	for _, item := range items {
		ing, ok := toIngredient(item)
		if !ok {
			out.Dropped++
			continue
		}
		out.Ingredients = append(out.Ingredients, ing)
	}
	for _, item := range steps {
		var step string
		if err := json.Unmarshal(item, &step); err != nil || strings.TrimSpace(step) == "" {
			continue
		}
		out.RecipeSteps = append(out.RecipeSteps, strings.TrimSpace(step))
	}

	return out, nil
}

func jsonArray(data json.RawMessage) ([]json.RawMessage, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, fmt.Errorf("missing array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("not an array")
	}
	return items, nil
}

// toIngredient 只接受 name、quantity.value、quantity.unit 皆為字串，且名稱與單位非空白的項目
func toIngredient(data json.RawMessage) (mapping.ParsedIngredient, bool) {
	var raw rawIngredient
	if err := json.Unmarshal(data, &raw); err != nil {
		return mapping.ParsedIngredient{}, false
	}
	if raw.Name == nil || raw.Quantity == nil || raw.Quantity.Value == nil || raw.Quantity.Unit == nil {
		return mapping.ParsedIngredient{}, false
	}
	name := strings.TrimSpace(*raw.Name)
	unit := strings.TrimSpace(*raw.Quantity.Unit)
	if name == "" || unit == "" {
		return mapping.ParsedIngredient{}, false
	}
	return mapping.ParsedIngredient{
		Name: name,
		Quantity: mapping.Quantity{
			Value: strings.TrimSpace(*raw.Quantity.Value),
			Unit:  unit,
		},
	}, true
}
