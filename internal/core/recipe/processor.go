package recipe

import (
	"context"
	"strings"

	"recipe-cart/internal/core/mapping"
)

// Extractor 取得食譜食材的來源
type Extractor interface {
	Extract(ctx context.Context, recipeName string, servings int) (*Extraction, error)
}

// Processor 食譜處理流程：抽取食材後對應商品
type Processor struct {
	extractor Extractor
	mapper    *mapping.Mapper
}

// NewProcessor 創建食譜處理器
func NewProcessor(extractor Extractor, mapper *mapping.Mapper) *Processor {
	return &Processor{extractor: extractor, mapper: mapper}
}

// Process 抽取失敗時直接返回錯誤，不會以空清單繼續對應
func (p *Processor) Process(ctx context.Context, recipeName string, servings int) (*ProcessResult, error) {
	recipeName = strings.TrimSpace(recipeName)
	if err := ValidateInput(recipeName, servings); err != nil {
		return nil, err
	}

	extraction, err := p.extractor.Extract(ctx, recipeName, servings)
	if err != nil {
		return nil, err
	}

	result, err := p.mapper.Map(ctx, extraction.Ingredients)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		RecipeName:       recipeName,
		Servings:         servings,
		MatchedItems:     result.MatchedItems,
		UnavailableItems: result.UnavailableItems,
		RecipeSteps:      extraction.RecipeSteps,
	}, nil
}
