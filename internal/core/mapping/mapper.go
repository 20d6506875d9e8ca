package mapping

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"recipe-cart/internal/core/catalog"
	"recipe-cart/internal/pkg/common"
)

// ReasonNotFound 查無商品時的原因
const ReasonNotFound = "Product not found in database"

// Mapper 將整份食材清單對應到商品並計算購買數量
type Mapper struct {
	matcher       *Matcher
	calculator    *Calculator
	workers       int
	lookupTimeout time.Duration
}

// Option Mapper 設定
type Option func(*Mapper)

// WithWorkers 同時處理的食材數，<= 1 時依序處理
func WithWorkers(n int) Option {
	return func(m *Mapper) {
		m.workers = n
	}
}

// WithLookupTimeout 單一食材查詢商品的逾時
func WithLookupTimeout(d time.Duration) Option {
	return func(m *Mapper) {
		m.lookupTimeout = d
	}
}

// NewMapper 創建 Mapper
func NewMapper(c catalog.Catalog, calculator *Calculator, opts ...Option) *Mapper {
	if calculator == nil {
		calculator = NewCalculator(DefaultConversionTable())
	}
	m := &Mapper{
		matcher:    NewMatcher(c),
		calculator: calculator,
		workers:    1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Matcher 回傳使用中的 Matcher
func (m *Mapper) Matcher() *Matcher {
	return m.matcher
}

// outcome 單一食材的處理結果，matched 與 unavailable 只會有一個非 nil
type outcome struct {
	matched     *MappedItem
	unavailable *UnavailableItem
}

// Map 對應整份食材清單
//
// 單一食材的失敗會放進 UnavailableItems；只有輸入不合法或 context 被取消時回傳 error。
// 兩個列表都維持輸入順序。
func (m *Mapper) Map(ctx context.Context, ingredients []ParsedIngredient) (*MappingResult, error) {
	if err := ValidateIngredients(ingredients); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	outcomes := make([]outcome, len(ingredients))

	if m.workers <= 1 || len(ingredients) < 2 {
		for i, ing := range ingredients {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes[i] = m.mapOne(ctx, ing)
		}
	} else {
		m.mapConcurrently(ctx, ingredients, outcomes)
	}

	// 處理途中被取消時不回傳部分結果
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &MappingResult{
		MatchedItems:     []MappedItem{},
		UnavailableItems: []UnavailableItem{},
	}
	for _, o := range outcomes {
		if o.matched != nil {
			result.MatchedItems = append(result.MatchedItems, *o.matched)
		} else {
			result.UnavailableItems = append(result.UnavailableItems, *o.unavailable)
		}
	}

	common.LogInfo("食材對應完成",
		zap.Int("ingredients", len(ingredients)),
		zap.Int("matched", len(result.MatchedItems)),
		zap.Int("unavailable", len(result.UnavailableItems)),
		zap.Duration("耗時", time.Since(start)),
	)
	return result, nil
}

// mapConcurrently 以固定數量的 worker 處理，結果依索引寫回
func (m *Mapper) mapConcurrently(ctx context.Context, ingredients []ParsedIngredient, outcomes []outcome) {
	workers := m.workers
	if workers > len(ingredients) {
		workers = len(ingredients)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = m.mapOne(ctx, ingredients[i])
			}
		}()
	}

dispatch:
	for i := range ingredients {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
}

func (m *Mapper) mapOne(ctx context.Context, ing ParsedIngredient) outcome {
	original := ing.OriginalQuantity()
	unavailable := func(reason string) outcome {
		common.LogDebug("食材無法對應",
			zap.String("ingredient", ing.Name),
			zap.String("reason", reason),
		)
		return outcome{unavailable: &UnavailableItem{
			OriginalIngredientName: ing.Name,
			OriginalQuantity:       original,
			Reason:                 reason,
		}}
	}

	product, err := m.lookup(ctx, ing.Name)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return unavailable(ReasonNotFound)
	}
	if err != nil {
		return unavailable(fmt.Sprintf("Catalog lookup failed for '%s': %v. Requires manual check.", ing.Name, err))
	}

	calc, err := m.calculator.Calculate(ing.Name, ing.Quantity, *product)
	if err != nil || calc.Quantity <= 0 {
		return unavailable(calculationFailedReason(product, ing, err))
	}

	common.LogDebug("食材對應成功",
		zap.String("ingredient", ing.Name),
		zap.String("product", product.Name),
		zap.String("strategy", calc.Strategy.String()),
		zap.Int("quantity", calc.Quantity),
	)
	return outcome{matched: &MappedItem{
		OriginalIngredientName:   ing.Name,
		OriginalQuantity:         original,
		MatchedProduct:           *product,
		CalculatedQuantityNeeded: calc.Quantity,
		CalculationNotes:         calc.Notes,
	}}
}

func (m *Mapper) lookup(ctx context.Context, name string) (*catalog.Product, error) {
	if m.lookupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.lookupTimeout)
		defer cancel()
	}
	return m.matcher.Match(ctx, name)
}

func calculationFailedReason(p *catalog.Product, ing ParsedIngredient, err error) string {
	reason := fmt.Sprintf("Product found ('%s'), but quantity/unit calculation failed (Recipe: %s, Product: %s).",
		p.Name, ing.OriginalQuantity(), p.PackSize())
	if err != nil {
		reason += " Cause: " + err.Error() + "."
	}
	return reason + " Requires manual check."
}
