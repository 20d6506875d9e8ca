package mapping

import "recipe-cart/internal/core/catalog"

// SpoonRule 依商品標籤決定每匙重量，Tags 任一符合即套用
type SpoonRule struct {
	Tags  []string
	Grams float64
}

// SpoonMeasure 一種量匙（tbsp / tsp）的換算資料
type SpoonMeasure struct {
	// Rules 依序比對，第一個符合的規則生效
	Rules        []SpoonRule
	DefaultGrams float64
	Milliliters  float64
}

// SizeWeight 以大小描述（medium onion）估算單顆重量
type SizeWeight struct {
	Keyword string
	Grams   float64
}

// ConversionTable 換算用的常數表
//
// 由 DefaultConversionTable 建立，傳入 NewCalculator 後會被複製，
// 之後修改原本的值不會影響計算器。
type ConversionTable struct {
	SizeDescriptors []string
	SizeWeights     []SizeWeight
	Spoons          map[string]SpoonMeasure
	// Factors 食譜單位換算到商品單位的倍率
	Factors map[string]map[catalog.Unit]float64
}

// DefaultConversionTable 預設換算表
func DefaultConversionTable() ConversionTable {
	return ConversionTable{
		SizeDescriptors: []string{"medium", "large", "small"},
		SizeWeights: []SizeWeight{
			{Keyword: "onion", Grams: 120},
			{Keyword: "tomato", Grams: 100},
		},
		Spoons: map[string]SpoonMeasure{
			"tbsp": {
				Rules: []SpoonRule{
					{Tags: []string{"butter", "ghee"}, Grams: 15},
					{Tags: []string{"sugar"}, Grams: 12},
					{Tags: []string{"spice", "powder", "masala"}, Grams: 7},
				},
				DefaultGrams: 10,
				Milliliters:  15,
			},
			"tsp": {
				Rules: []SpoonRule{
					{Tags: []string{"salt"}, Grams: 6},
					{Tags: []string{"sugar"}, Grams: 4},
					{Tags: []string{"spice", "powder", "masala"}, Grams: 2.5},
				},
				DefaultGrams: 3,
				Milliliters:  5,
			},
		},
		Factors: map[string]map[catalog.Unit]float64{
			"piece": {catalog.UnitPiece: 1},
			"g":     {catalog.UnitGram: 1, catalog.UnitKilogram: 0.001},
			"kg":    {catalog.UnitGram: 1000, catalog.UnitKilogram: 1},
			"ml":    {catalog.UnitMilliliter: 1, catalog.UnitLiter: 0.001},
			"l":     {catalog.UnitMilliliter: 1000, catalog.UnitLiter: 1},
		},
	}
}

// clone 深拷貝，讓計算器持有不可變的副本
func (t ConversionTable) clone() ConversionTable {
	out := ConversionTable{
		SizeDescriptors: append([]string(nil), t.SizeDescriptors...),
		SizeWeights:     append([]SizeWeight(nil), t.SizeWeights...),
		Spoons:          make(map[string]SpoonMeasure, len(t.Spoons)),
		Factors:         make(map[string]map[catalog.Unit]float64, len(t.Factors)),
	}
	for unit, m := range t.Spoons {
		rules := make([]SpoonRule, len(m.Rules))
		for i, r := range m.Rules {
			rules[i] = SpoonRule{Tags: append([]string(nil), r.Tags...), Grams: r.Grams}
		}
		m.Rules = rules
		out.Spoons[unit] = m
	}
	for from, targets := range t.Factors {
		copied := make(map[catalog.Unit]float64, len(targets))
		for to, f := range targets {
			copied[to] = f
		}
		out.Factors[from] = copied
	}
	return out
}

func (t *ConversionTable) factor(from string, to catalog.Unit) (float64, bool) {
	f, ok := t.Factors[from][to]
	return f, ok
}
