package mapping

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"recipe-cart/internal/core/catalog"
)

// Strategy 份量的分類，決定使用哪一種換算方式
type Strategy int

// 依優先順序排列
const (
	StrategyVague Strategy = iota
	StrategySizeDescriptor
	StrategySpoon
	StrategyStandard
)

func (s Strategy) String() string {
	switch s {
	case StrategyVague:
		return "vague"
	case StrategySizeDescriptor:
		return "size_descriptor"
	case StrategySpoon:
		return "spoon"
	default:
		return "standard"
	}
}

const vagueMarker = "to taste"

// 計算備註
const (
	NoteVague       = "Recipe specified 'to taste'. Added minimum quantity (1 pack/unit). Please adjust if needed."
	NoteApproximate = "Quantity is approximate based on standard conversions."
	NoteMinimum     = "Minimum purchase quantity."
)

// 計算失敗的原因
var (
	ErrInvalidValue     = errors.New("quantity value is not a positive number")
	ErrUnsupportedUnit  = errors.New("unsupported unit combination")
	ErrUnknownSize      = errors.New("no size estimate for ingredient")
	ErrZeroQuantity     = errors.New("computed quantity is zero")
	ErrQuantityTooLarge = errors.New("computed quantity is too large")
)

// maxPacks 超過此包數視為不合理的輸入
const maxPacks = 1_000_000

// Calculation 成功的計算結果
type Calculation struct {
	Strategy    Strategy
	Raw         float64
	Quantity    int
	Approximate bool
	Notes       string
}

// Calculator 將食譜份量換算為需購買的商品包數，不具副作用
type Calculator struct {
	table ConversionTable
}

// NewCalculator 以換算表建立計算器
func NewCalculator(table ConversionTable) *Calculator {
	return &Calculator{table: table.clone()}
}

// Classify 依優先順序判斷份量屬於哪一種換算策略
func (c *Calculator) Classify(q Quantity) Strategy {
	if strings.Contains(q.Value, vagueMarker) {
		return StrategyVague
	}
	unit := normalizeUnit(q.Unit)
	for _, d := range c.table.SizeDescriptors {
		if strings.Contains(unit, d) {
			return StrategySizeDescriptor
		}
	}
	if _, ok := c.table.Spoons[unit]; ok {
		return StrategySpoon
	}
	return StrategyStandard
}

// estimate 各策略換算出的原始包數
type estimate struct {
	packs       float64
	approximate bool
}

// Calculate 計算需要購買幾包商品；任何失敗都以 error 回報，不會 panic
func (c *Calculator) Calculate(ingredientName string, q Quantity, product catalog.Product) (*Calculation, error) {
	strategy := c.Classify(q)
	if strategy == StrategyVague {
		return &Calculation{Strategy: strategy, Raw: 1, Quantity: 1, Notes: NoteVague}, nil
	}

	value, err := parsePositive(q.Value)
	if err != nil {
		return nil, err
	}

	var est estimate
	switch strategy {
	case StrategySizeDescriptor:
		est, err = c.sizeDescriptor(ingredientName, value, product)
	case StrategySpoon:
		est, err = c.spoon(normalizeUnit(q.Unit), value, product)
	default:
		est, err = c.standard(normalizeUnit(q.Unit), value, product)
	}
	if err != nil {
		return nil, err
	}

	calc, err := finalize(est)
	if err != nil {
		return nil, err
	}
	calc.Strategy = strategy
	return calc, nil
}

// sizeDescriptor "2 medium onion"：以平均重量估算
func (c *Calculator) sizeDescriptor(name string, count float64, p catalog.Product) (estimate, error) {
	lowered := strings.ToLower(name)
	grams := 0.0
	for _, w := range c.table.SizeWeights {
		if strings.Contains(lowered, w.Keyword) {
			grams = w.Grams
			break
		}
	}
	if grams == 0 {
		return estimate{}, fmt.Errorf("%w %q", ErrUnknownSize, name)
	}

	total := count * grams
	switch p.Unit {
	case catalog.UnitKilogram:
		return estimate{packs: total / 1000 / p.UnitQuantity, approximate: true}, nil
	case catalog.UnitGram:
		return estimate{packs: total / p.UnitQuantity, approximate: true}, nil
	case catalog.UnitPiece:
		// 描述的數量直接視為顆數
		return estimate{packs: count / p.UnitQuantity, approximate: true}, nil
	}
	return estimate{}, fmt.Errorf("%w: size descriptor -> %s", ErrUnsupportedUnit, p.Unit)
}

// spoon tbsp / tsp：重量依商品標籤估算，容量固定
func (c *Calculator) spoon(unit string, value float64, p catalog.Product) (estimate, error) {
	measure := c.table.Spoons[unit]

	switch p.Unit {
	case catalog.UnitGram, catalog.UnitKilogram:
		grams := value * gramsPerSpoon(measure, p)
		if p.Unit == catalog.UnitKilogram {
			grams /= 1000
		}
		return estimate{packs: grams / p.UnitQuantity, approximate: true}, nil
	case catalog.UnitMilliliter, catalog.UnitLiter:
		ml := value * measure.Milliliters
		if p.Unit == catalog.UnitLiter {
			ml /= 1000
		}
		return estimate{packs: ml / p.UnitQuantity, approximate: true}, nil
	}
	return estimate{}, fmt.Errorf("%w: %s -> %s", ErrUnsupportedUnit, unit, p.Unit)
}

func gramsPerSpoon(m SpoonMeasure, p catalog.Product) float64 {
	for _, rule := range m.Rules {
		for _, tag := range rule.Tags {
			if p.HasTag(tag) {
				return rule.Grams
			}
		}
	}
	return m.DefaultGrams
}

// standard 同一維度內的直接換算
func (c *Calculator) standard(unit string, value float64, p catalog.Product) (estimate, error) {
	factor, ok := c.table.factor(unit, p.Unit)
	if !ok {
		return estimate{}, fmt.Errorf("%w: %s -> %s", ErrUnsupportedUnit, unit, p.Unit)
	}
	return estimate{packs: value * factor / p.UnitQuantity}, nil
}

// finalize 無條件進位並產生備註
func finalize(est estimate) (*Calculation, error) {
	raw := est.packs
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidValue, raw)
	}
	if raw == 0 {
		return nil, ErrZeroQuantity
	}

	rounded := math.Ceil(raw)
	if rounded > maxPacks {
		return nil, fmt.Errorf("%w: %.0f packs", ErrQuantityTooLarge, rounded)
	}

	var notes []string
	if est.approximate {
		notes = append(notes, NoteApproximate)
	}
	if rounded > raw {
		notes = append(notes, fmt.Sprintf("Rounded up from %.2f.", raw))
	}
	// 顯示為 0.01 以下才標註最低購買量
	if math.Round(raw*100) <= 1 {
		notes = append(notes, NoteMinimum)
	}
	if rounded < 1 {
		rounded = 1
	}

	return &Calculation{
		Raw:         raw,
		Quantity:    int(rounded),
		Approximate: est.approximate,
		Notes:       strings.Join(notes, " "),
	}, nil
}

func normalizeUnit(unit string) string {
	return strings.ToLower(strings.TrimSpace(unit))
}

// parsePositive 解析份量數值，支援小數、"1/2" 與 "1 1/2"；
// 其餘寫法取開頭可解析的數字，例如 "200g"、"1-2"、"2 (approx)"
func parsePositive(value string) (float64, error) {
	s := strings.TrimSpace(value)
	v, err := parseNumber(s)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidValue, value)
	}
	return v, nil
}

var (
	leadingFraction = regexp.MustCompile(`^(?:(\d+(?:\.\d+)?)\s+)?(\d+(?:\.\d+)?)\s*/\s*(\d+(?:\.\d+)?)`)
	leadingFloat    = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)
)

func parseNumber(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	if m := leadingFraction.FindStringSubmatch(s); m != nil {
		whole := 0.0
		if m[1] != "" {
			whole, _ = strconv.ParseFloat(m[1], 64)
		}
		n, _ := strconv.ParseFloat(m[2], 64)
		d, _ := strconv.ParseFloat(m[3], 64)
		if d == 0 {
			return 0, strconv.ErrRange
		}
		return whole + n/d, nil
	}

	if m := leadingFloat.FindString(s); m != "" {
		return strconv.ParseFloat(m, 64)
	}
	return 0, strconv.ErrSyntax
}
