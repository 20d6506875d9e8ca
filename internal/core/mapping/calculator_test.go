package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-cart/internal/core/catalog"
)

var (
	onionKg = catalog.Product{Name: "Onion", Unit: catalog.UnitKilogram, UnitQuantity: 1, Tags: []string{"vegetable", "onion"}}
	onionPc = catalog.Product{Name: "Onion (single)", Unit: catalog.UnitPiece, UnitQuantity: 1, Tags: []string{"onion"}}
	tomatoG = catalog.Product{Name: "Cherry Tomato", Unit: catalog.UnitGram, UnitQuantity: 500, Tags: []string{"tomato"}}
	saltKg  = catalog.Product{Name: "Tata Salt Iodized", Unit: catalog.UnitKilogram, UnitQuantity: 1, Tags: []string{"salt", "namak"}}
	butterG = catalog.Product{Name: "Amul Butter", Unit: catalog.UnitGram, UnitQuantity: 100, Tags: []string{"butter", "dairy"}}
	sugarG  = catalog.Product{Name: "Sugar", Unit: catalog.UnitGram, UnitQuantity: 1000, Tags: []string{"sugar"}}
	masalaG = catalog.Product{Name: "Garam Masala", Unit: catalog.UnitGram, UnitQuantity: 100, Tags: []string{"masala", "spice"}}
	chilliG = catalog.Product{Name: "Chilli Powder", Unit: catalog.UnitGram, UnitQuantity: 100, Tags: []string{"powder"}}
	pepperG = catalog.Product{Name: "Pepper", Unit: catalog.UnitGram, UnitQuantity: 100, Tags: []string{"pepper", "spice"}}
	oilL    = catalog.Product{Name: "Sunflower Oil", Unit: catalog.UnitLiter, UnitQuantity: 1, Tags: []string{"oil"}}
	milkMl  = catalog.Product{Name: "Milk", Unit: catalog.UnitMilliliter, UnitQuantity: 500, Tags: []string{"milk"}}
	paneerG = catalog.Product{Name: "Amul Taaza Paneer", Unit: catalog.UnitGram, UnitQuantity: 200, Tags: []string{"paneer"}}
	attaKg  = catalog.Product{Name: "Aashirvaad Select Atta", Unit: catalog.UnitKilogram, UnitQuantity: 5, Tags: []string{"atta"}}
	eggsPc  = catalog.Product{Name: "Eggs", Unit: catalog.UnitPiece, UnitQuantity: 6, Tags: []string{"egg"}}
	breadPk = catalog.Product{Name: "Bread", Unit: catalog.UnitPack, UnitQuantity: 1, Tags: []string{"bread"}}
)

func TestCalculator_Classify(t *testing.T) {
	c := NewCalculator(DefaultConversionTable())

	tests := []struct {
		q    Quantity
		want Strategy
	}{
		{Quantity{"to taste", "g"}, StrategyVague},
		{Quantity{"salt to taste", "medium"}, StrategyVague},
		{Quantity{"2", "medium"}, StrategySizeDescriptor},
		{Quantity{"2", "Large Onion"}, StrategySizeDescriptor},
		{Quantity{"1", "small"}, StrategySizeDescriptor},
		{Quantity{"1", "tbsp"}, StrategySpoon},
		{Quantity{"1", " TSP "}, StrategySpoon},
		{Quantity{"1", "tablespoon"}, StrategyStandard},
		{Quantity{"2", "kg"}, StrategyStandard},
		{Quantity{"To Taste", "g"}, StrategyStandard},
	}

	for _, tt := range tests {
		t.Run(tt.q.Value+"/"+tt.q.Unit, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.q))
		})
	}
}

func TestCalculator_Calculate(t *testing.T) {
	c := NewCalculator(DefaultConversionTable())

	tests := []struct {
		name        string
		ingredient  string
		q           Quantity
		product     catalog.Product
		wantQty     int
		wantRaw     float64
		approximate bool
		notes       string
	}{
		{
			name: "kg against kg pack", ingredient: "Onions",
			q: Quantity{"2", "kg"}, product: onionKg,
			wantQty: 2, wantRaw: 2,
		},
		{
			name: "tsp salt against kg pack", ingredient: "Salt",
			q: Quantity{"1", "tsp"}, product: saltKg,
			wantQty: 1, wantRaw: 0.006, approximate: true,
			notes: "Quantity is approximate based on standard conversions. Rounded up from 0.01. Minimum purchase quantity.",
		},
		{
			name: "tbsp butter against gram pack", ingredient: "Butter",
			q: Quantity{"2", "tbsp"}, product: butterG,
			wantQty: 1, wantRaw: 0.3, approximate: true,
			notes: "Quantity is approximate based on standard conversions. Rounded up from 0.30.",
		},
		{
			name: "to taste ignores unit", ingredient: "Pepper",
			q: Quantity{"to taste", "cup"}, product: pepperG,
			wantQty: 1, wantRaw: 1, notes: NoteVague,
		},
		{
			name: "medium onions against kg", ingredient: "Onion",
			q: Quantity{"2", "medium"}, product: onionKg,
			wantQty: 1, wantRaw: 0.24, approximate: true,
			notes: "Quantity is approximate based on standard conversions. Rounded up from 0.24.",
		},
		{
			name: "large tomatoes against gram pack", ingredient: "tomatoes",
			q: Quantity{"3", "large"}, product: tomatoG,
			wantQty: 1, wantRaw: 0.6, approximate: true,
		},
		{
			name: "medium onions against pieces", ingredient: "red onion",
			q: Quantity{"4", "medium"}, product: onionPc,
			wantQty: 4, wantRaw: 4, approximate: true,
			notes: NoteApproximate,
		},
		{
			name: "tbsp oil against litre", ingredient: "oil",
			q: Quantity{"2", "tbsp"}, product: oilL,
			wantQty: 1, wantRaw: 0.03, approximate: true,
		},
		{
			name: "tsp milk against ml pack", ingredient: "milk",
			q: Quantity{"4", "tsp"}, product: milkMl,
			wantQty: 1, wantRaw: 0.04, approximate: true,
		},
		{
			name: "ml against litre", ingredient: "oil",
			q: Quantity{"500", "ml"}, product: oilL,
			wantQty: 1, wantRaw: 0.5,
			notes: "Rounded up from 0.50.",
		},
		{
			name: "litre against ml pack", ingredient: "milk",
			q: Quantity{"1", "l"}, product: milkMl,
			wantQty: 2, wantRaw: 2,
		},
		{
			name: "grams against gram pack", ingredient: "paneer",
			q: Quantity{"1500", "g"}, product: paneerG,
			wantQty: 8, wantRaw: 7.5,
			notes: "Rounded up from 7.50.",
		},
		{
			name: "grams against kg pack", ingredient: "onion",
			q: Quantity{"250", "g"}, product: onionKg,
			wantQty: 1, wantRaw: 0.25,
		},
		{
			name: "kg against multi-kg pack", ingredient: "atta",
			q: Quantity{"12", "kg"}, product: attaKg,
			wantQty: 3, wantRaw: 2.4,
		},
		{
			name: "pieces against a carton", ingredient: "eggs",
			q: Quantity{"12", "piece"}, product: eggsPc,
			wantQty: 2, wantRaw: 2,
		},
		{
			name: "fraction", ingredient: "onion",
			q: Quantity{"1/2", "kg"}, product: onionKg,
			wantQty: 1, wantRaw: 0.5,
		},
		{
			name: "mixed number", ingredient: "onion",
			q: Quantity{"1 1/2", "KG"}, product: onionKg,
			wantQty: 2, wantRaw: 1.5,
		},
		{
			name: "range takes the leading number", ingredient: "onion",
			q: Quantity{"1-2", "kg"}, product: onionKg,
			wantQty: 1, wantRaw: 1,
		},
		{
			name: "number glued to unit", ingredient: "paneer",
			q: Quantity{"200g", "g"}, product: paneerG,
			wantQty: 1, wantRaw: 1,
		},
		{
			name: "number with trailing remark", ingredient: "onion",
			q: Quantity{"2 (approx)", "kg"}, product: onionKg,
			wantQty: 2, wantRaw: 2,
		},
		{
			name: "number with trailing words", ingredient: "onion",
			q: Quantity{"1.5 cups", "kg"}, product: onionKg,
			wantQty: 2, wantRaw: 1.5,
			notes: "Rounded up from 1.50.",
		},
		{
			name: "fraction with trailing words", ingredient: "onion",
			q: Quantity{"1/2 bag", "kg"}, product: onionKg,
			wantQty: 1, wantRaw: 0.5,
			notes: "Rounded up from 0.50.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := c.Calculate(tt.ingredient, tt.q, tt.product)
			require.NoError(t, err)
			assert.Equal(t, tt.wantQty, calc.Quantity)
			assert.InDelta(t, tt.wantRaw, calc.Raw, 1e-9)
			assert.Equal(t, tt.approximate, calc.Approximate)
			if tt.notes != "" {
				assert.Equal(t, tt.notes, calc.Notes)
			}
			if tt.approximate {
				assert.Contains(t, calc.Notes, NoteApproximate)
			} else {
				assert.NotContains(t, calc.Notes, NoteApproximate)
			}
		})
	}
}

func TestCalculator_SpoonWeightsByTag(t *testing.T) {
	c := NewCalculator(DefaultConversionTable())
	butterAndSugar := catalog.Product{Name: "Sweet Butter", Unit: catalog.UnitGram, UnitQuantity: 1000, Tags: []string{"sugar", "butter"}}
	plainG := catalog.Product{Name: "Semolina", Unit: catalog.UnitGram, UnitQuantity: 1000, Tags: []string{"rava"}}
	saltG := saltKg
	saltG.Unit, saltG.UnitQuantity = catalog.UnitGram, 1000
	butterBulk := butterG
	butterBulk.Unit, butterBulk.UnitQuantity = catalog.UnitGram, 1000

	tests := []struct {
		name    string
		unit    string
		product catalog.Product
		grams   float64
	}{
		{"tbsp butter", "tbsp", butterBulk, 15},
		{"tbsp butter wins over sugar", "tbsp", butterAndSugar, 15},
		{"tbsp sugar", "tbsp", sugarG, 12},
		{"tsp sugar", "tsp", sugarG, 4},
		{"tsp salt", "tsp", saltG, 6},
		{"tbsp salt uses default", "tbsp", saltG, 10},
		{"tsp butter uses default", "tsp", butterBulk, 3},
		{"tsp sugar wins over butter", "tsp", butterAndSugar, 4},
		{"tbsp masala", "tbsp", masalaG, 7},
		{"tsp powder", "tsp", chilliG, 2.5},
		{"tbsp default", "tbsp", plainG, 10},
		{"tsp default", "tsp", plainG, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := c.Calculate("x", Quantity{"1", tt.unit}, tt.product)
			require.NoError(t, err)
			assert.InDelta(t, tt.grams/tt.product.UnitQuantity, calc.Raw, 1e-9)
		})
	}
}

func TestCalculator_Failures(t *testing.T) {
	c := NewCalculator(DefaultConversionTable())

	tests := []struct {
		name       string
		ingredient string
		q          Quantity
		product    catalog.Product
		wantErr    error
	}{
		{"cup is unsupported", "Pepper", Quantity{"2", "cup"}, pepperG, ErrUnsupportedUnit},
		{"zero value", "Onion", Quantity{"0", "kg"}, onionKg, ErrInvalidValue},
		{"negative value", "Onion", Quantity{"-1", "kg"}, onionKg, ErrInvalidValue},
		{"empty value", "Onion", Quantity{"", "kg"}, onionKg, ErrInvalidValue},
		{"text value", "Onion", Quantity{"a pinch", "g"}, onionKg, ErrInvalidValue},
		{"nan value", "Onion", Quantity{"NaN", "kg"}, onionKg, ErrInvalidValue},
		{"inf value", "Onion", Quantity{"Inf", "kg"}, onionKg, ErrInvalidValue},
		{"division by zero", "Onion", Quantity{"1/0", "kg"}, onionKg, ErrInvalidValue},
		{"zero spoon", "Salt", Quantity{"0", "tsp"}, saltKg, ErrInvalidValue},
		{"zero size", "Onion", Quantity{"0", "medium"}, onionKg, ErrInvalidValue},
		{"weight against volume", "Oil", Quantity{"100", "g"}, oilL, ErrUnsupportedUnit},
		{"volume against weight", "Paneer", Quantity{"100", "ml"}, paneerG, ErrUnsupportedUnit},
		{"piece against weight", "Onion", Quantity{"2", "piece"}, onionKg, ErrUnsupportedUnit},
		{"weight against piece", "Eggs", Quantity{"200", "g"}, eggsPc, ErrUnsupportedUnit},
		{"spoon against piece", "Eggs", Quantity{"1", "tbsp"}, eggsPc, ErrUnsupportedUnit},
		{"spoon against pack", "Bread", Quantity{"1", "tsp"}, breadPk, ErrUnsupportedUnit},
		{"grams against pack", "Bread", Quantity{"100", "g"}, breadPk, ErrUnsupportedUnit},
		{"unknown size keyword", "Eggs", Quantity{"2", "large"}, eggsPc, ErrUnknownSize},
		{"size against litre", "Onion", Quantity{"2", "medium"}, oilL, ErrUnsupportedUnit},
		{"absurd amount", "Onion", Quantity{"1e12", "g"}, onionKg, ErrQuantityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := c.Calculate(tt.ingredient, tt.q, tt.product)
			assert.Nil(t, calc)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCalculator_TableIsCopied(t *testing.T) {
	table := DefaultConversionTable()
	c := NewCalculator(table)

	table.SizeWeights[0].Grams = 1000
	table.Factors["kg"][catalog.UnitKilogram] = 50
	table.Spoons["tsp"].Rules[0].Tags[0] = "pepper"

	calc, err := c.Calculate("onion", Quantity{"1", "kg"}, onionKg)
	require.NoError(t, err)
	assert.Equal(t, 1, calc.Quantity)

	calc, err = c.Calculate("onion", Quantity{"1", "medium"}, onionKg)
	require.NoError(t, err)
	assert.InDelta(t, 0.12, calc.Raw, 1e-9)

	calc, err = c.Calculate("salt", Quantity{"1", "tsp"}, saltKg)
	require.NoError(t, err)
	assert.InDelta(t, 0.006, calc.Raw, 1e-9)
}

func TestCalculator_ExtendedSizeTable(t *testing.T) {
	table := DefaultConversionTable()
	table.SizeWeights = append(table.SizeWeights, SizeWeight{Keyword: "potato", Grams: 150})
	c := NewCalculator(table)

	potato := catalog.Product{Name: "Potato", Unit: catalog.UnitKilogram, UnitQuantity: 1}
	calc, err := c.Calculate("Potatoes", Quantity{"4", "medium"}, potato)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, calc.Raw, 1e-9)
	assert.Equal(t, 1, calc.Quantity)
}

func TestFinalize(t *testing.T) {
	calc, err := finalize(estimate{packs: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, calc.Quantity)
	assert.Empty(t, calc.Notes)

	calc, err = finalize(estimate{packs: 1.2, approximate: true})
	require.NoError(t, err)
	assert.Equal(t, 2, calc.Quantity)
	assert.Equal(t, "Quantity is approximate based on standard conversions. Rounded up from 1.20.", calc.Notes)

	calc, err = finalize(estimate{packs: 0.4})
	require.NoError(t, err)
	assert.Equal(t, 1, calc.Quantity)
	assert.Equal(t, "Rounded up from 0.40.", calc.Notes)

	calc, err = finalize(estimate{packs: 0.004})
	require.NoError(t, err)
	assert.Equal(t, 1, calc.Quantity)
	assert.Equal(t, "Rounded up from 0.00. Minimum purchase quantity.", calc.Notes)

	_, err = finalize(estimate{packs: 0})
	assert.ErrorIs(t, err, ErrZeroQuantity)

	_, err = finalize(estimate{packs: -0.5})
	assert.ErrorIs(t, err, ErrInvalidValue)
}
