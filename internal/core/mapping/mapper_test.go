package mapping

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-cart/internal/core/catalog"
)

func newTestCatalog(t *testing.T) *catalog.MemoryCatalog {
	t.Helper()
	ctx := context.Background()

	store := catalog.NewMemoryCatalog()
	_, err := catalog.Seed(ctx, store, catalog.DefaultProducts())
	require.NoError(t, err)
	require.NoError(t, store.Add(ctx, &catalog.Product{
		Name: "Amul Butter", Tags: []string{"butter", "dairy"}, Price: 56,
		Unit: catalog.UnitGram, UnitQuantity: 100,
	}))
	require.NoError(t, store.Add(ctx, &catalog.Product{
		Name: "Pepper", Tags: []string{"pepper", "spice"}, Price: 90,
		Unit: catalog.UnitGram, UnitQuantity: 100,
	}))
	return store
}

func ing(name, value, unit string) ParsedIngredient {
	return ParsedIngredient{Name: name, Quantity: Quantity{Value: value, Unit: unit}}
}

func TestMapper_Scenarios(t *testing.T) {
	m := NewMapper(newTestCatalog(t), nil)

	result, err := m.Map(context.Background(), []ParsedIngredient{
		ing("Onions", "2", "kg"),
		ing("Salt", "1", "tsp"),
		ing("Pepper", "2", "cup"),
		ing("Unicorn Meat", "500", "g"),
		ing("Butter", "2", "tbsp"),
	})
	require.NoError(t, err)
	require.Len(t, result.MatchedItems, 3)
	require.Len(t, result.UnavailableItems, 2)

	onions := result.MatchedItems[0]
	assert.Equal(t, "Onions", onions.OriginalIngredientName)
	assert.Equal(t, "2 kg", onions.OriginalQuantity)
	assert.Equal(t, "Onion", onions.MatchedProduct.Name)
	assert.Equal(t, 2, onions.CalculatedQuantityNeeded)
	assert.Empty(t, onions.CalculationNotes)

	salt := result.MatchedItems[1]
	assert.Equal(t, "Tata Salt Iodized", salt.MatchedProduct.Name)
	assert.Equal(t, 1, salt.CalculatedQuantityNeeded)
	assert.Contains(t, salt.CalculationNotes, NoteApproximate)
	assert.Contains(t, salt.CalculationNotes, NoteMinimum)

	butter := result.MatchedItems[2]
	assert.Equal(t, "Amul Butter", butter.MatchedProduct.Name)
	assert.Equal(t, 1, butter.CalculatedQuantityNeeded)
	assert.Contains(t, butter.CalculationNotes, NoteApproximate)
	assert.Contains(t, butter.CalculationNotes, "Rounded up from 0.30.")

	pepper := result.UnavailableItems[0]
	assert.Equal(t, "Pepper", pepper.OriginalIngredientName)
	assert.Equal(t, "2 cup", pepper.OriginalQuantity)
	assert.Contains(t, pepper.Reason, "Product found ('Pepper')")
	assert.Contains(t, pepper.Reason, "(Recipe: 2 cup, Product: 100 g)")
	assert.Contains(t, pepper.Reason, "unsupported unit combination")
	assert.Contains(t, pepper.Reason, "Requires manual check.")

	unicorn := result.UnavailableItems[1]
	assert.Equal(t, "Unicorn Meat", unicorn.OriginalIngredientName)
	assert.Equal(t, ReasonNotFound, unicorn.Reason)
}

func TestMapper_PreservesOrderAndCounts(t *testing.T) {
	store := newTestCatalog(t)

	var input []ParsedIngredient
	for i := 0; i < 40; i++ {
		switch i % 4 {
		case 0:
			input = append(input, ing(fmt.Sprintf("onion-%d", i), "1", "kg"))
		case 1:
			input = append(input, ing("Tomatoes", fmt.Sprint(i), "kg"))
		case 2:
			input = append(input, ing("Paneer", "to taste", "g"))
		default:
			input = append(input, ing("Atta", "0", "kg"))
		}
	}

	for _, workers := range []int{0, 1, 3, 8, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			m := NewMapper(store, nil, WithWorkers(workers), WithLookupTimeout(time.Second))
			result, err := m.Map(context.Background(), input)
			require.NoError(t, err)

			assert.Equal(t, len(input), result.Total())
			require.Len(t, result.MatchedItems, 20)
			require.Len(t, result.UnavailableItems, 20)

			// 輸入順序：tomato(1), paneer(2), tomato(5), paneer(6)...
			for j, item := range result.MatchedItems {
				if j%2 == 0 {
					assert.Equal(t, "Tomatoes", item.OriginalIngredientName)
					assert.Equal(t, fmt.Sprintf("%d kg", 4*(j/2)+1), item.OriginalQuantity)
					assert.Equal(t, 4*(j/2)+1, item.CalculatedQuantityNeeded)
				} else {
					assert.Equal(t, "Paneer", item.OriginalIngredientName)
					assert.Equal(t, 1, item.CalculatedQuantityNeeded)
					assert.Equal(t, NoteVague, item.CalculationNotes)
				}
				assert.GreaterOrEqual(t, item.CalculatedQuantityNeeded, 1)
			}
			for j, item := range result.UnavailableItems {
				if j%2 == 0 {
					assert.Equal(t, fmt.Sprintf("onion-%d", 4*(j/2)), item.OriginalIngredientName)
					assert.Equal(t, ReasonNotFound, item.Reason)
				} else {
					assert.Equal(t, "Atta", item.OriginalIngredientName)
					assert.Contains(t, item.Reason, "Product found ('Aashirvaad Select Atta')")
					assert.Contains(t, item.Reason, "Product: 5 kg")
				}
			}
		})
	}
}

func TestMapper_EmptyInput(t *testing.T) {
	result, err := NewMapper(newTestCatalog(t), nil).Map(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, result.MatchedItems)
	assert.NotNil(t, result.UnavailableItems)
	assert.Zero(t, result.Total())
}

func TestMapper_RejectsMalformedInput(t *testing.T) {
	m := NewMapper(newTestCatalog(t), nil)

	tests := []struct {
		name  string
		input []ParsedIngredient
		field string
	}{
		{"blank name", []ParsedIngredient{ing("Onion", "1", "kg"), ing("  ", "1", "kg")}, "ingredients[1].name"},
		{"blank unit", []ParsedIngredient{ing("Onion", "1", "")}, "ingredients[0].quantity.unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := m.Map(context.Background(), tt.input)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrInvalidIngredients)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestMapper_EmptyValueIsAnUnavailableItem(t *testing.T) {
	result, err := NewMapper(newTestCatalog(t), nil).Map(context.Background(), []ParsedIngredient{ing("Onion", "", "kg")})
	require.NoError(t, err)
	require.Len(t, result.UnavailableItems, 1)
	assert.Equal(t, " kg", result.UnavailableItems[0].OriginalQuantity)
	assert.Contains(t, result.UnavailableItems[0].Reason, "not a positive number")
}

func TestParsedIngredient_OriginalQuantity(t *testing.T) {
	tests := []struct {
		name string
		q    Quantity
		want string
	}{
		{"value and unit", Quantity{"500", "g"}, "500 g"},
		{"empty unit keeps the separator", Quantity{"2", ""}, "2 "},
		{"empty value keeps the separator", Quantity{"", "kg"}, " kg"},
		{"inner spacing is untouched", Quantity{" 1 1/2", "cup "}, " 1 1/2 cup "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ing("x", tt.q.Value, tt.q.Unit).OriginalQuantity())
		})
	}
}

func TestMapper_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, workers := range []int{1, 4} {
		result, err := NewMapper(newTestCatalog(t), nil, WithWorkers(workers)).
			Map(ctx, []ParsedIngredient{ing("Onion", "1", "kg"), ing("Salt", "1", "tsp")})
		assert.Nil(t, result)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestMapper_StoreFailureIsAbsorbed(t *testing.T) {
	spy := &spyCatalog{err: errors.New("connection reset")}

	result, err := NewMapper(spy, nil).Map(context.Background(), []ParsedIngredient{ing("Onion", "1", "kg")})
	require.NoError(t, err)
	require.Len(t, result.UnavailableItems, 1)
	assert.Contains(t, result.UnavailableItems[0].Reason, "Catalog lookup failed")
	assert.Contains(t, result.UnavailableItems[0].Reason, "connection reset")
}
