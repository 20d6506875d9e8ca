package mapping

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidIngredients 輸入不符合約定（缺少名稱或單位），整個對應請求都會被拒絕
var ErrInvalidIngredients = errors.New("invalid ingredient list")

var validate = newValidator()

type ingredientList struct {
	Ingredients []ParsedIngredient `json:"ingredients" validate:"dive"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidateIngredients 檢查每個食材都有名稱與單位
func ValidateIngredients(ingredients []ParsedIngredient) error {
	err := validate.Struct(ingredientList{Ingredients: ingredients})
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidIngredients, err)
	}

	problems := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// ingredientList.ingredients[1].quantity.unit -> ingredients[1].quantity.unit
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		problems = append(problems, fmt.Sprintf("%s must not be blank", field))
	}
	return fmt.Errorf("%w: %s", ErrInvalidIngredients, strings.Join(problems, "; "))
}
