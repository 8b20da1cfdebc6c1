package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fridgechef/internal/pantry"
)

func TestShoppingListListsNamesWithCategories(t *testing.T) {
	got := ShoppingList([]pantry.Ingredient{
		{Name: "Milk", Category: pantry.CategoryDairy},
		{Name: "Spinach", Category: pantry.CategoryProduce},
	})

	assert.Contains(t, got, "[Milk (dairy), Spinach (produce)]")
	assert.Contains(t, got, `"suggestions"`)
}

func TestRecipesListsNames(t *testing.T) {
	got := Recipes([]string{"Eggs", "Tomato"})

	assert.Contains(t, got, "[Eggs, Tomato]")
	assert.Contains(t, got, `"recipes"`)
}

func TestIngredientsNamesEveryField(t *testing.T) {
	for _, field := range []string{"estimated_quantity", "confidence", "freshness", "estimatedExpiryDays", "category", "nutritionalInfo", "servingSize"} {
		assert.Contains(t, Ingredients, field)
	}
}
