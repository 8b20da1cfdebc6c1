package recipe

import (
	"fmt"

	"fridgechef/internal/pantry"
)

// RecipesKey is the collection key of a recipe payload.
const RecipesKey = "recipes"

// ValidateRecipes checks every element of doc["recipes"] in field order and
// fails on the first violation with a *pantry.Error naming the field and index.
func ValidateRecipes(doc any) ([]Recipe, error) {
	items, err := pantry.Elements(doc, RecipesKey)
	if err != nil {
		return nil, err
	}

	out := make([]Recipe, 0, len(items))
	for i, item := range items {
		r, err := validateRecipe(i, item)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func validateRecipe(index int, v any) (Recipe, error) {
	var r Recipe

	rec, err := pantry.NewRecord(RecipesKey, index, v, "recipe")
	if err != nil {
		return r, err
	}
	if r.Name, err = rec.Text("name"); err != nil {
		return r, err
	}

	ingredients, err := rec.Object("ingredients")
	if err != nil {
		return r, err
	}
	if r.Ingredients.Available, err = ingredients.TextList("available"); err != nil {
		return r, err
	}
	if r.Ingredients.Missing, err = ingredients.TextList("missing"); err != nil {
		return r, err
	}

	if r.Instructions, err = rec.TextList("instructions"); err != nil {
		return r, err
	}
	if r.PrepTime, err = rec.Text("prepTime"); err != nil {
		return r, err
	}
	if r.CookTime, err = rec.Text("cookTime"); err != nil {
		return r, err
	}

	difficulty, err := rec.Text("difficulty")
	if err != nil {
		return r, err
	}
	r.Difficulty = Difficulty(difficulty)
	if !r.Difficulty.Valid() {
		return r, pantry.NewInvalidField(RecipesKey, "difficulty", index,
			fmt.Sprintf("%q must be one of Easy, Medium, Hard", difficulty))
	}

	if r.CuisineType, err = rec.Text("cuisineType"); err != nil {
		return r, err
	}
	return r, nil
}

// ParseRecipes normalizes raw model output and validates the recipes in it.
func ParseRecipes(raw string) ([]Recipe, error) {
	doc, err := pantry.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return ValidateRecipes(doc)
}
