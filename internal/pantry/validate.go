package pantry

import (
	"errors"
	"math"
)

// Collection keys of the model payloads.
const (
	IngredientsKey = "ingredients"
	SuggestionsKey = "suggestions"
)

// ValidateIngredients checks every field of every element of doc["ingredients"]
// and stops at the first violation. A single bad record rejects the whole
// batch: the model reply is trusted as a unit or not at all.
func ValidateIngredients(doc any) ([]Ingredient, error) {
	items, err := Elements(doc, IngredientsKey)
	if err != nil {
		return nil, err
	}

	out := make([]Ingredient, 0, len(items))
	for i, item := range items {
		ing, err := validateIngredient(i, item)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, nil
}

func validateIngredient(index int, v any) (Ingredient, error) {
	var ing Ingredient

	rec, err := NewRecord(IngredientsKey, index, v, "ingredient")
	if err != nil {
		return ing, err
	}
	if ing.Name, err = rec.Text("name"); err != nil {
		return ing, err
	}
	if ing.EstimatedQuantity, err = rec.Text("estimated_quantity"); err != nil {
		return ing, err
	}
	if ing.Confidence, err = rec.Number("confidence", 0, 1); err != nil {
		return ing, err
	}

	freshness, err := rec.Text("freshness")
	if err != nil {
		return ing, err
	}
	ing.Freshness = Freshness(freshness)
	if !ing.Freshness.Valid() {
		return ing, rec.fail("freshness", "must be one of fresh, ripe, overripe, spoiled")
	}

	if ing.EstimatedExpiryDays, err = rec.Whole("estimatedExpiryDays"); err != nil {
		return ing, err
	}

	category, err := rec.Text("category")
	if err != nil {
		return ing, err
	}
	ing.Category = Category(category)
	if !ing.Category.Valid() {
		return ing, rec.fail("category", "must be one of produce, dairy, protein, pantry, condiment")
	}

	nutrition, err := rec.Object("nutritionalInfo")
	if err != nil {
		return ing, err
	}
	if ing.NutritionalInfo.Calories, err = nutrition.Number("calories", 0, math.MaxFloat64); err != nil {
		return ing, err
	}
	if ing.NutritionalInfo.Protein, err = nutrition.Number("protein", 0, math.MaxFloat64); err != nil {
		return ing, err
	}
	if ing.NutritionalInfo.Carbs, err = nutrition.Number("carbs", 0, math.MaxFloat64); err != nil {
		return ing, err
	}
	if ing.NutritionalInfo.Fat, err = nutrition.Number("fat", 0, math.MaxFloat64); err != nil {
		return ing, err
	}
	if ing.NutritionalInfo.ServingSize, err = nutrition.Text("servingSize"); err != nil {
		return ing, err
	}
	return ing, nil
}

// ParseIngredients runs raw model output through the normalizer, the
// validator and the confidence filter. An empty result is ErrNoDetection.
func ParseIngredients(raw string) ([]Ingredient, error) {
	doc, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return AcceptIngredients(doc)
}

// AcceptIngredients validates an already decoded payload and applies the
// confidence filter. An empty result is ErrNoDetection.
func AcceptIngredients(doc any) ([]Ingredient, error) {
	ingredients, err := ValidateIngredients(doc)
	if err != nil {
		return nil, err
	}
	filtered := FilterByConfidence(ingredients)
	if len(filtered) == 0 {
		reason := "no ingredients in response"
		if len(ingredients) > 0 {
			reason = "no ingredient reached the confidence threshold"
		}
		return nil, &Error{Kind: KindNoDetection, Reason: reason}
	}
	return filtered, nil
}

// ValidateSuggestions checks a model-generated {"suggestions": [...]} payload
// with the same fail-fast rules as ingredients.
func ValidateSuggestions(doc any) ([]ShoppingSuggestion, error) {
	items, err := Elements(doc, SuggestionsKey)
	if err != nil {
		return nil, err
	}

	out := make([]ShoppingSuggestion, 0, len(items))
	for i, item := range items {
		rec, err := NewRecord(SuggestionsKey, i, item, "suggestion")
		if err != nil {
			return nil, err
		}
		var s ShoppingSuggestion
		if s.Item, err = rec.Text("item"); err != nil {
			return nil, err
		}
		category, err := rec.Text("category")
		if err != nil {
			return nil, err
		}
		s.Category = Category(category)
		if !s.Category.Valid() {
			return nil, rec.fail("category", "must be one of produce, dairy, protein, pantry, condiment")
		}
		if s.Reason, err = rec.Text("reason"); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseSuggestions normalizes and validates a model-generated suggestion list.
func ParseSuggestions(raw string) ([]ShoppingSuggestion, error) {
	doc, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return ValidateSuggestions(doc)
}

// IsInputError reports whether err is a structural or field violation, as
// opposed to an unreadable or empty reply.
func IsInputError(err error) bool {
	return errors.Is(err, ErrInvalidStructure) || errors.Is(err, ErrInvalidField)
}
