package pantry

import (
	"sort"
)

// MinConfidence is the lowest detection confidence surfaced to the user.
const MinConfidence = 0.3

// ExpiringSoonDays is the default horizon for ExpiringSoon.
const ExpiringSoonDays = 3

// Confidence level boundaries used by Ingredient.ConfidenceLevel.
const (
	HighConfidence   = 0.8
	MediumConfidence = 0.6
)

// Freshness describes the visible state of a detected item.
type Freshness string

const (
	FreshnessFresh    Freshness = "fresh"
	FreshnessRipe     Freshness = "ripe"
	FreshnessOverripe Freshness = "overripe"
	FreshnessSpoiled  Freshness = "spoiled"
)

var freshnessValues = []Freshness{FreshnessFresh, FreshnessRipe, FreshnessOverripe, FreshnessSpoiled}

// Valid reports whether f is one of the known freshness values.
func (f Freshness) Valid() bool {
	for _, v := range freshnessValues {
		if f == v {
			return true
		}
	}
	return false
}

// Category is a grocery aisle bucket.
type Category string

const (
	CategoryProduce   Category = "produce"
	CategoryDairy     Category = "dairy"
	CategoryProtein   Category = "protein"
	CategoryPantry    Category = "pantry"
	CategoryCondiment Category = "condiment"
)

// Categories returns the categories in shopping-list bucket order.
func Categories() []Category {
	return []Category{CategoryProduce, CategoryDairy, CategoryProtein, CategoryPantry, CategoryCondiment}
}

// Valid reports whether c is one of the five known categories.
func (c Category) Valid() bool {
	return c.rank() >= 0
}

func (c Category) rank() int {
	for i, v := range Categories() {
		if c == v {
			return i
		}
	}
	return -1
}

// Priority ranks a shopping suggestion inside its category.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities; higher is more important. Unknown priorities rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// NutritionalInfo holds per-serving nutrition estimates for an ingredient.
type NutritionalInfo struct {
	ServingSize string  `json:"servingSize"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"` // grams
	Carbs       float64 `json:"carbs"`   // grams
	Fat         float64 `json:"fat"`     // grams
}

// Ingredient is a single food item detected in a fridge photo.
type Ingredient struct {
	Name                string          `json:"name"`
	EstimatedQuantity   string          `json:"estimated_quantity"`
	Confidence          float64         `json:"confidence"`
	Freshness           Freshness       `json:"freshness"`
	EstimatedExpiryDays int             `json:"estimatedExpiryDays"`
	Category            Category        `json:"category"`
	NutritionalInfo     NutritionalInfo `json:"nutritionalInfo"`
}

// ConfidenceLevel buckets the detection confidence into high, medium or low.
func (i Ingredient) ConfidenceLevel() string {
	switch {
	case i.Confidence >= HighConfidence:
		return "high"
	case i.Confidence >= MediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

// ShoppingSuggestion is a grocery item proposed to fill a gap in the fridge.
type ShoppingSuggestion struct {
	Item     string   `json:"item"`
	Category Category `json:"category"`
	Reason   string   `json:"reason"`
	Priority Priority `json:"priority,omitempty"`
}

// FilterByConfidence drops every ingredient below MinConfidence, keeping order.
func FilterByConfidence(ingredients []Ingredient) []Ingredient {
	out := make([]Ingredient, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.Confidence >= MinConfidence {
			out = append(out, ing)
		}
	}
	return out
}

// ExpiringSoon returns the ingredients expiring within days, soonest first.
func ExpiringSoon(ingredients []Ingredient, days int) []Ingredient {
	out := make([]Ingredient, 0)
	for _, ing := range ingredients {
		if ing.EstimatedExpiryDays <= days {
			out = append(out, ing)
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].EstimatedExpiryDays < out[b].EstimatedExpiryDays
	})
	return out
}
