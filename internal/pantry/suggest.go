package pantry

import (
	"sort"
)

// ShoppingList groups suggestions into the fixed category buckets.
type ShoppingList struct {
	Produce   []ShoppingSuggestion `json:"produce"`
	Dairy     []ShoppingSuggestion `json:"dairy"`
	Protein   []ShoppingSuggestion `json:"protein"`
	Pantry    []ShoppingSuggestion `json:"pantry"`
	Condiment []ShoppingSuggestion `json:"condiment"`
}

// Bucket returns the suggestions of one category.
func (l ShoppingList) Bucket(c Category) []ShoppingSuggestion {
	switch c {
	case CategoryProduce:
		return l.Produce
	case CategoryDairy:
		return l.Dairy
	case CategoryProtein:
		return l.Protein
	case CategoryPantry:
		return l.Pantry
	case CategoryCondiment:
		return l.Condiment
	}
	return nil
}

// TotalItems counts the suggestions across all buckets.
func (l ShoppingList) TotalItems() int {
	total := 0
	for _, c := range Categories() {
		total += len(l.Bucket(c))
	}
	return total
}

// Flatten returns the suggestions in bucket order.
func (l ShoppingList) Flatten() []ShoppingSuggestion {
	out := make([]ShoppingSuggestion, 0, l.TotalItems())
	for _, c := range Categories() {
		out = append(out, l.Bucket(c)...)
	}
	return out
}

// Suggest computes the shopping suggestions for the detected ingredients:
// missing staples first, then items from every matching trigger rule, with
// case-insensitive duplicates dropped (first wins) and the result ordered by
// category bucket, then priority.
func Suggest(ingredients []Ingredient) []ShoppingSuggestion {
	detected := make(map[string]bool, len(ingredients))
	for _, ing := range ingredients {
		detected[nameKey(ing.Name)] = true
	}

	var candidates []ShoppingSuggestion
	for _, c := range Categories() {
		for _, s := range staples[c] {
			if detected[nameKey(s.Name)] {
				continue
			}
			candidates = append(candidates, ShoppingSuggestion{
				Item:     s.Name,
				Category: c,
				Reason:   s.Reason,
				Priority: s.Priority,
			})
		}
	}

	for _, r := range rules {
		if !r.Matches(ingredients) {
			continue
		}
		for _, item := range r.Items {
			if detected[nameKey(item.Name)] {
				continue
			}
			candidates = append(candidates, ShoppingSuggestion{
				Item:     item.Name,
				Category: item.Category,
				Reason:   r.Reason,
				Priority: RulePriority,
			})
		}
	}

	return orderSuggestions(dedupe(candidates))
}

// BuildShoppingList returns Suggest's result grouped by category.
func BuildShoppingList(ingredients []Ingredient) ShoppingList {
	return Group(Suggest(ingredients))
}

// Group buckets suggestions by category, keeping their relative order.
// Suggestions with an unknown category are dropped.
func Group(suggestions []ShoppingSuggestion) ShoppingList {
	var l ShoppingList
	for _, s := range suggestions {
		switch s.Category {
		case CategoryProduce:
			l.Produce = append(l.Produce, s)
		case CategoryDairy:
			l.Dairy = append(l.Dairy, s)
		case CategoryProtein:
			l.Protein = append(l.Protein, s)
		case CategoryPantry:
			l.Pantry = append(l.Pantry, s)
		case CategoryCondiment:
			l.Condiment = append(l.Condiment, s)
		}
	}
	return l
}

func dedupe(suggestions []ShoppingSuggestion) []ShoppingSuggestion {
	seen := make(map[string]bool, len(suggestions))
	out := suggestions[:0:0]
	for _, s := range suggestions {
		key := nameKey(s.Item)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

func orderSuggestions(suggestions []ShoppingSuggestion) []ShoppingSuggestion {
	sort.SliceStable(suggestions, func(a, b int) bool {
		ca, cb := suggestions[a].Category.rank(), suggestions[b].Category.rank()
		if ca != cb {
			return ca < cb
		}
		return suggestions[a].Priority.Rank() > suggestions[b].Priority.Rank()
	})
	return suggestions
}
