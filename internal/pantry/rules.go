package pantry

import (
	"strings"
)

// Staple is an everyday item suggested whenever it was not detected.
type Staple struct {
	Name     string
	Priority Priority
	Reason   string
}

// RuleItem is one complementary item proposed by a trigger rule.
type RuleItem struct {
	Name     string
	Category Category
}

// Rule proposes complementary items when the detected ingredients contain a
// known pairing. A rule fires when some detected name contains one of
// Keywords and a different detected name contains one of CompanionKeywords,
// or, when CompanionCategory is set, some detected ingredient is in that
// category. Keyword matching is case-insensitive substring matching.
type Rule struct {
	Name              string
	Keywords          []string
	CompanionKeywords []string
	CompanionCategory Category
	Reason            string
	Items             []RuleItem
}

// RulePriority is the priority of every rule-emitted suggestion.
const RulePriority = PriorityMedium

var staples = map[Category][]Staple{
	CategoryProduce: {
		{Name: "Onions", Priority: PriorityHigh, Reason: "Basic cooking ingredient"},
		{Name: "Garlic", Priority: PriorityHigh, Reason: "Essential flavor base"},
		{Name: "Potatoes", Priority: PriorityMedium, Reason: "Versatile staple"},
		{Name: "Carrots", Priority: PriorityMedium, Reason: "Good for soups and sides"},
	},
	CategoryDairy: {
		{Name: "Milk", Priority: PriorityHigh, Reason: "Basic cooking and drinking"},
		{Name: "Eggs", Priority: PriorityHigh, Reason: "Essential for baking and cooking"},
		{Name: "Butter", Priority: PriorityHigh, Reason: "Cooking and baking staple"},
	},
	CategoryProtein: {
		{Name: "Chicken Breast", Priority: PriorityMedium, Reason: "Versatile protein"},
		{Name: "Ground Beef", Priority: PriorityMedium, Reason: "Good for various dishes"},
	},
	CategoryPantry: {
		{Name: "Cooking Oil", Priority: PriorityHigh, Reason: "Essential for cooking"},
		{Name: "Salt", Priority: PriorityHigh, Reason: "Basic seasoning"},
		{Name: "Black Pepper", Priority: PriorityHigh, Reason: "Essential seasoning"},
		{Name: "Flour", Priority: PriorityMedium, Reason: "Baking and thickening"},
		{Name: "Rice", Priority: PriorityMedium, Reason: "Versatile side dish"},
		{Name: "Pasta", Priority: PriorityMedium, Reason: "Quick meal base"},
	},
	CategoryCondiment: {
		{Name: "Ketchup", Priority: PriorityLow, Reason: "Common condiment"},
		{Name: "Mustard", Priority: PriorityLow, Reason: "Sandwich and cooking"},
	},
}

var rules = []Rule{
	{
		Name:              "tomato + cheese",
		Keywords:          []string{"tomato"},
		CompanionKeywords: []string{"cheese"},
		Reason:            "Complements tomato and cheese dishes",
		Items: []RuleItem{
			{"Basil", CategoryProduce},
			{"Onions", CategoryProduce},
			{"Garlic", CategoryProduce},
			{"Pasta", CategoryPantry},
			{"Olive Oil", CategoryPantry},
			{"Balsamic Vinegar", CategoryCondiment},
		},
	},
	{
		Name:              "chicken + vegetables",
		Keywords:          []string{"chicken"},
		CompanionCategory: CategoryProduce,
		Reason:            "Complements chicken dishes",
		Items: []RuleItem{
			{"Onions", CategoryProduce},
			{"Carrots", CategoryProduce},
			{"Celery", CategoryProduce},
			{"Rice", CategoryPantry},
			{"Chicken Broth", CategoryPantry},
			{"Soy Sauce", CategoryCondiment},
		},
	},
	{
		Name:              "beef + potatoes",
		Keywords:          []string{"beef"},
		CompanionKeywords: []string{"potato"},
		Reason:            "Complements beef and potato dishes",
		Items: []RuleItem{
			{"Onions", CategoryProduce},
			{"Carrots", CategoryProduce},
			{"Garlic", CategoryProduce},
			{"Beef Broth", CategoryPantry},
			{"Worcestershire Sauce", CategoryPantry},
			{"Ketchup", CategoryCondiment},
			{"Mustard", CategoryCondiment},
		},
	},
	{
		Name:              "fish + citrus",
		Keywords:          []string{"fish", "salmon", "cod", "tuna", "tilapia"},
		CompanionKeywords: []string{"lemon", "lime", "orange"},
		Reason:            "Complements fish and citrus dishes",
		Items: []RuleItem{
			{"Lemon", CategoryProduce},
			{"Lime", CategoryProduce},
			{"Herbs", CategoryProduce},
			{"Olive Oil", CategoryPantry},
			{"White Wine", CategoryPantry},
			{"Capers", CategoryCondiment},
		},
	},
}

// Staples returns a copy of the staple table for category.
func Staples(category Category) []Staple {
	return append([]Staple(nil), staples[category]...)
}

// Rules returns a copy of the trigger rules in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	for i, r := range rules {
		r.Keywords = append([]string(nil), r.Keywords...)
		r.CompanionKeywords = append([]string(nil), r.CompanionKeywords...)
		r.Items = append([]RuleItem(nil), r.Items...)
		out[i] = r
	}
	return out
}

// Matches reports whether the rule fires for the detected ingredients. The
// result depends only on the set of detected ingredients, not their order.
func (r Rule) Matches(ingredients []Ingredient) bool {
	for i, ing := range ingredients {
		if !containsAny(ing.Name, r.Keywords) {
			continue
		}
		if r.CompanionCategory != "" {
			for _, other := range ingredients {
				if other.Category == r.CompanionCategory {
					return true
				}
			}
			continue
		}
		for j, other := range ingredients {
			if j != i && containsAny(other.Name, r.CompanionKeywords) {
				return true
			}
		}
	}
	return false
}

func containsAny(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
