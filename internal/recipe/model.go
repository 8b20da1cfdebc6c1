package recipe

// Difficulty is the effort level of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is Easy, Medium or Hard. Matching is exact.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Ingredients partitions the ingredients of a recipe into what the fridge
// already holds and what has to be bought.
type Ingredients struct {
	Available []string `json:"available"`
	Missing   []string `json:"missing"`
}

// Recipe represents the structure of a generated recipe suggestion.
type Recipe struct {
	Name         string      `json:"name"`
	Ingredients  Ingredients `json:"ingredients"`
	Instructions []string    `json:"instructions"`
	PrepTime     string      `json:"prepTime"`
	CookTime     string      `json:"cookTime"`
	Difficulty   Difficulty  `json:"difficulty"`
	CuisineType  string      `json:"cuisineType"`
}

// MissingCount is the number of ingredients that have to be bought.
func (r Recipe) MissingCount() int {
	return len(r.Ingredients.Missing)
}
