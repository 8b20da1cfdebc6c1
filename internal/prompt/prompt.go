// Package prompt holds the instructions sent to the vision and text models.
package prompt

import (
	"fmt"
	"strings"

	"fridgechef/internal/pantry"
)

// Ingredients asks the vision model to inventory a fridge photo.
const Ingredients = `Analyze this image of food items. For each food item you detect, provide:
1. The name of the food item
2. An estimated quantity (e.g., '2 apples', '1 liter of milk')
3. Your confidence level in the detection (0-1)
4. Freshness: one of "fresh", "ripe", "overripe", "spoiled"
5. estimatedExpiryDays: whole number of days until the item should be used
6. Category: one of "produce", "dairy", "protein", "pantry", "condiment"
7. nutritionalInfo per serving: servingSize (text), calories, protein, carbs and fat (grams)

Format the response as a JSON object with an 'ingredients' array. If you detect multiple
varieties of the same item (like different colored bell peppers), list each as a separate
ingredient. If you cannot see any food, say so in plain words instead of returning JSON.

Example response format:
{
  "ingredients": [
    {
      "name": "Red Bell Pepper",
      "estimated_quantity": "2 pieces",
      "confidence": 0.95,
      "freshness": "fresh",
      "estimatedExpiryDays": 7,
      "category": "produce",
      "nutritionalInfo": {"servingSize": "1 pepper", "calories": 37, "protein": 1.2, "carbs": 7, "fat": 0.4}
    }
  ]
}`

// ShoppingList asks the text model for complementary grocery items.
func ShoppingList(ingredients []pantry.Ingredient) string {
	parts := make([]string, len(ingredients))
	for i, ing := range ingredients {
		parts[i] = fmt.Sprintf("%s (%s)", ing.Name, ing.Category)
	}

	return fmt.Sprintf(`Based on these detected fridge items: [%s], suggest 8-12 complementary grocery items that would enable making complete meals. Consider common recipes and missing staples. Use only the categories produce, dairy, protein, pantry and condiment. Exclude items already detected.

IMPORTANT: You must respond with ONLY a JSON object. Do not include any other text.

Format the response exactly as:
{
  "suggestions": [
    {"item": "Onions", "category": "produce", "reason": "Essential base for most savory dishes"},
    {"item": "Milk", "category": "dairy", "reason": "Basic cooking and drinking staple"}
  ]
}`, strings.Join(parts, ", "))
}

// Recipes asks the text model for recipes built around the available names.
func Recipes(names []string) string {
	return fmt.Sprintf(`Based on these available ingredients: [%s], suggest 3-5 recipes that can be made primarily with these items. For each recipe provide:
- Recipe name
- All ingredients needed (mark which ones are missing from the available list)
- Step-by-step instructions (5-8 steps max)
- Prep time and cook time
- Difficulty level (Easy/Medium/Hard)
- Cuisine type

Format as JSON with this structure:
{
  "recipes": [
    {
      "name": "Recipe Name",
      "ingredients": {"available": ["ingredient1"], "missing": ["ingredient2"]},
      "instructions": ["step1", "step2"],
      "prepTime": "15 minutes",
      "cookTime": "30 minutes",
      "difficulty": "Easy",
      "cuisineType": "Italian"
    }
  ]
}

IMPORTANT: You must respond with ONLY a JSON object. Do not include any other text or explanations.`, strings.Join(names, ", "))
}
