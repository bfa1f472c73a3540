package pipeline

import (
	"fmt"
	"strings"
)

// 三個階段的 prompt 組裝，全部是純函數：相同輸入必定產生相同文字
// 範例輸出只用來固定 JSON 形狀，模型不應直接複製內容

// BuildNormalizePrompt 組裝食材標準化的 prompt
func BuildNormalizePrompt(rawText string) string {
	return fmt.Sprintf(`Normalize the following user-provided ingredients into a clean, standardized list.
Handle ambiguities, synonyms, and quantities. Merge entries that refer to the same ingredient.
Output as JSON with key "normalized_ingredients" containing a list of strings.

Ingredients: %s

Example output:
{
    "normalized_ingredients": ["2 cups flour", "1 kg chicken breast", "3 onions"]
}`, rawText)
}

// BuildSuggestPrompt 組裝菜色建議的 prompt
func BuildSuggestPrompt(ingredients []string) string {
	return fmt.Sprintf(`Based on these ingredients: %s
Suggest 3-5 dish ideas that can be made with these or similar ingredients.
For each dish, provide a brief description and why it fits.
Output as JSON with key "dishes" containing a list of objects, each with "name" and "description".

Example output:
{
    "dishes": [
        {
            "name": "Chicken Stir Fry",
            "description": "A quick stir fry using chicken and vegetables."
        }
    ]
}`, strings.Join(ingredients, ", "))
}

// BuildGeneratePrompt 組裝完整食譜生成的 prompt
func BuildGeneratePrompt(dishName string, ingredients []string, opts GenerateOptions) string {
	return fmt.Sprintf(`Generate a full recipe for "%s" using these ingredients: %s
Provide an ingredients list, step-by-step instructions, prep time and cook time.
Scale for %d servings, adjust quantities by factor %g.
Use %s units (convert if needed).
Include options for substitutions.
Output as JSON with keys: "ingredients" (list of strings), "steps" (list of strings), "prep_time", "cook_time", "substitutions" (object mapping ingredient to alternatives).

Example output:
{
    "ingredients": ["500g chicken", "2 onions"],
    "steps": ["Chop onions", "Cook chicken"],
    "prep_time": "15 min",
    "cook_time": "30 min",
    "substitutions": {"chicken": "tofu for vegetarian"}
}`, dishName, strings.Join(ingredients, ", "), opts.Servings, opts.ScaleFactor, opts.Units)
}
