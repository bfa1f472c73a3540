package pipeline

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNormalizePromptDeterministic(t *testing.T) {
	raw := "2 eggs, some flour, chicken"

	first := BuildNormalizePrompt(raw)
	second := BuildNormalizePrompt(raw)

	assert.Equal(t, first, second)
	assert.Contains(t, first, raw)
	assert.Contains(t, first, `"normalized_ingredients"`)
	// 範例輸出必須存在，用來固定 JSON 形狀
	assert.Contains(t, first, "Example output")
}

func TestBuildSuggestPromptContainsAllIngredients(t *testing.T) {
	ingredients := []string{"500g chicken", "2 onions", "1 cup rice"}

	prompt := BuildSuggestPrompt(ingredients)

	for _, ing := range ingredients {
		assert.Contains(t, prompt, ing)
	}
	assert.Contains(t, prompt, `"dishes"`)
	assert.Contains(t, prompt, `"name"`)
	assert.Contains(t, prompt, `"description"`)
	assert.Equal(t, prompt, BuildSuggestPrompt(ingredients))
}

func TestBuildGeneratePromptContainsParameters(t *testing.T) {
	ingredients := []string{"500g chicken", "2 onions"}
	opts := GenerateOptions{Servings: 4, ScaleFactor: 1.5, Units: UnitsImperial}

	prompt := BuildGeneratePrompt("Chicken Stir Fry", ingredients, opts)

	assert.Contains(t, prompt, "Chicken Stir Fry")
	for _, ing := range ingredients {
		assert.Contains(t, prompt, ing)
	}
	assert.Contains(t, prompt, "4 servings")
	assert.Contains(t, prompt, "1.5")
	assert.Contains(t, prompt, "imperial units")

	// 模型輸出的鍵名必須逐字出現
	for _, key := range []string{`"ingredients"`, `"steps"`, `"prep_time"`, `"cook_time"`, `"substitutions"`} {
		assert.Contains(t, prompt, key)
	}
}

func TestBuildGeneratePromptEmptyIngredients(t *testing.T) {
	prompt := BuildGeneratePrompt("Omelette", nil, GenerateOptions{Servings: 1, ScaleFactor: 1, Units: UnitsMetric})

	assert.Contains(t, prompt, "Omelette")
	assert.Contains(t, prompt, "metric units")
	assert.False(t, strings.Contains(prompt, "%!"), "prompt should not contain formatting artifacts")
}

func TestUnitsValid(t *testing.T) {
	assert.True(t, UnitsMetric.Valid())
	assert.True(t, UnitsImperial.Valid())
	assert.False(t, Units("stone").Valid())
	assert.False(t, Units("").Valid())
}
