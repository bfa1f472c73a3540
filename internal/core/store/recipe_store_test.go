package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"recipe-suggester/internal/core/pipeline"
	"recipe-suggester/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

func testRecipe(dish string) SavedRecipe {
	return SavedRecipe{
		DishName: dish,
		SavedAt:  time.Now().UTC().Truncate(time.Second),
		Recipe: pipeline.Recipe{
			Ingredients:   []string{"500g chicken", "2 onions"},
			Steps:         []string{"Chop onions", "Cook chicken"},
			PrepTime:      "15 min",
			CookTime:      "30 min",
			Substitutions: map[string]string{"chicken": "tofu for vegetarian"},
		},
	}
}

func TestSaveToAbsentFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_recipes.json")
	s := NewRecipeStore(path)

	require.NoError(t, s.Save(testRecipe("First")))
	require.NoError(t, s.Save(testRecipe("Second")))

	recipes, err := s.List()
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	// 保存順序必須維持
	assert.Equal(t, "First", recipes[0].DishName)
	assert.Equal(t, "Second", recipes[1].DishName)
}

func TestSavePreservesExistingEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"a":1}]`), 0644))

	s := NewRecipeStore(path)
	require.NoError(t, s.Save(testRecipe("New Dish")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 2)

	// 舊記錄原樣保留在第一個位置
	var first map[string]int
	require.NoError(t, json.Unmarshal(entries[0], &first))
	assert.Equal(t, map[string]int{"a": 1}, first)

	var second SavedRecipe
	require.NoError(t, json.Unmarshal(entries[1], &second))
	assert.Equal(t, "New Dish", second.DishName)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_recipes.json")
	s := NewRecipeStore(path)

	original := testRecipe("Round Trip")
	require.NoError(t, s.Save(original))

	recipes, err := s.List()
	require.NoError(t, err)
	require.Len(t, recipes, 1)

	// 逐欄位相等
	assert.Equal(t, original.DishName, recipes[0].DishName)
	assert.Equal(t, original.Recipe, recipes[0].Recipe)
	assert.True(t, original.SavedAt.Equal(recipes[0].SavedAt))
}

func TestListAbsentFile(t *testing.T) {
	s := NewRecipeStore(filepath.Join(t.TempDir(), "missing.json"))

	recipes, err := s.List()

	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestSaveCorruptStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not": "an array"}`), 0644))

	s := NewRecipeStore(path)
	err := s.Save(testRecipe("Doomed"))

	assert.Error(t, err)
}

func TestListSkipsUnparsableEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved_recipes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"ingredients": "wrong type"}]`), 0644))

	s := NewRecipeStore(path)
	require.NoError(t, s.Save(testRecipe("Good")))

	recipes, err := s.List()
	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "Good", recipes[0].DishName)
}
