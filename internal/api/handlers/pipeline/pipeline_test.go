package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	corePipeline "recipe-suggester/internal/core/pipeline"
	"recipe-suggester/internal/core/session"
	"recipe-suggester/internal/core/store"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	common.Logger = zap.NewNop()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// scriptedGenerator 依序回傳預先準備的回應
type scriptedGenerator struct {
	responses []string
	err       error
	calls     int
}

func (g *scriptedGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	resp := g.responses[g.calls%len(g.responses)]
	g.calls++
	return resp, nil
}

func newTestRouter(t *testing.T, gen corePipeline.TextGenerator) (*gin.Engine, *store.RecipeStore) {
	t.Helper()

	recipeStore := store.NewRecipeStore(filepath.Join(t.TempDir(), "saved_recipes.json"))
	handler := NewHandler(
		corePipeline.NewService(gen),
		session.NewStore(time.Hour, time.Hour),
		recipeStore,
	)

	router := gin.New()
	router.POST("/api/v1/pipeline/normalize", handler.HandleNormalize)
	router.POST("/api/v1/pipeline/suggest", handler.HandleSuggest)
	router.POST("/api/v1/pipeline/generate", handler.HandleGenerate)
	router.POST("/api/v1/recipes", handler.HandleSaveRecipe)
	router.GET("/api/v1/recipes", handler.HandleListRecipes)
	return router, recipeStore
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFullPipelineFlow(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"normalized_ingredients": ["500g chicken", "2 onions"]}`,
		`{"dishes": [{"name": "Chicken Stir Fry", "description": "A quick stir fry."}]}`,
		`{"ingredients": ["500g chicken"], "steps": ["Cook it"], "prep_time": "15 min", "cook_time": "30 min", "substitutions": {}}`,
	}}
	router, _ := newTestRouter(t, gen)

	// 階段一：標準化
	w := doJSON(t, router, http.MethodPost, "/api/v1/pipeline/normalize", gin.H{
		"ingredients_text": "chicken, a couple onions",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var norm NormalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &norm))
	require.NotEmpty(t, norm.SessionID)
	assert.Equal(t, []string{"500g chicken", "2 onions"}, norm.NormalizedIngredients)

	// 階段二：建議
	w = doJSON(t, router, http.MethodPost, "/api/v1/pipeline/suggest", gin.H{
		"session_id": norm.SessionID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var sugg SuggestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sugg))
	require.Len(t, sugg.Dishes, 1)

	// 階段三：生成
	w = doJSON(t, router, http.MethodPost, "/api/v1/pipeline/generate", gin.H{
		"session_id":   norm.SessionID,
		"dish_name":    sugg.Dishes[0].Name,
		"servings":     4,
		"scale_factor": 1.0,
		"units":        "metric",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var genResp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &genResp))
	assert.Equal(t, "Chicken Stir Fry", genResp.DishName)
	assert.Equal(t, []string{"Cook it"}, genResp.Recipe.Steps)

	// 保存並讀回
	w = doJSON(t, router, http.MethodPost, "/api/v1/recipes", gin.H{
		"session_id": norm.SessionID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Recipes []store.SavedRecipe `json:"recipes"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Chicken Stir Fry", list.Recipes[0].DishName)
	assert.Equal(t, genResp.Recipe, list.Recipes[0].Recipe)
}

func TestSuggestWithoutNormalize(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{}`}}
	router, _ := newTestRouter(t, gen)

	// 先手動建會話：normalize 回傳空結果仍算階段已執行
	w := doJSON(t, router, http.MethodPost, "/api/v1/pipeline/suggest", gin.H{
		"session_id": "unknown",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGenerateValidation(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"normalized_ingredients": ["rice"]}`}}
	router, _ := newTestRouter(t, gen)

	w := doJSON(t, router, http.MethodPost, "/api/v1/pipeline/normalize", gin.H{
		"ingredients_text": "rice",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var norm NormalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &norm))

	// servings 必須 >= 1
	w = doJSON(t, router, http.MethodPost, "/api/v1/pipeline/generate", gin.H{
		"session_id":   norm.SessionID,
		"dish_name":    "Fried Rice",
		"servings":     0,
		"scale_factor": 1.0,
		"units":        "metric",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// units 只接受 metric / imperial
	w = doJSON(t, router, http.MethodPost, "/api/v1/pipeline/generate", gin.H{
		"session_id":   norm.SessionID,
		"dish_name":    "Fried Rice",
		"servings":     2,
		"scale_factor": 1.0,
		"units":        "cups",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestServiceErrorPropagates(t *testing.T) {
	gen := &scriptedGenerator{err: common.ErrAIServiceError}
	router, _ := newTestRouter(t, gen)

	w := doJSON(t, router, http.MethodPost, "/api/v1/pipeline/normalize", gin.H{
		"ingredients_text": "chicken",
	})

	// 服務錯誤以行內訊息回報，不會讓會話或程序崩潰
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "AI_SERVICE_ERROR")
}

func TestSaveWithoutRecipe(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{`{"normalized_ingredients": []}`}}
	router, _ := newTestRouter(t, gen)

	w := doJSON(t, router, http.MethodPost, "/api/v1/pipeline/normalize", gin.H{
		"ingredients_text": "nothing useful",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var norm NormalizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &norm))

	w = doJSON(t, router, http.MethodPost, "/api/v1/recipes", gin.H{
		"session_id": norm.SessionID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}
