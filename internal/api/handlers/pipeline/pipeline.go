package pipeline

import (
	"errors"
	"net/http"
	"time"

	corePipeline "recipe-suggester/internal/core/pipeline"
	"recipe-suggester/internal/core/session"
	"recipe-suggester/internal/core/store"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NormalizeRequest 食材標準化請求
type NormalizeRequest struct {
	SessionID       string `json:"session_id,omitempty"`                // 省略時建立新會話
	IngredientsText string `json:"ingredients_text" binding:"required"` // 使用者輸入的自由文字食材
}

// NormalizeResponse 食材標準化響應
type NormalizeResponse struct {
	SessionID             string   `json:"session_id"`
	NormalizedIngredients []string `json:"normalized_ingredients"`
}

// SuggestRequest 菜色建議請求
type SuggestRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// SuggestResponse 菜色建議響應
type SuggestResponse struct {
	SessionID string                        `json:"session_id"`
	Dishes    []corePipeline.DishSuggestion `json:"dishes"`
}

// GenerateRequest 食譜生成請求
type GenerateRequest struct {
	SessionID   string  `json:"session_id" binding:"required"`
	DishName    string  `json:"dish_name" binding:"required"`                   // 選定的菜色名稱
	Servings    int     `json:"servings" binding:"required,min=1"`              // 份量，至少 1 人份
	ScaleFactor float64 `json:"scale_factor" binding:"required,gt=0"`           // 食材數量倍率
	Units       string  `json:"units" binding:"required,oneof=metric imperial"` // 單位系統
}

// GenerateResponse 食譜生成響應
type GenerateResponse struct {
	SessionID string              `json:"session_id"`
	DishName  string              `json:"dish_name"`
	Recipe    corePipeline.Recipe `json:"recipe"`
}

// SaveRequest 食譜保存請求
type SaveRequest struct {
	SessionID string `json:"session_id" binding:"required"`
}

// Handler 生成管線處理程序
// 會話狀態由這裡讀出、傳入管線、寫回，不依賴任何全域狀態
type Handler struct {
	pipeline    *corePipeline.Service
	sessions    *session.Store
	recipeStore *store.RecipeStore
}

// NewHandler 創建管線處理程序
func NewHandler(p *corePipeline.Service, sessions *session.Store, recipeStore *store.RecipeStore) *Handler {
	return &Handler{
		pipeline:    p,
		sessions:    sessions,
		recipeStore: recipeStore,
	}
}

// HandleNormalize 標準化自由文字食材，寫入會話
func (h *Handler) HandleNormalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	// 取得或建立會話
	var sess session.Session
	if req.SessionID != "" {
		var ok bool
		sess, ok = h.sessions.Get(req.SessionID)
		if !ok {
			c.JSON(common.ErrSessionNotFound.Status, gin.H{"error": common.ErrSessionNotFound.Message, "code": common.ErrSessionNotFound.Code})
			return
		}
	} else {
		sess = h.sessions.Create()
	}

	ingredients, err := h.pipeline.NormalizeIngredients(c.Request.Context(), req.IngredientsText)
	if err != nil {
		respondServiceError(c, err, "食材標準化失敗")
		return
	}

	// 上游結果更新後，下游階段的舊結果一併作廢
	sess.Ingredients = ingredients
	sess.Dishes = nil
	sess.Recipe = nil
	sess.DishName = ""
	h.sessions.Put(sess)

	c.JSON(http.StatusOK, NormalizeResponse{
		SessionID:             sess.ID,
		NormalizedIngredients: ingredients,
	})
}

// HandleSuggest 根據會話中的標準化食材建議菜色
func (h *Handler) HandleSuggest(c *gin.Context) {
	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		c.JSON(common.ErrSessionNotFound.Status, gin.H{"error": common.ErrSessionNotFound.Message, "code": common.ErrSessionNotFound.Code})
		return
	}

	// 標準化階段尚未產生結果時，下游維持不可用
	if sess.Ingredients == nil {
		c.JSON(common.ErrMissingStage.Status, gin.H{"error": "請先執行食材標準化", "code": common.ErrMissingStage.Code})
		return
	}

	dishes, err := h.pipeline.SuggestDishes(c.Request.Context(), sess.Ingredients)
	if err != nil {
		respondServiceError(c, err, "菜色建議失敗")
		return
	}

	sess.Dishes = dishes
	sess.Recipe = nil
	sess.DishName = ""
	h.sessions.Put(sess)

	c.JSON(http.StatusOK, SuggestResponse{
		SessionID: sess.ID,
		Dishes:    dishes,
	})
}

// HandleGenerate 為選定的菜色生成完整食譜
func (h *Handler) HandleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		c.JSON(common.ErrSessionNotFound.Status, gin.H{"error": common.ErrSessionNotFound.Message, "code": common.ErrSessionNotFound.Code})
		return
	}

	if sess.Ingredients == nil {
		c.JSON(common.ErrMissingStage.Status, gin.H{"error": "請先執行食材標準化", "code": common.ErrMissingStage.Code})
		return
	}

	opts := corePipeline.GenerateOptions{
		Servings:    req.Servings,
		ScaleFactor: req.ScaleFactor,
		Units:       corePipeline.Units(req.Units),
	}

	recipe, err := h.pipeline.GenerateRecipe(c.Request.Context(), req.DishName, sess.Ingredients, opts)
	if err != nil {
		respondServiceError(c, err, "食譜生成失敗")
		return
	}

	sess.Recipe = &recipe
	sess.DishName = req.DishName
	h.sessions.Put(sess)

	c.JSON(http.StatusOK, GenerateResponse{
		SessionID: sess.ID,
		DishName:  req.DishName,
		Recipe:    recipe,
	})
}

// HandleSaveRecipe 把會話中最新生成的食譜追加到存放檔
func (h *Handler) HandleSaveRecipe(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format", "code": common.ErrCodeInvalidRequest})
		return
	}

	sess, ok := h.sessions.Get(req.SessionID)
	if !ok {
		c.JSON(common.ErrSessionNotFound.Status, gin.H{"error": common.ErrSessionNotFound.Message, "code": common.ErrSessionNotFound.Code})
		return
	}

	if sess.Recipe == nil {
		c.JSON(common.ErrMissingStage.Status, gin.H{"error": "尚未生成食譜", "code": common.ErrMissingStage.Code})
		return
	}

	rec := store.SavedRecipe{
		DishName: sess.DishName,
		SavedAt:  time.Now(),
		Recipe:   *sess.Recipe,
	}
	if err := h.recipeStore.Save(rec); err != nil {
		common.LogError("食譜保存失敗",
			zap.Error(err),
			zap.String("session_id", sess.ID),
		)
		c.JSON(common.ErrStoreFailure.Status, gin.H{"error": common.ErrStoreFailure.Message, "code": common.ErrStoreFailure.Code})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"saved":      true,
	})
}

// HandleListRecipes 讀出所有已保存的食譜
func (h *Handler) HandleListRecipes(c *gin.Context) {
	recipes, err := h.recipeStore.List()
	if err != nil {
		common.LogError("讀取食譜存放檔失敗", zap.Error(err))
		c.JSON(common.ErrStoreFailure.Status, gin.H{"error": common.ErrStoreFailure.Message, "code": common.ErrStoreFailure.Code})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipes": recipes,
		"count":   len(recipes),
	})
}

// respondServiceError 把 AI 服務錯誤轉為行內錯誤訊息
// 不自動重試，由使用者決定是否重新觸發
func respondServiceError(c *gin.Context, err error, msg string) {
	common.LogError(msg,
		zap.Error(err),
		zap.String("request_id", c.GetHeader("X-Request-ID")),
	)

	var ce *common.CustomError
	if errors.As(err, &ce) {
		c.JSON(ce.Status, gin.H{"error": ce.Message, "code": ce.Code})
		return
	}
	c.JSON(common.ErrAIServiceError.Status, gin.H{"error": common.ErrAIServiceError.Message, "code": common.ErrAIServiceError.Code})
}
