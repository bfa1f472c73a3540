package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"recipe-suggester/internal/core/pipeline"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// SavedRecipe 保存的食譜記錄
type SavedRecipe struct {
	DishName string    `json:"dish_name,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
	pipeline.Recipe
}

// RecipeStore 以單一 JSON 陣列檔保存食譜
// 單人使用情境：只有程序內互斥鎖，沒有跨程序檔案鎖或原子替換
type RecipeStore struct {
	path string
	mu   sync.Mutex
}

// NewRecipeStore 創建食譜存放區
func NewRecipeStore(path string) *RecipeStore {
	return &RecipeStore{path: path}
}

// Save 追加一筆食譜：讀出既有陣列、附加新記錄、整個檔案重寫
// 檔案不存在視為空陣列；既有記錄原樣保留，即使形狀與 SavedRecipe 不同
func (s *RecipeStore) Save(rec SavedRecipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadRaw()
	if err != nil {
		return err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}
	entries = append(entries, data)

	out, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal recipe list: %w", err)
	}

	if err := os.WriteFile(s.path, out, 0644); err != nil {
		return fmt.Errorf("failed to write recipe store: %w", err)
	}

	common.LogInfo("食譜已保存",
		zap.String("path", s.path),
		zap.String("dish_name", rec.DishName),
		zap.Int("total", len(entries)),
	)
	return nil
}

// List 讀出所有已保存的食譜，檔案不存在時回傳空清單
func (s *RecipeStore) List() ([]SavedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.loadRaw()
	if err != nil {
		return nil, err
	}

	recipes := make([]SavedRecipe, 0, len(entries))
	for _, entry := range entries {
		var rec SavedRecipe
		if err := json.Unmarshal(entry, &rec); err != nil {
			// 舊格式或外部寫入的記錄，跳過但不失敗
			common.LogWarn("略過無法解析的食譜記錄",
				zap.String("path", s.path),
				zap.Error(err),
			)
			continue
		}
		recipes = append(recipes, rec)
	}
	return recipes, nil
}

// loadRaw 讀出檔案中的原始 JSON 陣列，呼叫前必須持有鎖
func (s *RecipeStore) loadRaw() ([]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read recipe store: %w", err)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("recipe store is not a JSON array: %w", err)
	}
	return entries, nil
}
