package pipeline

import (
	"context"

	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// TextGenerator 文字生成介面，由 AI 服務實作
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Service 三階段生成管線：標準化 → 建議 → 生成
// 每個階段獨立可呼叫，輸出作為下一階段的輸入
type Service struct {
	gen TextGenerator
}

// NewService 創建管線服務
func NewService(gen TextGenerator) *Service {
	return &Service{gen: gen}
}

// NormalizeIngredients 把自由文字食材標準化為乾淨的清單
// AI 服務錯誤會往上傳遞；回應解析失敗則降級為空清單
func (s *Service) NormalizeIngredients(ctx context.Context, rawText string) ([]string, error) {
	prompt := BuildNormalizePrompt(rawText)

	content, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ingredients, ok := TryParseField[[]string](content, "normalized_ingredients")
	if !ok {
		common.LogWarn("AI 回應非預期 JSON 形狀，標準化結果降級為空清單",
			zap.Int("content_length", len(content)),
		)
		return []string{}, nil
	}

	common.LogInfo("食材標準化完成",
		zap.Int("ingredient_count", len(ingredients)),
	)
	return ingredients, nil
}

// SuggestDishes 根據標準化食材清單建議 3-5 道菜
func (s *Service) SuggestDishes(ctx context.Context, ingredients []string) ([]DishSuggestion, error) {
	prompt := BuildSuggestPrompt(ingredients)

	content, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	dishes, ok := TryParseField[[]DishSuggestion](content, "dishes")
	if !ok {
		common.LogWarn("AI 回應非預期 JSON 形狀，菜色建議降級為空清單",
			zap.Int("content_length", len(content)),
		)
		return []DishSuggestion{}, nil
	}

	common.LogInfo("菜色建議完成",
		zap.Int("dish_count", len(dishes)),
	)
	return dishes, nil
}

// GenerateRecipe 為選定的菜色生成完整食譜
// 空的食材清單是合法輸入，只會讓模型自由發揮
func (s *Service) GenerateRecipe(ctx context.Context, dishName string, ingredients []string, opts GenerateOptions) (Recipe, error) {
	prompt := BuildGeneratePrompt(dishName, ingredients, opts)

	content, err := s.gen.GenerateText(ctx, prompt)
	if err != nil {
		return Recipe{}, err
	}

	recipe, ok := TryParseObject[Recipe](content)
	if !ok {
		common.LogWarn("AI 回應非預期 JSON 形狀，食譜降級為空記錄",
			zap.Int("content_length", len(content)),
		)
		return emptyRecipe(), nil
	}

	// 補上 nil 欄位，呼叫端永遠拿到可用的記錄
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Steps == nil {
		recipe.Steps = []string{}
	}
	if recipe.Substitutions == nil {
		recipe.Substitutions = map[string]string{}
	}

	common.LogInfo("食譜生成完成",
		zap.String("dish_name", dishName),
		zap.Int("step_count", len(recipe.Steps)),
	)
	return recipe, nil
}

// emptyRecipe 回傳所有欄位皆為空但結構完整的食譜
func emptyRecipe() Recipe {
	return Recipe{
		Ingredients:   []string{},
		Steps:         []string{},
		Substitutions: map[string]string{},
	}
}
