package pipeline

// Units 單位系統
type Units string

const (
	UnitsMetric   Units = "metric"
	UnitsImperial Units = "imperial"
)

// Valid 檢查單位系統是否合法
func (u Units) Valid() bool {
	return u == UnitsMetric || u == UnitsImperial
}

// DishSuggestion 菜色建議
type DishSuggestion struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Recipe 生成的食譜
// 欄位名稱對應模型輸出的 JSON 鍵，不能更動
type Recipe struct {
	Ingredients   []string          `json:"ingredients"`
	Steps         []string          `json:"steps"`
	PrepTime      string            `json:"prep_time"`
	CookTime      string            `json:"cook_time"`
	Substitutions map[string]string `json:"substitutions"`
}

// GenerateOptions 食譜生成參數
type GenerateOptions struct {
	Servings    int
	ScaleFactor float64
	Units       Units
}
