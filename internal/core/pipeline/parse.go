package pipeline

import (
	"encoding/json"

	"recipe-suggester/internal/pkg/common"
)

// 模型輸出是不受信任的自由文字，不保證是合法 JSON
// 解析失敗一律降級為呼叫端提供的預設值，絕不回傳錯誤

// TryParseField 嘗試解析回應文字中指定欄位的值
// 回傳 false 表示解析失敗（非 JSON、頂層不是物件、欄位不存在、型別不符）
func TryParseField[T any](raw, field string) (T, bool) {
	var out T

	content := common.ExtractJSONObject(raw)

	var obj map[string]json.RawMessage
	if err := common.ParseJSON(content, &obj); err != nil {
		return out, false
	}

	fieldRaw, exists := obj[field]
	if !exists {
		return out, false
	}

	if err := json.Unmarshal(fieldRaw, &out); err != nil {
		var zero T
		return zero, false
	}

	return out, true
}

// ParseField 解析回應文字中指定欄位的值，任何失敗都回傳 fallback
func ParseField[T any](raw, field string, fallback T) T {
	if val, ok := TryParseField[T](raw, field); ok {
		return val
	}
	return fallback
}

// TryParseObject 嘗試把整個回應文字解析為指定型別
func TryParseObject[T any](raw string) (T, bool) {
	var out T

	content := common.ExtractJSONObject(raw)
	if err := common.ParseJSON(content, &out); err != nil {
		var zero T
		return zero, false
	}

	return out, true
}

// ParseObject 把整個回應文字解析為指定型別，任何失敗都回傳 fallback
func ParseObject[T any](raw string, fallback T) T {
	if val, ok := TryParseObject[T](raw); ok {
		return val
	}
	return fallback
}
