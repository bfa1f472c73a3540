package openrouter

import (
	"context"
	"fmt"
	"net/http"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const baseURL = "https://openrouter.ai/api/v1"

// Client OpenRouter API 客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Model     string    `json:"model"`
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string `json:"id"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.OpenRouter.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.OpenRouter.APIKey)).
		SetHeader("HTTP-Referer", "https://recipe-suggester.com").
		SetHeader("X-Title", "Recipe Suggester")

	return &Client{
		config: cfg,
		client: client,
	}
}

// GenerateText 發送 prompt 並取得模型輸出的文字
// 回傳內容不保證是合法 JSON，由呼叫端自行解析
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := &Request{
		Model: c.config.OpenRouter.Model,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: c.config.OpenRouter.MaxTokens,
	}

	common.LogInfo("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	var result Response
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/chat/completions")

	if err != nil {
		common.LogError("Failed to send request to AI service",
			zap.Error(err),
			zap.String("model", req.Model),
		)
		return "", common.NewError(common.ErrAIServiceError.Code, "AI 服務無法連線", http.StatusServiceUnavailable, err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", req.Model),
			zap.String("response", resp.String()),
		)
		return "", common.NewError(common.ErrAIServiceError.Code,
			fmt.Sprintf("AI 服務回傳錯誤狀態 %d", resp.StatusCode()),
			http.StatusServiceUnavailable,
			fmt.Errorf("AI service error (status %d): %s", resp.StatusCode(), resp.String()))
	}

	if len(result.Choices) == 0 {
		common.LogError("Empty choices in AI service response",
			zap.String("model", req.Model),
		)
		return "", common.NewError(common.ErrAIServiceError.Code, "AI 服務回傳空回應", http.StatusServiceUnavailable,
			fmt.Errorf("empty choices in response"))
	}

	content := result.Choices[0].Message.Content
	if len(content) == 0 {
		common.LogError("Empty content in AI service response",
			zap.String("model", req.Model),
		)
		return "", common.NewError(common.ErrAIServiceError.Code, "AI 服務回傳空內容", http.StatusServiceUnavailable,
			fmt.Errorf("empty content in response"))
	}

	common.LogInfo("Successfully generated response from AI service",
		zap.String("model", req.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return content, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
