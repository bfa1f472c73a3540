package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/openrouter"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"
)

// Response AI 回應結構
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務
// 在 OpenRouter 客戶端之上加入快取與最小請求間隔
type Service struct {
	config       *config.Config
	client       *openrouter.Client
	cacheManager *cache.CacheManager
	mu           sync.Mutex
	lastRequest  time.Time
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) (*Service, error) {
	return &Service{
		config:       cfg,
		client:       openrouter.NewClient(cfg),
		cacheManager: cacheManager,
	}, nil
}

// GenerateText 發送 prompt 並取得模型輸出文字
func (s *Service) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := s.waitRequestInterval(ctx); err != nil {
		return "", err
	}

	// 統一 prompt 空白格式，確保快取 key 一致
	normalized := normalizePrompt(prompt)

	// 檢查緩存（用 cacheManager）
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, normalized); err == nil && val != "" {
			return val, nil
		}
	}

	start := time.Now()
	content, err := s.client.GenerateText(ctx, normalized)
	common.LogAICall(normalized, time.Since(start), err, "")
	if err != nil {
		return "", err
	}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, normalized, content)
	}

	return content, nil
}

// waitRequestInterval 保證兩次請求之間的最小間隔
func (s *Service) waitRequestInterval(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config.OpenRouter.MinInterval <= 0 {
		s.lastRequest = time.Now()
		return nil
	}

	elapsed := time.Since(s.lastRequest)
	if wait := s.config.OpenRouter.MinInterval - elapsed; wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.lastRequest = time.Now()
	return nil
}

// normalizePrompt 去除多餘空白、tab、換行，合併連續空白為一格
func normalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(prompt)), " ")
}

// Close 關閉 AI 服務
func (s *Service) Close() error {
	return s.client.Close()
}
