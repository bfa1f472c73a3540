package session

import (
	"sync"
	"time"

	"recipe-suggester/internal/core/pipeline"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// Session 一次互動流程的中間狀態
// 每個階段寫入一次，下一階段讀取；不靠任何全域變數
type Session struct {
	ID          string                    `json:"id"`
	Ingredients []string                  `json:"ingredients"`
	Dishes      []pipeline.DishSuggestion `json:"dishes"`
	DishName    string                    `json:"dish_name,omitempty"`
	Recipe      *pipeline.Recipe          `json:"recipe,omitempty"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// Store 記憶體會話存放區
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
}

// NewStore 創建會話存放區，並啟動過期清理協程
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]Session),
		ttl:      ttl,
	}

	go s.startCleanup(cleanupInterval)

	common.LogInfo("會話存放區已初始化",
		zap.Duration("存活時間", ttl),
		zap.Duration("清理間隔", cleanupInterval),
	)

	return s
}

// Create 建立新會話
func (s *Store) Create() Session {
	sess := Session{
		ID:        common.GenerateUUID(),
		UpdatedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get 取得會話，過期或不存在時回傳 false
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	sess, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return Session{}, false
	}
	if time.Since(sess.UpdatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return Session{}, false
	}
	return sess, true
}

// Put 寫回更新後的會話
func (s *Store) Put(sess Session) {
	sess.UpdatedAt = time.Now()

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
}

// startCleanup 定期清除過期會話
func (s *Store) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		count := 0

		s.mu.Lock()
		for id, sess := range s.sessions {
			if now.Sub(sess.UpdatedAt) > s.ttl {
				delete(s.sessions, id)
				count++
			}
		}
		s.mu.Unlock()

		if count > 0 {
			common.LogInfo("已清除過期會話",
				zap.Int("count", count),
			)
		}
	}
}
