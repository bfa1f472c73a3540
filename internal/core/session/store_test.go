package session

import (
	"os"
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

func TestCreateAndGet(t *testing.T) {
	s := NewStore(time.Hour, time.Hour)

	sess := s.Create()
	assert.NotEmpty(t, sess.ID)

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.ID, got.ID)
	assert.Nil(t, got.Ingredients)
}

func TestGetUnknownSession(t *testing.T) {
	s := NewStore(time.Hour, time.Hour)

	_, ok := s.Get("no-such-id")
	assert.False(t, ok)
}

func TestPutThreadsStageResults(t *testing.T) {
	s := NewStore(time.Hour, time.Hour)
	sess := s.Create()

	sess.Ingredients = []string{"500g chicken"}
	sess.Dishes = []pipeline.DishSuggestion{{Name: "Stir Fry", Description: "Quick dinner."}}
	s.Put(sess)

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, []string{"500g chicken"}, got.Ingredients)
	require.Len(t, got.Dishes, 1)
	assert.Equal(t, "Stir Fry", got.Dishes[0].Name)
}

func TestSessionExpiry(t *testing.T) {
	s := NewStore(10*time.Millisecond, time.Hour)
	sess := s.Create()

	time.Sleep(30 * time.Millisecond)

	_, ok := s.Get(sess.ID)
	assert.False(t, ok)
}
