package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokensentry/internal/models"
)

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	analysis := &models.Analysis{AnalysisID: "a1", TokenAddress: "mint", FinalScore: 72}
	key := models.CacheKey("mint", models.AnalysisQuick)

	_, ok := store.Get(ctx, key)
	assert.False(t, ok)

	store.Put(ctx, key, analysis, time.Minute)
	got, ok := store.Get(ctx, key)
	require.True(t, ok)
	assert.Equal(t, analysis, got)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := models.CacheKey("mint", models.AnalysisDeep)

	store.Put(ctx, key, &models.Analysis{AnalysisID: "a1"}, 10*time.Millisecond)
	_, ok := store.Get(ctx, key)
	require.True(t, ok)

	time.Sleep(25 * time.Millisecond)
	_, ok = store.Get(ctx, key)
	assert.False(t, ok)
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	key := "mint:quick"

	store.Put(ctx, key, &models.Analysis{AnalysisID: "a1"}, 0)
	_, ok := store.Get(ctx, key)
	assert.True(t, ok)
}

func TestKeysAreTypeScoped(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	store.Put(ctx, models.CacheKey("mint", models.AnalysisQuick), &models.Analysis{AnalysisID: "q"}, time.Minute)
	_, ok := store.Get(ctx, models.CacheKey("mint", models.AnalysisDeep))
	assert.False(t, ok, "quick and deep results must not collide")
}

func TestNewAutoFallsBackToMemory(t *testing.T) {
	store := NewAuto("")
	_, isMemory := store.(*memory)
	assert.True(t, isMemory)
}
