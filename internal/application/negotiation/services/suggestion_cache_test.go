package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/application/negotiation/services"
	"github.com/yug-shah0106/accordo-engine/internal/domain/shared"
)

func TestSuggestionCache_PutAndGet(t *testing.T) {
	// Arrange
	clock := shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	cache := services.NewSuggestionCache(5*time.Minute, 100, clock)
	dealID := shared.NewID()

	// Act
	cache.Put(dealID, 2, []services.Suggestion{{Text: "counter at $900", Source: services.SuggestionSourceFallback}})
	got, ok := cache.Get(dealID, 2)

	// Assert
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "counter at $900", got[0].Text)

	_, ok = cache.Get(dealID, 3)
	assert.False(t, ok)
}

func TestSuggestionCache_TTLExpiry(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	cache := services.NewSuggestionCache(5*time.Minute, 100, clock)
	dealID := shared.NewID()
	cache.Put(dealID, 1, []services.Suggestion{{Text: "stale"}})

	clock.Advance(5*time.Minute + time.Second)

	_, ok := cache.Get(dealID, 1)
	assert.False(t, ok)
	// The expired entry was evicted on read
	assert.Zero(t, cache.Len())
}

func TestSuggestionCache_CapacityEvictsOldestInsertion(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	cache := services.NewSuggestionCache(time.Hour, 3, clock)
	ids := []shared.ID{shared.NewID(), shared.NewID(), shared.NewID(), shared.NewID()}

	for _, id := range ids {
		cache.Put(id, 1, []services.Suggestion{{Text: "s"}})
	}

	assert.Equal(t, 3, cache.Len())
	_, ok := cache.Get(ids[0], 1)
	assert.False(t, ok, "oldest insertion should have been evicted")
	_, ok = cache.Get(ids[3], 1)
	assert.True(t, ok)
}

func TestSuggestionCache_ReplaceDoesNotGrow(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	cache := services.NewSuggestionCache(time.Hour, 10, clock)
	dealID := shared.NewID()

	cache.Put(dealID, 1, []services.Suggestion{{Text: "first"}})
	cache.Put(dealID, 1, []services.Suggestion{{Text: "second"}})

	assert.Equal(t, 1, cache.Len())
	got, ok := cache.Get(dealID, 1)
	require.True(t, ok)
	assert.Equal(t, "second", got[0].Text)
}

func TestSuggestionCache_InvalidateDropsAllRoundsForDeal(t *testing.T) {
	clock := shared.NewMockClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	cache := services.NewSuggestionCache(time.Hour, 10, clock)
	target := shared.NewID()
	other := shared.NewID()
	cache.Put(target, 1, []services.Suggestion{{Text: "a"}})
	cache.Put(target, 2, []services.Suggestion{{Text: "b"}})
	cache.Put(other, 1, []services.Suggestion{{Text: "c"}})

	cache.Invalidate(target)

	_, ok := cache.Get(target, 1)
	assert.False(t, ok)
	_, ok = cache.Get(target, 2)
	assert.False(t, ok)
	_, ok = cache.Get(other, 1)
	assert.True(t, ok)
}
