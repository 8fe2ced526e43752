package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yug-shah0106/accordo-engine/internal/adapters/persistence"
	"github.com/yug-shah0106/accordo-engine/test/helpers"
)

func TestGormNegotiationLogRepository_AppendAndList(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	repo := persistence.NewGormNegotiationLogRepository(db, clock)
	d := seedDeal(t, db, clock)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, d.ID(), "INFO", "round completed", map[string]interface{}{
		"round":   1.0,
		"action":  "COUNTER",
		"utility": 0.52,
	}))
	require.NoError(t, repo.Append(ctx, d.ID(), "WARN", "llm timeout, template fallback used", nil))

	// Act
	entries, err := repo.ListByDeal(ctx, d.ID())

	// Assert - oldest first
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "INFO", entries[0].Level)
	assert.Equal(t, "round completed", entries[0].Message)
	assert.Equal(t, "COUNTER", entries[0].Metadata["action"])
	assert.Equal(t, 0.52, entries[0].Metadata["utility"])
	assert.NotEmpty(t, entries[0].Timestamp)
	assert.Equal(t, "WARN", entries[1].Level)
	assert.Nil(t, entries[1].Metadata)
}

func TestGormNegotiationLogRepository_ListUnknownDealIsEmpty(t *testing.T) {
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	repo := persistence.NewGormNegotiationLogRepository(db, clock)
	d := seedDeal(t, db, clock)

	entries, err := repo.ListByDeal(context.Background(), d.ID())

	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDealLogWriter_WritesRowsForItsDeal(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	clock := fixtureClock()
	repo := persistence.NewGormNegotiationLogRepository(db, clock)
	d := seedDeal(t, db, clock)
	other := seedDeal(t, db, clock)
	writer := persistence.NewDealLogWriter(repo, d.ID())

	// Act
	writer.Log("INFO", "vendor message received", map[string]interface{}{"round": 2.0})
	writer.Log("ERROR", "notification dispatch failed", nil)

	// Assert - rows land under the bound deal only
	entries, err := repo.ListByDeal(context.Background(), d.ID())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "vendor message received", entries[0].Message)

	otherEntries, err := repo.ListByDeal(context.Background(), other.ID())
	require.NoError(t, err)
	assert.Empty(t, otherEntries)
}
