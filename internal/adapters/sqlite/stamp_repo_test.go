package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vintagevoice/internal/adapters/sqlite"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

func TestStampRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStampRepository(db)
	ctx := context.Background()

	seedProfile(t, db, "alice", "")

	require.NoError(t, repo.Create(ctx, &secondary.StampRecord{
		ID: "STP-1", UserID: "alice", Tier: "silver", EarnedAt: t0, DelayPreset: "1d", LetterID: "LTR-1",
	}))
	require.NoError(t, repo.Create(ctx, &secondary.StampRecord{
		ID: "STP-2", UserID: "alice", Tier: "spark", EarnedAt: t0.Add(time.Minute), PromptID: "PR-1", LetterID: "LTR-2",
	}))

	stamps, err := repo.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stamps, 2)
	assert.Equal(t, "silver", stamps[0].Tier)
	assert.Equal(t, "1d", stamps[0].DelayPreset)
	assert.Equal(t, "", stamps[0].PromptID)
	assert.Equal(t, "spark", stamps[1].Tier)
	assert.Equal(t, "PR-1", stamps[1].PromptID)

	none, err := repo.ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStampRepository_RejectsUnknownTierAndUser(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStampRepository(db)
	ctx := context.Background()
	seedProfile(t, db, "alice", "")

	assert.Error(t, repo.Create(ctx, &secondary.StampRecord{ID: "STP-1", UserID: "alice", Tier: "obsidian", EarnedAt: t0}))
	assert.Error(t, repo.Create(ctx, &secondary.StampRecord{ID: "STP-2", UserID: "ghost", Tier: "gold", EarnedAt: t0}))
}

func TestStampRepository_HasPromptStamp(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStampRepository(db)
	ctx := context.Background()
	seedProfile(t, db, "alice", "")

	has, err := repo.HasPromptStamp(ctx, "alice", "PR-1", "spark")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.Create(ctx, &secondary.StampRecord{ID: "STP-1", UserID: "alice", Tier: "spark", EarnedAt: t0, PromptID: "PR-1"}))

	has, err = repo.HasPromptStamp(ctx, "alice", "PR-1", "spark")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = repo.HasPromptStamp(ctx, "alice", "PR-2", "spark")
	require.NoError(t, err)
	assert.False(t, has)
}
