package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/primary"
)

func TestLedgerService_AwardStamp(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, "alice", "bob")
	ctx := context.Background()

	stamp, err := env.ledger.AwardStamp(ctx, primary.AwardStampRequest{UserID: "alice", Tier: "gold", DelayPreset: "1w"})
	require.NoError(t, err)
	assert.Equal(t, 5, stamp.Points)
	assert.True(t, stamp.EarnedAt.Equal(t0))

	alice := env.profile(t, "alice")
	assert.Equal(t, 5, alice.PostagePoints)
	assert.Equal(t, []string{stamp.ID}, alice.CollectedStamps)
	assert.Zero(t, alice.StreakCount, "non-spark stamps leave the streak alone")
	assert.Nil(t, alice.LastPromptAt)
}

func TestLedgerService_AwardStampRejects(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, "alice", "bob")
	ctx := context.Background()

	_, err := env.ledger.AwardStamp(ctx, primary.AwardStampRequest{UserID: "alice", Tier: "obsidian"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.ledger.AwardStamp(ctx, primary.AwardStampRequest{UserID: "alice", Tier: "spark"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = env.ledger.AwardStamp(ctx, primary.AwardStampRequest{UserID: "ghost", Tier: "gold"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	alice := env.profile(t, "alice")
	assert.Zero(t, alice.PostagePoints)
	assert.Empty(t, alice.CollectedStamps)
}

func TestLedgerService_ConcurrentSparkAwardsCollapse(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, "alice", "bob")
	ctx := context.Background()

	var awarded atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := env.ledger.AwardSpark(ctx, "alice", "PR-1", "")
			assert.NoError(t, err)
			if ok {
				awarded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), awarded.Load())
	alice := env.profile(t, "alice")
	assert.Equal(t, 3, alice.PostagePoints)
	assert.Len(t, alice.CollectedStamps, 1)
	assert.Equal(t, 1, alice.StreakCount)
	require.NotNil(t, alice.LastPromptAt)
	assert.True(t, alice.LastPromptAt.Equal(t0))
}

func TestLedgerService_Streak(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, "alice", "bob")
	ctx := context.Background()

	spark := func(promptID string) {
		t.Helper()
		ok, err := env.ledger.AwardSpark(ctx, "alice", promptID, "")
		require.NoError(t, err)
		require.True(t, ok)
	}

	spark("PR-1")

	// A second prompt answered later the same local day earns points, not streak.
	env.clock.Advance(time.Hour)
	spark("PR-2")
	alice := env.profile(t, "alice")
	assert.Equal(t, 1, alice.StreakCount)
	assert.Equal(t, 6, alice.PostagePoints)
	require.NotNil(t, alice.LastPromptAt)
	assert.True(t, alice.LastPromptAt.Equal(env.clock.Now()))

	env.clock.Advance(23 * time.Hour)
	spark("PR-3")
	assert.Equal(t, 2, env.profile(t, "alice").StreakCount)

	// Skipping a whole day restarts the streak.
	env.clock.Advance(48 * time.Hour)
	spark("PR-4")
	alice = env.profile(t, "alice")
	assert.Equal(t, 1, alice.StreakCount)
	assert.Equal(t, 12, alice.PostagePoints)
}

func TestLedgerService_ListStamps(t *testing.T) {
	env := newTestEnv(t)
	env.pair(t, "alice", "bob")
	ctx := context.Background()

	env.send(t, "alice", "1y")
	env.clock.Advance(time.Minute)
	_, err := env.ledger.AwardSpark(ctx, "alice", "PR-1", "")
	require.NoError(t, err)

	stamps, err := env.ledger.ListStamps(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stamps, 2)
	assert.Equal(t, "diamond", stamps[0].Tier)
	assert.Equal(t, 20, stamps[0].Points)
	assert.Equal(t, "1y", stamps[0].DelayPreset)
	assert.NotEmpty(t, stamps[0].LetterID)
	assert.Equal(t, "spark", stamps[1].Tier)
	assert.Equal(t, "PR-1", stamps[1].PromptID)
}
