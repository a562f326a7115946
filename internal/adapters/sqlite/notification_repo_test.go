package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vintagevoice/internal/adapters/sqlite"
	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

func TestNotificationOutbox_DeduplicatesEvents(t *testing.T) {
	db := setupTestDB(t)
	outbox := sqlite.NewNotificationOutbox(db, clock.NewFake(t0))
	ctx := context.Background()

	queue := func(queued bool, err error) bool {
		t.Helper()
		require.NoError(t, err)
		return queued
	}
	assert.True(t, queue(outbox.LetterDelivered(ctx, "bob", "LTR-1")))
	assert.False(t, queue(outbox.LetterDelivered(ctx, "bob", "LTR-1")), "duplicate is ignored")
	assert.True(t, queue(outbox.DailyPromptReady(ctx, "bob", "PR-1")))
	assert.True(t, queue(outbox.DailyPromptReady(ctx, "alice", "PR-1")))
	assert.False(t, queue(outbox.DailyPromptReady(ctx, "alice", "PR-1")), "duplicate is ignored")

	pending, err := outbox.ListPending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 3)

	kinds := map[string]int{}
	for _, n := range pending {
		kinds[n.Kind]++
		assert.True(t, n.CreatedAt.Equal(t0))
		assert.Nil(t, n.SentAt)
	}
	assert.Equal(t, 1, kinds[secondary.EventLetterDelivered])
	assert.Equal(t, 2, kinds[secondary.EventDailyPromptReady])
}

func TestNotificationOutbox_MarkSent(t *testing.T) {
	db := setupTestDB(t)
	outbox := sqlite.NewNotificationOutbox(db, clock.NewFake(t0))
	ctx := context.Background()

	_, err := outbox.LetterDelivered(ctx, "bob", "LTR-1")
	require.NoError(t, err)
	pending, err := outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "LTR-1", pending[0].SubjectID)

	require.NoError(t, outbox.MarkSent(ctx, pending[0].ID, t0.Add(time.Second)))

	pending, err = outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// Unknown or already-sent IDs are not pending.
	err = outbox.MarkSent(ctx, "missing", t0)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// Re-announcing a sent event does not queue it again.
	queued, err := outbox.LetterDelivered(ctx, "bob", "LTR-1")
	require.NoError(t, err)
	assert.False(t, queued)
	pending, err = outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
