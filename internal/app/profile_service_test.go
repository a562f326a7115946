package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/primary"
)

func intPtr(i int) *int { return &i }

func TestProfileService_Register(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.profiles.RegisterProfile(ctx, primary.RegisterProfileRequest{UserID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "UTC", p.Timezone)
	assert.Equal(t, 19, p.ActiveWindowStart)
	assert.Equal(t, 21, p.ActiveWindowEnd)
	assert.Zero(t, p.StreakCount)
	assert.Zero(t, p.PostagePoints)

	_, err = env.profiles.RegisterProfile(ctx, primary.RegisterProfileRequest{UserID: "alice"})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "duplicate")

	p, err = env.profiles.RegisterProfile(ctx, primary.RegisterProfileRequest{
		UserID: "bob", Timezone: "Asia/Tokyo", ActiveWindowStart: intPtr(22), ActiveWindowEnd: intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", p.Timezone)
	assert.Equal(t, 22, p.ActiveWindowStart)
}

func TestProfileService_RegisterRejects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  primary.RegisterProfileRequest
	}{
		{"missing user", primary.RegisterProfileRequest{}},
		{"bad timezone", primary.RegisterProfileRequest{UserID: "a", Timezone: "Mars/Olympus"}},
		{"bad hour", primary.RegisterProfileRequest{UserID: "a", ActiveWindowStart: intPtr(24)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.profiles.RegisterProfile(ctx, tt.req)
			assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
		})
	}
}

func TestProfileService_Pair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := env.profiles.RegisterProfile(ctx, primary.RegisterProfileRequest{UserID: id})
		require.NoError(t, err)
	}

	require.NoError(t, env.profiles.Pair(ctx, "alice", "bob"))
	assert.Equal(t, "bob", env.profile(t, "alice").PartnerID)
	assert.Equal(t, "alice", env.profile(t, "bob").PartnerID)

	// Re-pairing alice releases bob.
	require.NoError(t, env.profiles.Pair(ctx, "alice", "carol"))
	assert.Equal(t, "carol", env.profile(t, "alice").PartnerID)
	assert.Equal(t, "", env.profile(t, "bob").PartnerID)

	assert.True(t, apperr.Is(env.profiles.Pair(ctx, "alice", "alice"), apperr.KindValidation))
	assert.True(t, apperr.Is(env.profiles.Pair(ctx, "alice", "ghost"), apperr.KindNotFound))
}

func TestProfileService_PairWaitsForPreviousPartner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.pair(t, "alice", "bob")
	_, err := env.profiles.RegisterProfile(ctx, primary.RegisterProfileRequest{UserID: "carol"})
	require.NoError(t, err)

	// bob is busy, e.g. being credited a stamp.
	_, unlockBob := env.profiles.locks.Users.Lock(ctx, "bob")

	done := make(chan error, 1)
	go func() { done <- env.profiles.Pair(ctx, "alice", "carol") }()

	select {
	case err := <-done:
		unlockBob()
		t.Fatalf("re-pair finished while bob was locked: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, "alice", env.profile(t, "bob").PartnerID)

	unlockBob()
	require.NoError(t, <-done)
	assert.Equal(t, "carol", env.profile(t, "alice").PartnerID)
	assert.Equal(t, "", env.profile(t, "bob").PartnerID)
}

func TestProfileService_Unpair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.pair(t, "alice", "bob")

	require.NoError(t, env.profiles.Unpair(ctx, "bob"))
	assert.Equal(t, "", env.profile(t, "alice").PartnerID)
	assert.Equal(t, "", env.profile(t, "bob").PartnerID)

	assert.True(t, apperr.Is(env.profiles.Unpair(ctx, "bob"), apperr.KindValidation), "not paired")
	assert.True(t, apperr.Is(env.profiles.Unpair(ctx, "ghost"), apperr.KindNotFound))

	// Unpaired users cannot send letters.
	_, err := env.letters.SendLetter(ctx, primary.SendLetterRequest{SenderID: "alice", AudioRef: "a", DelayPreset: "1h"})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestProfileService_SetActiveWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.profiles.RegisterProfile(ctx, primary.RegisterProfileRequest{UserID: "alice", Timezone: "Europe/Paris"})
	require.NoError(t, err)

	require.NoError(t, env.profiles.SetActiveWindow(ctx, "alice", 6, 8, ""))
	p := env.profile(t, "alice")
	assert.Equal(t, 6, p.ActiveWindowStart)
	assert.Equal(t, 8, p.ActiveWindowEnd)
	assert.Equal(t, "Europe/Paris", p.Timezone)

	assert.True(t, apperr.Is(env.profiles.SetActiveWindow(ctx, "alice", -1, 8, ""), apperr.KindValidation))
	assert.True(t, apperr.Is(env.profiles.SetActiveWindow(ctx, "ghost", 6, 8, "UTC"), apperr.KindNotFound))
}
