package app

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/example/vintagevoice/internal/adapters/persistence"
	"github.com/example/vintagevoice/internal/adapters/sqlite"
	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/config"
	"github.com/example/vintagevoice/internal/db"
	"github.com/example/vintagevoice/internal/logging"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// t0 is 20:00 UTC, inside the default 19..21 active window.
var t0 = time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

// Ensure mockBlobStore implements the interface
var _ secondary.BlobStore = (*mockBlobStore)(nil)

// mockBlobStore implements secondary.BlobStore for testing.
type mockBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deleted []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: make(map[string][]byte)}
}

func (m *mockBlobStore) Put(ctx context.Context, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "blob-" + time.Now().Format("150405.000000000")
	m.blobs[ref] = data
	return ref, nil
}

func (m *mockBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blobs[ref], nil
}

func (m *mockBlobStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, ref)
	m.deleted = append(m.deleted, ref)
	return nil
}

func (m *mockBlobStore) deletedRefs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// testEnv wires the services over an in-memory database, as wire does in production.
type testEnv struct {
	db       *sql.DB
	clock    *clock.Fake
	outbox   *sqlite.NotificationOutbox
	blobs    *mockBlobStore
	profiles *ProfileServiceImpl
	ledger   *LedgerServiceImpl
	letters  *LetterServiceImpl
	prompts  *PromptServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := db.Open(db.DriverCGo, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	clk := clock.NewFake(t0)
	locks := NewLocks()
	logger := logging.Discard()

	tx := sqlite.NewTransactor(conn)
	letterRepo := sqlite.NewLetterRepository(conn)
	profileRepo := sqlite.NewProfileRepository(conn)
	stampRepo := sqlite.NewStampRepository(conn)
	promptRepo := sqlite.NewPromptRepository(conn)
	outbox := sqlite.NewNotificationOutbox(conn, clk)
	blobs := newMockBlobStore()
	identity := persistence.NewIdentityProvider(profileRepo, "")

	ledger := NewLedgerService(tx, profileRepo, stampRepo, clk, locks, logger)
	letters := NewLetterService(tx, letterRepo, identity, ledger, outbox, blobs, clk, locks, logger)
	prompts := NewPromptService(tx, promptRepo, profileRepo, letterRepo, letters, ledger, outbox, clk, locks,
		config.DefaultPromptCatalog(), logger)

	return &testEnv{
		db:       conn,
		clock:    clk,
		outbox:   outbox,
		blobs:    blobs,
		profiles: NewProfileService(tx, profileRepo, clk, locks, logger),
		ledger:   ledger,
		letters:  letters,
		prompts:  prompts,
	}
}

// pair registers two users with default settings and pairs them.
func (e *testEnv) pair(t *testing.T, a, b string) {
	t.Helper()
	ctx := context.Background()
	for _, id := range []string{a, b} {
		_, err := e.profiles.RegisterProfile(ctx, primary.RegisterProfileRequest{UserID: id})
		require.NoError(t, err)
	}
	require.NoError(t, e.profiles.Pair(ctx, a, b))
}

// send sends a letter from sender to their partner.
func (e *testEnv) send(t *testing.T, sender, preset string) *primary.Letter {
	t.Helper()
	letter, err := e.letters.SendLetter(context.Background(), primary.SendLetterRequest{
		SenderID:    sender,
		AudioRef:    "audio-" + sender,
		DelayPreset: preset,
		Transcript:  "hello from " + sender,
	})
	require.NoError(t, err)
	return letter
}

// openedLetter sends a 1h letter from alice to bob and advances it to opened.
func (e *testEnv) openedLetter(t *testing.T) *primary.Letter {
	t.Helper()
	ctx := context.Background()
	letter := e.send(t, "alice", "1h")
	e.clock.Advance(time.Hour)
	_, err := e.letters.Deliver(ctx, letter.ID)
	require.NoError(t, err)
	opened, err := e.letters.MarkOpened(ctx, letter.ID)
	require.NoError(t, err)
	return opened
}

func (e *testEnv) profile(t *testing.T, userID string) *primary.Profile {
	t.Helper()
	p, err := e.profiles.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	return p
}

func (e *testEnv) stampsOfTier(t *testing.T, userID, tier string) int {
	t.Helper()
	stamps, err := e.ledger.ListStamps(context.Background(), userID)
	require.NoError(t, err)
	n := 0
	for _, s := range stamps {
		if s.Tier == tier {
			n++
		}
	}
	return n
}
