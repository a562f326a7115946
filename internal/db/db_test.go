package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Drivers(t *testing.T) {
	for _, driver := range []string{DriverCGo, DriverPure} {
		t.Run(driver, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "vv.db")

			conn, err := Open(driver, path)
			require.NoError(t, err)
			t.Cleanup(func() { conn.Close() })

			var version int
			require.NoError(t, conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version))
			assert.Equal(t, SchemaVersion, version)

			// Re-initialising an existing database is harmless.
			require.NoError(t, InitSchema(conn))

			var tables int
			require.NoError(t, conn.QueryRow(
				"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('letters','profiles','stamps','prompts','notifications')",
			).Scan(&tables))
			assert.Equal(t, 5, tables)
		})
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", ":memory:")
	assert.Error(t, err)
}

func TestSchema_EnforcesLetterInvariants(t *testing.T) {
	conn, err := Open(DriverCGo, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	// purged letters must have an empty audio ref
	_, err = conn.Exec(`INSERT INTO letters (id, sender_id, recipient_id, audio_ref, delay_preset, created_at, deliver_at, status, opened_at)
		VALUES ('L1', 'a', 'b', 'blob', '1h', 1, 2, 'purged', 3)`)
	assert.Error(t, err)

	// deliver_at may not precede created_at
	_, err = conn.Exec(`INSERT INTO letters (id, sender_id, recipient_id, audio_ref, delay_preset, created_at, deliver_at)
		VALUES ('L2', 'a', 'b', 'blob', '1h', 10, 5)`)
	assert.Error(t, err)

	// opened_at only with opened or purged status
	_, err = conn.Exec(`INSERT INTO letters (id, sender_id, recipient_id, audio_ref, delay_preset, created_at, deliver_at, status, opened_at)
		VALUES ('L3', 'a', 'b', 'blob', '1h', 1, 2, 'delivered', 3)`)
	assert.Error(t, err)

	_, err = conn.Exec(`INSERT INTO letters (id, sender_id, recipient_id, audio_ref, delay_preset, created_at, deliver_at)
		VALUES ('L4', 'a', 'b', 'blob', '1h', 1, 2)`)
	assert.NoError(t, err)
}

func TestSeedFixtures(t *testing.T) {
	conn, err := Open(DriverCGo, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, SeedFixtures(conn, now))

	counts := map[string]int{}
	rows, err := conn.Query("SELECT status, COUNT(*) FROM letters GROUP BY status")
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		require.NoError(t, rows.Scan(&status, &n))
		counts[status] = n
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, map[string]int{"sent": 1, "delivered": 1, "purged": 1}, counts)

	// Points match the credited stamps.
	var mismatched int
	require.NoError(t, conn.QueryRow(`
		SELECT COUNT(*) FROM profiles p WHERE p.postage_points != (
			SELECT COALESCE(SUM(CASE s.tier
				WHEN 'bronze' THEN 1 WHEN 'silver' THEN 2 WHEN 'gold' THEN 5
				WHEN 'platinum' THEN 10 WHEN 'diamond' THEN 20 WHEN 'spark' THEN 3 END), 0)
			FROM stamps s WHERE s.user_id = p.user_id)`).Scan(&mismatched))
	assert.Zero(t, mismatched)

	// Seeding twice collides on primary keys and leaves the first run intact.
	assert.Error(t, SeedFixtures(conn, now))
	var letters int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM letters").Scan(&letters))
	assert.Equal(t, 3, letters)
}
