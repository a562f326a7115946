// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// setupTestDB goes through db.Open, which applies db.GetSchemaSQL(), so tests
// always run against the authoritative schema.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/example/vintagevoice/internal/db"
)

// t0 is the fixed reference time used by repository tests.
var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(db.DriverCGo, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedProfile inserts a profile and returns its user ID.
func seedProfile(t *testing.T, db *sql.DB, userID, partnerID string) string {
	t.Helper()
	var partner any
	if partnerID != "" {
		partner = partnerID
	}
	_, err := db.Exec(
		"INSERT INTO profiles (user_id, partner_id, created_at) VALUES (?, ?, ?)",
		userID, partner, t0.UnixNano(),
	)
	if err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	return userID
}

// seedLetter inserts a sent letter from sender to recipient and returns its ID.
func seedLetter(t *testing.T, db *sql.DB, id, sender, recipient string, createdAt, deliverAt time.Time) string {
	t.Helper()
	_, err := db.Exec(
		`INSERT INTO letters (id, sender_id, recipient_id, audio_ref, delay_preset, created_at, deliver_at)
		 VALUES (?, ?, ?, 'blob-'||?, '1d', ?, ?)`,
		id, sender, recipient, id, createdAt.UnixNano(), deliverAt.UnixNano(),
	)
	if err != nil {
		t.Fatalf("failed to seed letter: %v", err)
	}
	return id
}
