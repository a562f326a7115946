package db

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the version recorded for the schema below.
const SchemaVersion = 1

// SchemaSQL is the complete schema for fresh installs.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. Repository tests
// load it via GetSchemaSQL() and never declare their own tables, so a column
// referenced by repository code but missing here fails immediately with
// "no such column".
//
// Timestamps are stored as INTEGER unix nanoseconds (UTC) so both drivers
// round-trip them exactly and ordering is numeric.
const SchemaSQL = `
-- Profiles (gamification state per user)
CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY,
	partner_id TEXT,
	timezone TEXT NOT NULL DEFAULT 'UTC',
	streak_count INTEGER NOT NULL DEFAULT 0 CHECK(streak_count >= 0),
	postage_points INTEGER NOT NULL DEFAULT 0 CHECK(postage_points >= 0),
	last_prompt_at INTEGER,
	active_window_start INTEGER NOT NULL DEFAULT 19 CHECK(active_window_start BETWEEN 0 AND 23),
	active_window_end INTEGER NOT NULL DEFAULT 21 CHECK(active_window_end BETWEEN 0 AND 23),
	created_at INTEGER NOT NULL
);

-- Letters (delayed voice letters)
CREATE TABLE IF NOT EXISTS letters (
	id TEXT PRIMARY KEY,
	sender_id TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	audio_ref TEXT NOT NULL DEFAULT '',
	transcript TEXT,
	sticker_id TEXT,
	delay_preset TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	deliver_at INTEGER NOT NULL CHECK(deliver_at >= created_at),
	prompt_id TEXT,
	status TEXT NOT NULL CHECK(status IN ('sent', 'delivered', 'opened', 'purged')) DEFAULT 'sent',
	opened_at INTEGER,
	playback_progress REAL NOT NULL DEFAULT 0 CHECK(playback_progress BETWEEN 0 AND 1),
	CHECK((opened_at IS NOT NULL) = (status IN ('opened', 'purged'))),
	CHECK((audio_ref = '') = (status = 'purged'))
);

CREATE INDEX IF NOT EXISTS idx_letters_sender ON letters(sender_id, created_at);
CREATE INDEX IF NOT EXISTS idx_letters_recipient ON letters(recipient_id, deliver_at);
CREATE INDEX IF NOT EXISTS idx_letters_due ON letters(status, deliver_at);
CREATE INDEX IF NOT EXISTS idx_letters_prompt ON letters(sender_id, prompt_id, created_at);

-- Stamps (append-only)
CREATE TABLE IF NOT EXISTS stamps (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	tier TEXT NOT NULL CHECK(tier IN ('bronze', 'silver', 'gold', 'platinum', 'diamond', 'spark')),
	earned_at INTEGER NOT NULL,
	prompt_id TEXT,
	delay_preset TEXT,
	letter_id TEXT,
	FOREIGN KEY (user_id) REFERENCES profiles(user_id)
);

CREATE INDEX IF NOT EXISTS idx_stamps_user ON stamps(user_id, earned_at);
CREATE INDEX IF NOT EXISTS idx_stamps_prompt ON stamps(user_id, prompt_id, tier);

-- Prompts (issued daily prompts, shared by all users)
CREATE TABLE IF NOT EXISTS prompts (
	id TEXT PRIMARY KEY,
	template_key TEXT NOT NULL,
	text TEXT NOT NULL,
	category TEXT NOT NULL,
	default_delay TEXT NOT NULL,
	season TEXT,
	issued_at INTEGER NOT NULL,
	expires_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_prompts_issued ON prompts(issued_at);

-- Notifications (outbox for the external push service)
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK(kind IN ('letter_delivered', 'daily_spark')),
	recipient_id TEXT NOT NULL,
	subject_id TEXT NOT NULL,
	dedupe_key TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL,
	sent_at INTEGER
);

CREATE INDEX IF NOT EXISTS idx_notifications_pending ON notifications(sent_at, created_at);
`

// InitSchema creates the schema on a fresh database and records its version.
// It is safe to call on every start.
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	if _, err := db.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
