package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/vintagevoice/internal/ports/secondary"
)

// StampRepository implements secondary.StampRepository with SQLite.
// Stamps are append-only: there is no update or delete.
type StampRepository struct {
	db *sql.DB
}

// NewStampRepository creates a new SQLite stamp repository.
func NewStampRepository(db *sql.DB) *StampRepository {
	return &StampRepository{db: db}
}

// Create appends a stamp.
func (r *StampRepository) Create(ctx context.Context, stamp *secondary.StampRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO stamps (id, user_id, tier, earned_at, prompt_id, delay_preset, letter_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		stamp.ID, stamp.UserID, stamp.Tier, toNanos(stamp.EarnedAt),
		nullString(stamp.PromptID), nullString(stamp.DelayPreset), nullString(stamp.LetterID),
	)
	if err != nil {
		return fmt.Errorf("failed to create stamp: %w", err)
	}

	return nil
}

// ListByUser retrieves a user's stamps, oldest first.
func (r *StampRepository) ListByUser(ctx context.Context, userID string) ([]*secondary.StampRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, user_id, tier, earned_at, prompt_id, delay_preset, letter_id FROM stamps WHERE user_id = ? ORDER BY earned_at, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stamps: %w", err)
	}
	defer rows.Close()

	var stamps []*secondary.StampRecord
	for rows.Next() {
		var (
			earnedAt    int64
			promptID    sql.NullString
			delayPreset sql.NullString
			letterID    sql.NullString
		)

		record := &secondary.StampRecord{}
		if err := rows.Scan(&record.ID, &record.UserID, &record.Tier, &earnedAt, &promptID, &delayPreset, &letterID); err != nil {
			return nil, fmt.Errorf("failed to scan stamp: %w", err)
		}

		record.EarnedAt = fromNanos(earnedAt)
		record.PromptID = promptID.String
		record.DelayPreset = delayPreset.String
		record.LetterID = letterID.String
		stamps = append(stamps, record)
	}

	return stamps, rows.Err()
}

// HasPromptStamp reports whether userID already holds a stamp of tier for promptID.
func (r *StampRepository) HasPromptStamp(ctx context.Context, userID, promptID, tier string) (bool, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM stamps WHERE user_id = ? AND prompt_id = ? AND tier = ?",
		userID, promptID, tier,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check prompt stamp: %w", err)
	}
	return count > 0, nil
}

// Ensure StampRepository implements the interface
var _ secondary.StampRepository = (*StampRepository)(nil)
