package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// ProfileRepository implements secondary.ProfileRepository with SQLite.
type ProfileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new SQLite profile repository.
func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create persists a new profile.
func (r *ProfileRepository) Create(ctx context.Context, profile *secondary.ProfileRecord) error {
	timezone := profile.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO profiles (user_id, partner_id, timezone, streak_count, postage_points, last_prompt_at, active_window_start, active_window_end, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.UserID, nullString(profile.PartnerID), timezone, profile.StreakCount, profile.PostagePoints,
		nullNanos(profile.LastPromptAt), profile.ActiveWindowStart, profile.ActiveWindowEnd, toNanos(profile.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}

	return nil
}

// GetByID retrieves a profile by user ID, including its collected stamp IDs.
func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (*secondary.ProfileRecord, error) {
	var (
		partnerID    sql.NullString
		lastPromptAt sql.NullInt64
		createdAt    int64
	)

	record := &secondary.ProfileRecord{}
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT user_id, partner_id, timezone, streak_count, postage_points, last_prompt_at, active_window_start, active_window_end, created_at FROM profiles WHERE user_id = ?",
		userID,
	).Scan(&record.UserID, &partnerID, &record.Timezone, &record.StreakCount, &record.PostagePoints,
		&lastPromptAt, &record.ActiveWindowStart, &record.ActiveWindowEnd, &createdAt)

	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "profile %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	record.PartnerID = partnerID.String
	record.LastPromptAt = timePtr(lastPromptAt)
	record.CreatedAt = fromNanos(createdAt)

	stamps, err := r.stampIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	record.CollectedStamps = stamps

	return record, nil
}

// List retrieves all profiles without their stamp IDs.
func (r *ProfileRepository) List(ctx context.Context) ([]*secondary.ProfileRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT user_id, partner_id, timezone, streak_count, postage_points, last_prompt_at, active_window_start, active_window_end, created_at FROM profiles ORDER BY user_id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*secondary.ProfileRecord
	for rows.Next() {
		var (
			partnerID    sql.NullString
			lastPromptAt sql.NullInt64
			createdAt    int64
		)

		record := &secondary.ProfileRecord{}
		if err := rows.Scan(&record.UserID, &partnerID, &record.Timezone, &record.StreakCount, &record.PostagePoints,
			&lastPromptAt, &record.ActiveWindowStart, &record.ActiveWindowEnd, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}

		record.PartnerID = partnerID.String
		record.LastPromptAt = timePtr(lastPromptAt)
		record.CreatedAt = fromNanos(createdAt)
		profiles = append(profiles, record)
	}

	return profiles, rows.Err()
}

// UpdateBalance writes points, streak and lastPromptAt.
func (r *ProfileRepository) UpdateBalance(ctx context.Context, userID string, points, streak int, lastPromptAt *time.Time) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE profiles SET postage_points = ?, streak_count = ?, last_prompt_at = ? WHERE user_id = ?",
		points, streak, nullNanos(lastPromptAt), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile balance: %w", err)
	}

	return requireRow(result, "profile", userID)
}

// UpdateWindow writes the active window and timezone.
func (r *ProfileRepository) UpdateWindow(ctx context.Context, userID string, start, end int, timezone string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE profiles SET active_window_start = ?, active_window_end = ?, timezone = ? WHERE user_id = ?",
		start, end, timezone, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile window: %w", err)
	}

	return requireRow(result, "profile", userID)
}

// SetPartner links userID to partnerID (empty clears it).
func (r *ProfileRepository) SetPartner(ctx context.Context, userID, partnerID string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE profiles SET partner_id = ? WHERE user_id = ?",
		nullString(partnerID), userID,
	)
	if err != nil {
		return fmt.Errorf("failed to set partner: %w", err)
	}

	return requireRow(result, "profile", userID)
}

func (r *ProfileRepository) stampIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id FROM stamps WHERE user_id = ? ORDER BY earned_at, id",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list collected stamps: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stamp id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func requireRow(result sql.Result, entity, id string) error {
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "%s %s not found", entity, id)
	}
	return nil
}

// Ensure ProfileRepository implements the interface
var _ secondary.ProfileRepository = (*ProfileRepository)(nil)
