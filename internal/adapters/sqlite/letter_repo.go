package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

const letterColumns = "id, sender_id, recipient_id, audio_ref, transcript, sticker_id, delay_preset, created_at, deliver_at, prompt_id, status, opened_at, playback_progress"

// LetterRepository implements secondary.LetterRepository with SQLite.
type LetterRepository struct {
	db *sql.DB
}

// NewLetterRepository creates a new SQLite letter repository.
func NewLetterRepository(db *sql.DB) *LetterRepository {
	return &LetterRepository{db: db}
}

// Create persists a new letter.
func (r *LetterRepository) Create(ctx context.Context, letter *secondary.LetterRecord) error {
	status := letter.Status
	if status == "" {
		status = "sent"
	}

	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO letters ("+letterColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		letter.ID, letter.SenderID, letter.RecipientID, letter.AudioRef,
		nullString(letter.Transcript), nullString(letter.StickerID), letter.DelayPreset,
		toNanos(letter.CreatedAt), toNanos(letter.DeliverAt), nullString(letter.PromptID),
		status, nullNanos(letter.OpenedAt), letter.PlaybackProgress,
	)
	if err != nil {
		return fmt.Errorf("failed to create letter: %w", err)
	}

	return nil
}

// GetByID retrieves a letter by its ID.
func (r *LetterRepository) GetByID(ctx context.Context, id string) (*secondary.LetterRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+letterColumns+" FROM letters WHERE id = ?",
		id,
	)

	record, err := scanLetter(row)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "letter %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get letter: %w", err)
	}

	return record, nil
}

// List retrieves letters matching the given filters.
func (r *LetterRepository) List(ctx context.Context, filters secondary.LetterFilters) ([]*secondary.LetterRecord, error) {
	query := "SELECT " + letterColumns + " FROM letters WHERE 1=1"
	args := []any{}

	if filters.SenderID != "" {
		query += " AND sender_id = ?"
		args = append(args, filters.SenderID)
	}

	if filters.RecipientID != "" {
		query += " AND recipient_id = ?"
		args = append(args, filters.RecipientID)
	}

	if filters.ExcludeStatus != "" {
		query += " AND status != ?"
		args = append(args, filters.ExcludeStatus)
	}

	if filters.DeliverAtOrBefore != nil {
		query += " AND deliver_at <= ?"
		args = append(args, toNanos(*filters.DeliverAtOrBefore))
	}

	switch filters.OrderBy {
	case "deliver_at":
		query += " ORDER BY deliver_at DESC, id"
	default:
		query += " ORDER BY created_at DESC, id"
	}

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	return r.query(ctx, query, args...)
}

// ListDue retrieves sent letters whose deliverAt is at or before now, oldest first.
func (r *LetterRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*secondary.LetterRecord, error) {
	query := "SELECT " + letterColumns + " FROM letters WHERE status = 'sent' AND deliver_at <= ? ORDER BY deliver_at, id"
	args := []any{toNanos(now)}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

// SaveState writes lifecycle fields only if the stored status still equals expected.
func (r *LetterRepository) SaveState(ctx context.Context, letter *secondary.LetterRecord, expected string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE letters SET status = ?, opened_at = ?, playback_progress = ?, audio_ref = ? WHERE id = ? AND status = ?",
		letter.Status, nullNanos(letter.OpenedAt), letter.PlaybackProgress, letter.AudioRef, letter.ID, expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update letter: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		return nil
	}

	var current string
	err = conn(ctx, r.db).QueryRowContext(ctx, "SELECT status FROM letters WHERE id = ?", letter.ID).Scan(&current)
	if err == sql.ErrNoRows {
		return apperr.New(apperr.KindNotFound, "letter %s not found", letter.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to read letter status: %w", err)
	}
	return apperr.New(apperr.KindInvalidTransition, "letter %s changed concurrently (status %s, expected %s)", letter.ID, current, expected)
}

// FindPromptResponse returns the first letter sent by senderID for promptID since the given time.
func (r *LetterRepository) FindPromptResponse(ctx context.Context, senderID, promptID string, since time.Time) (*secondary.LetterRecord, error) {
	records, err := r.query(ctx,
		"SELECT "+letterColumns+" FROM letters WHERE sender_id = ? AND prompt_id = ? AND created_at >= ? ORDER BY created_at, id LIMIT 1",
		senderID, promptID, toNanos(since),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *LetterRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.LetterRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list letters: %w", err)
	}
	defer rows.Close()

	var letters []*secondary.LetterRecord
	for rows.Next() {
		record, err := scanLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan letter: %w", err)
		}
		letters = append(letters, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate letters: %w", err)
	}

	return letters, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLetter(s scanner) (*secondary.LetterRecord, error) {
	var (
		transcript sql.NullString
		stickerID  sql.NullString
		promptID   sql.NullString
		createdAt  int64
		deliverAt  int64
		openedAt   sql.NullInt64
	)

	record := &secondary.LetterRecord{}
	err := s.Scan(&record.ID, &record.SenderID, &record.RecipientID, &record.AudioRef,
		&transcript, &stickerID, &record.DelayPreset, &createdAt, &deliverAt, &promptID,
		&record.Status, &openedAt, &record.PlaybackProgress)
	if err != nil {
		return nil, err
	}

	record.Transcript = transcript.String
	record.StickerID = stickerID.String
	record.PromptID = promptID.String
	record.CreatedAt = fromNanos(createdAt)
	record.DeliverAt = fromNanos(deliverAt)
	record.OpenedAt = timePtr(openedAt)

	return record, nil
}

// Ensure LetterRepository implements the interface
var _ secondary.LetterRepository = (*LetterRepository)(nil)
