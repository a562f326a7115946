package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

const promptColumns = "id, template_key, text, category, default_delay, season, issued_at, expires_at"

// PromptRepository implements secondary.PromptRepository with SQLite.
type PromptRepository struct {
	db *sql.DB
}

// NewPromptRepository creates a new SQLite prompt repository.
func NewPromptRepository(db *sql.DB) *PromptRepository {
	return &PromptRepository{db: db}
}

// Create persists an issued prompt.
func (r *PromptRepository) Create(ctx context.Context, prompt *secondary.PromptRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO prompts ("+promptColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		prompt.ID, prompt.TemplateKey, prompt.Text, prompt.Category, prompt.DefaultDelay,
		nullString(prompt.Season), toNanos(prompt.IssuedAt), nullNanos(prompt.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}

	return nil
}

// GetByID retrieves a prompt by its ID.
func (r *PromptRepository) GetByID(ctx context.Context, id string) (*secondary.PromptRecord, error) {
	record, err := scanPrompt(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+promptColumns+" FROM prompts WHERE id = ?", id,
	))
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.KindNotFound, "prompt %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prompt: %w", err)
	}
	return record, nil
}

// Latest returns the most recently issued prompt, or nil when none exists.
func (r *PromptRepository) Latest(ctx context.Context) (*secondary.PromptRecord, error) {
	record, err := scanPrompt(conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+promptColumns+" FROM prompts ORDER BY issued_at DESC, id DESC LIMIT 1",
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest prompt: %w", err)
	}
	return record, nil
}

// History returns up to limit prompts, newest first.
func (r *PromptRepository) History(ctx context.Context, limit int) ([]*secondary.PromptRecord, error) {
	if limit <= 0 {
		limit = 30
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT "+promptColumns+" FROM prompts ORDER BY issued_at DESC, id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	defer rows.Close()

	var prompts []*secondary.PromptRecord
	for rows.Next() {
		record, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prompt: %w", err)
		}
		prompts = append(prompts, record)
	}

	return prompts, rows.Err()
}

func scanPrompt(s scanner) (*secondary.PromptRecord, error) {
	var (
		season    sql.NullString
		issuedAt  int64
		expiresAt sql.NullInt64
	)

	record := &secondary.PromptRecord{}
	if err := s.Scan(&record.ID, &record.TemplateKey, &record.Text, &record.Category,
		&record.DefaultDelay, &season, &issuedAt, &expiresAt); err != nil {
		return nil, err
	}

	record.Season = season.String
	record.IssuedAt = fromNanos(issuedAt)
	record.ExpiresAt = timePtr(expiresAt)
	return record, nil
}

// Ensure PromptRepository implements the interface
var _ secondary.PromptRepository = (*PromptRepository)(nil)
