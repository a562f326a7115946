package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/core/delay"
	coreprompt "github.com/example/vintagevoice/internal/core/prompt"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// PromptServiceImpl implements the PromptService interface.
// One prompt is active for everyone at a time; completion is tracked per user
// by the letters they sent for it.
type PromptServiceImpl struct {
	tx          secondary.Transactor
	promptRepo  secondary.PromptRepository
	profileRepo secondary.ProfileRepository
	letterRepo  secondary.LetterRepository
	letters     primary.LetterService
	ledger      primary.LedgerService
	notifier    secondary.Notifier // nil when notifications are disabled
	clock       clock.Clock
	locks       *Locks
	catalog     []coreprompt.Template
	logger      *slog.Logger

	issueMu sync.Mutex
}

// NewPromptService creates a new PromptService with injected dependencies.
// The catalog must be non-empty.
func NewPromptService(
	tx secondary.Transactor,
	promptRepo secondary.PromptRepository,
	profileRepo secondary.ProfileRepository,
	letterRepo secondary.LetterRepository,
	letters primary.LetterService,
	ledger primary.LedgerService,
	notifier secondary.Notifier,
	clk clock.Clock,
	locks *Locks,
	catalog []coreprompt.Template,
	logger *slog.Logger,
) *PromptServiceImpl {
	return &PromptServiceImpl{
		tx:          tx,
		promptRepo:  promptRepo,
		profileRepo: profileRepo,
		letterRepo:  letterRepo,
		letters:     letters,
		ledger:      ledger,
		notifier:    notifier,
		clock:       clk,
		locks:       locks,
		catalog:     catalog,
		logger:      logger,
	}
}

// TodaysPrompt returns the active prompt, issuing a fresh one when the current
// one has expired, with Completed set for userID.
func (s *PromptServiceImpl) TodaysPrompt(ctx context.Context, userID string) (*primary.Prompt, error) {
	current, err := s.currentPrompt(ctx)
	if err != nil {
		return nil, err
	}

	completed, err := s.HasCompletedToday(ctx, userID, current.ID)
	if err != nil {
		return nil, err
	}

	p := recordToPrompt(current)
	p.Completed = completed
	return p, nil
}

// RespondToPrompt sends a letter answering today's prompt to the user's partner
// and awards the spark stamp. The completion check, the send and the award run
// in one critical section for the user, so a retry or a concurrent duplicate
// returns the letter already sent instead of sending or awarding again.
func (s *PromptServiceImpl) RespondToPrompt(ctx context.Context, req primary.RespondToPromptRequest) (*primary.Letter, error) {
	if req.UserID == "" {
		return nil, apperr.New(apperr.KindValidation, "user ID is required")
	}

	current, err := s.currentPrompt(ctx)
	if err != nil {
		return nil, err
	}

	preset := current.DefaultDelay
	if req.DelayPreset != "" {
		preset = req.DelayPreset
	}

	ctx, unlock := s.locks.Users.Lock(ctx, req.UserID)
	defer unlock()

	var letter *primary.Letter
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.findResponse(ctx, req.UserID, current.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			letter = recordToLetter(existing)
			return nil
		}

		letter, err = s.letters.SendLetter(ctx, primary.SendLetterRequest{
			SenderID:    req.UserID,
			AudioRef:    req.AudioRef,
			DelayPreset: preset,
			PromptID:    current.ID,
			Transcript:  req.Transcript,
		})
		if err != nil {
			return err
		}

		_, err = s.ledger.AwardSpark(ctx, req.UserID, current.ID, letter.ID)
		return err
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to respond to prompt")
	}
	return letter, nil
}

// IsDue reports whether userID is owed a new prompt now.
func (s *PromptServiceImpl) IsDue(ctx context.Context, userID string) (bool, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return false, apperr.Storage(err, "failed to load profile")
	}
	return isDue(profile, s.clock), nil
}

// HasCompletedToday reports whether userID sent a letter for promptID since local midnight.
func (s *PromptServiceImpl) HasCompletedToday(ctx context.Context, userID, promptID string) (bool, error) {
	existing, err := s.findResponse(ctx, userID, promptID)
	if err != nil {
		return false, apperr.Storage(err, "failed to check prompt completion")
	}
	return existing != nil, nil
}

// IssueDuePrompts queues a daily prompt notification for every due user who has
// not answered today's prompt. Notifications are deduplicated per user and prompt;
// the count covers only newly queued ones.
func (s *PromptServiceImpl) IssueDuePrompts(ctx context.Context) (int, error) {
	profiles, err := s.profileRepo.List(ctx)
	if err != nil {
		return 0, apperr.Storage(err, "failed to list profiles")
	}

	var current *secondary.PromptRecord
	notified := 0
	var errs []error
	for _, profile := range profiles {
		if !isDue(profile, s.clock) {
			continue
		}

		if current == nil {
			if current, err = s.currentPrompt(ctx); err != nil {
				return notified, err
			}
		}

		done, err := s.HasCompletedToday(ctx, profile.UserID, current.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if done {
			continue
		}

		if s.notifier == nil {
			continue
		}
		queued, err := s.notifier.DailyPromptReady(ctx, profile.UserID, current.ID)
		if err != nil {
			s.logger.Error("failed to queue daily prompt", "user", profile.UserID, "error", err)
			errs = append(errs, apperr.Storage(err, "failed to queue daily prompt"))
			continue
		}
		if queued {
			notified++
		}
	}

	return notified, errors.Join(errs...)
}

// PromptHistory lists recently issued prompts, newest first.
func (s *PromptServiceImpl) PromptHistory(ctx context.Context, limit int) ([]*primary.Prompt, error) {
	records, err := s.promptRepo.History(ctx, limit)
	if err != nil {
		return nil, apperr.Storage(err, "failed to load prompt history")
	}

	prompts := make([]*primary.Prompt, len(records))
	for i, r := range records {
		prompts[i] = recordToPrompt(r)
	}
	return prompts, nil
}

// currentPrompt returns the active prompt, issuing the next catalog entry when
// there is none or it has expired. Issuance is serialized so concurrent callers
// see the same prompt.
func (s *PromptServiceImpl) currentPrompt(ctx context.Context) (*secondary.PromptRecord, error) {
	s.issueMu.Lock()
	defer s.issueMu.Unlock()

	now := s.clock.Now()
	latest, err := s.promptRepo.Latest(ctx)
	if err != nil {
		return nil, apperr.Storage(err, "failed to load current prompt")
	}

	var last *coreprompt.Prompt
	if latest != nil {
		p := recordToCorePrompt(latest)
		if !p.IsExpired(now) {
			return latest, nil
		}
		last = &p
	}

	if len(s.catalog) == 0 {
		return nil, apperr.New(apperr.KindInvalidState, "prompt catalog is empty")
	}

	issued := coreprompt.Issue("PR-"+uuid.NewString(), coreprompt.NextTemplate(s.catalog, last), now)
	record := &secondary.PromptRecord{
		ID:           issued.ID,
		TemplateKey:  issued.TemplateKey,
		Text:         issued.Text,
		Category:     string(issued.Category),
		DefaultDelay: string(issued.DefaultDelay),
		Season:       issued.Season,
		IssuedAt:     issued.IssuedAt,
		ExpiresAt:    issued.ExpiresAt,
	}
	if err := s.promptRepo.Create(ctx, record); err != nil {
		return nil, apperr.Storage(err, "failed to issue prompt")
	}

	s.logger.Info("prompt issued", "prompt", record.ID, "category", record.Category, "expires_at", record.ExpiresAt)
	return record, nil
}

// findResponse returns the letter userID sent for promptID since local midnight.
func (s *PromptServiceImpl) findResponse(ctx context.Context, userID, promptID string) (*secondary.LetterRecord, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	since := coreprompt.StartOfDay(s.clock.Now(), loadLocation(profile.Timezone))
	return s.letterRepo.FindPromptResponse(ctx, userID, promptID, since)
}

func isDue(profile *secondary.ProfileRecord, clk clock.Clock) bool {
	return coreprompt.IsDue(coreprompt.DueContext{
		LastPromptAt: profile.LastPromptAt,
		Window:       coreprompt.Window{Start: profile.ActiveWindowStart, End: profile.ActiveWindowEnd},
		Location:     loadLocation(profile.Timezone),
	}, clk.Now())
}

func recordToCorePrompt(r *secondary.PromptRecord) coreprompt.Prompt {
	return coreprompt.Prompt{
		ID:           r.ID,
		TemplateKey:  r.TemplateKey,
		Text:         r.Text,
		Category:     coreprompt.Category(r.Category),
		DefaultDelay: delay.Preset(r.DefaultDelay),
		Season:       r.Season,
		IssuedAt:     r.IssuedAt,
		ExpiresAt:    r.ExpiresAt,
	}
}

func recordToPrompt(r *secondary.PromptRecord) *primary.Prompt {
	return &primary.Prompt{
		ID:           r.ID,
		Text:         r.Text,
		Category:     r.Category,
		DefaultDelay: r.DefaultDelay,
		Season:       r.Season,
		IssuedAt:     r.IssuedAt,
		ExpiresAt:    r.ExpiresAt,
	}
}

// Ensure PromptServiceImpl implements the interface
var _ primary.PromptService = (*PromptServiceImpl)(nil)
