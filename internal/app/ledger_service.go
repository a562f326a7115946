package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/core/delay"
	"github.com/example/vintagevoice/internal/core/ledger"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	tx          secondary.Transactor
	profileRepo secondary.ProfileRepository
	stampRepo   secondary.StampRepository
	clock       clock.Clock
	locks       *Locks
	logger      *slog.Logger
}

// NewLedgerService creates a new LedgerService with injected dependencies.
func NewLedgerService(
	tx secondary.Transactor,
	profileRepo secondary.ProfileRepository,
	stampRepo secondary.StampRepository,
	clk clock.Clock,
	locks *Locks,
	logger *slog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		tx:          tx,
		profileRepo: profileRepo,
		stampRepo:   stampRepo,
		clock:       clk,
		locks:       locks,
		logger:      logger,
	}
}

// AwardStamp creates one stamp and credits its points, and for prompt sparks the
// streak, in a single transaction under the user's lock.
func (s *LedgerServiceImpl) AwardStamp(ctx context.Context, req primary.AwardStampRequest) (*primary.Stamp, error) {
	ctx, unlock := s.locks.Users.Lock(ctx, req.UserID)
	defer unlock()

	var stamp *primary.Stamp
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		stamp, err = s.credit(ctx, req)
		return err
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to award stamp")
	}

	s.logger.Info("stamp awarded", "user", stamp.UserID, "tier", stamp.Tier, "points", stamp.Points, "stamp", stamp.ID)
	return stamp, nil
}

// AwardSpark credits the spark stamp for promptID unless userID already holds it.
// The check and the credit share one critical section, so concurrent attempts
// for the same user and prompt collapse to one award.
func (s *LedgerServiceImpl) AwardSpark(ctx context.Context, userID, promptID, letterID string) (bool, error) {
	if promptID == "" {
		return false, apperr.New(apperr.KindValidation, "spark stamps require a prompt")
	}

	ctx, unlock := s.locks.Users.Lock(ctx, userID)
	defer unlock()

	awarded := false
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		has, err := s.stampRepo.HasPromptStamp(ctx, userID, promptID, string(delay.TierSpark))
		if err != nil {
			return err
		}
		if has {
			return nil
		}

		_, err = s.credit(ctx, primary.AwardStampRequest{
			UserID:   userID,
			Tier:     string(delay.TierSpark),
			PromptID: promptID,
			LetterID: letterID,
		})
		awarded = err == nil
		return err
	})
	if err != nil {
		return false, apperr.Storage(err, "failed to award spark")
	}

	if awarded {
		s.logger.Info("spark awarded", "user", userID, "prompt", promptID, "letter", letterID)
	} else {
		s.logger.Debug("spark already held", "user", userID, "prompt", promptID)
	}
	return awarded, nil
}

// ListStamps lists a user's stamps, oldest first.
func (s *LedgerServiceImpl) ListStamps(ctx context.Context, userID string) ([]*primary.Stamp, error) {
	records, err := s.stampRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to list stamps")
	}

	stamps := make([]*primary.Stamp, len(records))
	for i, r := range records {
		stamps[i] = recordToStamp(r)
	}
	return stamps, nil
}

// credit applies one award. Callers hold the user's lock and a transaction.
func (s *LedgerServiceImpl) credit(ctx context.Context, req primary.AwardStampRequest) (*primary.Stamp, error) {
	profile, err := s.profileRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	award := ledger.AwardContext{
		Tier:     delay.Tier(req.Tier),
		PromptID: req.PromptID,
		Now:      now,
		Location: loadLocation(profile.Timezone),
	}
	if result := ledger.CanAward(award); !result.Allowed {
		return nil, apperr.New(apperr.KindValidation, "%s", result.Reason)
	}

	balance := ledger.ApplyAward(ledger.Balance{
		PostagePoints: profile.PostagePoints,
		StreakCount:   profile.StreakCount,
		LastPromptAt:  profile.LastPromptAt,
	}, award)

	record := &secondary.StampRecord{
		ID:          "STP-" + uuid.NewString(),
		UserID:      req.UserID,
		Tier:        req.Tier,
		EarnedAt:    now,
		PromptID:    req.PromptID,
		DelayPreset: req.DelayPreset,
		LetterID:    req.LetterID,
	}
	if err := s.stampRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	if err := s.profileRepo.UpdateBalance(ctx, req.UserID, balance.PostagePoints, balance.StreakCount, balance.LastPromptAt); err != nil {
		return nil, err
	}

	return recordToStamp(record), nil
}

func recordToStamp(r *secondary.StampRecord) *primary.Stamp {
	return &primary.Stamp{
		ID:          r.ID,
		UserID:      r.UserID,
		Tier:        r.Tier,
		Points:      delay.Tier(r.Tier).Points(),
		EarnedAt:    r.EarnedAt,
		PromptID:    r.PromptID,
		DelayPreset: r.DelayPreset,
		LetterID:    r.LetterID,
	}
}

// loadLocation resolves an IANA zone name, falling back to UTC.
func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Ensure LedgerServiceImpl implements the interface
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
