package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/clock"
	"github.com/example/vintagevoice/internal/core/delay"
	coreletter "github.com/example/vintagevoice/internal/core/letter"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// LetterServiceImpl implements the LetterService interface.
// Every transition runs under the letter's lock and re-reads the letter inside
// its transaction, and SaveState compares the expected status on write.
type LetterServiceImpl struct {
	tx         secondary.Transactor
	letterRepo secondary.LetterRepository
	identity   secondary.IdentityProvider
	ledger     primary.LedgerService
	notifier   secondary.Notifier // nil when notifications are disabled
	blobs      secondary.BlobStore
	clock      clock.Clock
	locks      *Locks
	logger     *slog.Logger
}

// NewLetterService creates a new LetterService with injected dependencies.
func NewLetterService(
	tx secondary.Transactor,
	letterRepo secondary.LetterRepository,
	identity secondary.IdentityProvider,
	ledger primary.LedgerService,
	notifier secondary.Notifier,
	blobs secondary.BlobStore,
	clk clock.Clock,
	locks *Locks,
	logger *slog.Logger,
) *LetterServiceImpl {
	return &LetterServiceImpl{
		tx:         tx,
		letterRepo: letterRepo,
		identity:   identity,
		ledger:     ledger,
		notifier:   notifier,
		blobs:      blobs,
		clock:      clk,
		locks:      locks,
		logger:     logger,
	}
}

// SendLetter creates a letter in "sent" and credits the sender the preset's
// tier stamp in the same transaction. An empty RecipientID means the sender's partner.
func (s *LetterServiceImpl) SendLetter(ctx context.Context, req primary.SendLetterRequest) (*primary.Letter, error) {
	preset, err := delay.Parse(req.DelayPreset)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "%s", err.Error())
	}

	recipientID := req.RecipientID
	if recipientID == "" && req.SenderID != "" {
		recipientID, err = s.identity.PartnerID(ctx, req.SenderID)
		if err != nil {
			return nil, apperr.Storage(err, "failed to resolve partner")
		}
	}

	guard := coreletter.CanCreate(coreletter.CreateContext{
		SenderID:    req.SenderID,
		RecipientID: recipientID,
		AudioRef:    req.AudioRef,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	record := &secondary.LetterRecord{
		ID:          "LTR-" + uuid.NewString(),
		SenderID:    req.SenderID,
		RecipientID: recipientID,
		AudioRef:    req.AudioRef,
		Transcript:  req.Transcript,
		StickerID:   req.StickerID,
		DelayPreset: string(preset),
		CreatedAt:   now,
		DeliverAt:   delay.ComputeDelivery(preset, now),
		PromptID:    req.PromptID,
		Status:      string(coreletter.InitialStatus()),
	}

	ctx, unlock := s.locks.Users.Lock(ctx, req.SenderID)
	defer unlock()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.letterRepo.Create(ctx, record); err != nil {
			return err
		}
		_, err := s.ledger.AwardStamp(ctx, primary.AwardStampRequest{
			UserID:      req.SenderID,
			Tier:        string(delay.TierFor(preset)),
			DelayPreset: string(preset),
			LetterID:    record.ID,
		})
		return err
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to send letter")
	}

	s.logger.Info("letter sent", "letter", record.ID, "sender", record.SenderID, "recipient", record.RecipientID,
		"preset", record.DelayPreset, "deliver_at", record.DeliverAt)
	return recordToLetter(record), nil
}

// GetLetter retrieves a letter by ID.
func (s *LetterServiceImpl) GetLetter(ctx context.Context, letterID string) (*primary.Letter, error) {
	record, err := s.letterRepo.GetByID(ctx, letterID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to load letter")
	}
	return recordToLetter(record), nil
}

// ListVisibleLetters lists letters the recipient may see now, newest deliverAt first.
func (s *LetterServiceImpl) ListVisibleLetters(ctx context.Context, userID string) ([]*primary.Letter, error) {
	now := s.clock.Now()
	records, err := s.letterRepo.List(ctx, secondary.LetterFilters{
		RecipientID:       userID,
		ExcludeStatus:     string(coreletter.StatusSent),
		DeliverAtOrBefore: &now,
		OrderBy:           "deliver_at",
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to list letters")
	}

	letters := make([]*primary.Letter, 0, len(records))
	for _, r := range records {
		if coreletter.IsVisible(coreletter.Status(r.Status), r.DeliverAt, now) {
			letters = append(letters, recordToLetter(r))
		}
	}
	return letters, nil
}

// ListSentLetters lists a sender's letters, newest first.
func (s *LetterServiceImpl) ListSentLetters(ctx context.Context, userID string) ([]*primary.Letter, error) {
	records, err := s.letterRepo.List(ctx, secondary.LetterFilters{SenderID: userID})
	if err != nil {
		return nil, apperr.Storage(err, "failed to list sent letters")
	}

	letters := make([]*primary.Letter, len(records))
	for i, r := range records {
		letters[i] = recordToLetter(r)
	}
	return letters, nil
}

// Deliver moves a due letter from sent to delivered and queues the recipient's notification.
func (s *LetterServiceImpl) Deliver(ctx context.Context, letterID string) (*primary.Letter, error) {
	ctx, unlock := s.locks.Letters.Lock(ctx, letterID)
	defer unlock()

	var delivered *secondary.LetterRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.letterRepo.GetByID(ctx, letterID)
		if err != nil {
			return err
		}

		next, err := coreletter.Deliver(stateOf(record), s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.save(ctx, record, next); err != nil {
			return err
		}

		if s.notifier != nil {
			if _, err := s.notifier.LetterDelivered(ctx, record.RecipientID, record.ID); err != nil {
				return err
			}
		}
		delivered = record
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to deliver letter")
	}

	s.logger.Info("letter delivered", "letter", delivered.ID, "recipient", delivered.RecipientID)
	return recordToLetter(delivered), nil
}

// SweepDeliveries delivers every due letter and returns how many moved.
// Letters that another caller delivered first are skipped. The first storage
// failure is returned after the rest of the batch has been attempted.
func (s *LetterServiceImpl) SweepDeliveries(ctx context.Context) (int, error) {
	due, err := s.letterRepo.ListDue(ctx, s.clock.Now(), 0)
	if err != nil {
		return 0, apperr.Storage(err, "failed to list due letters")
	}

	delivered := 0
	var firstErr error
	for _, record := range due {
		if _, err := s.Deliver(ctx, record.ID); err != nil {
			if apperr.Internal(err) {
				s.logger.Debug("skipping letter", "letter", record.ID, "reason", err)
				continue
			}
			s.logger.Error("delivery failed", "letter", record.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delivered++
	}
	return delivered, firstErr
}

// MarkOpened moves a delivered letter to opened. Already opened or purged
// letters are returned unchanged.
func (s *LetterServiceImpl) MarkOpened(ctx context.Context, letterID string) (*primary.Letter, error) {
	ctx, unlock := s.locks.Letters.Lock(ctx, letterID)
	defer unlock()

	var result *secondary.LetterRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.letterRepo.GetByID(ctx, letterID)
		if err != nil {
			return err
		}

		next, changed, err := coreletter.MarkOpened(stateOf(record), s.clock.Now())
		if err != nil {
			return err
		}
		if changed {
			if err := s.save(ctx, record, next); err != nil {
				return err
			}
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to open letter")
	}
	return recordToLetter(result), nil
}

// OnPlaybackProgress records a playback position for an opened letter.
func (s *LetterServiceImpl) OnPlaybackProgress(ctx context.Context, letterID string, progress float64) (*primary.Letter, error) {
	ctx, unlock := s.locks.Letters.Lock(ctx, letterID)
	defer unlock()

	var result *secondary.LetterRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.letterRepo.GetByID(ctx, letterID)
		if err != nil {
			return err
		}

		next, err := coreletter.UpdateProgress(stateOf(record), progress)
		if err != nil {
			return err
		}
		if err := s.save(ctx, record, next); err != nil {
			return err
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to record playback progress")
	}
	return recordToLetter(result), nil
}

// OnPlaybackComplete records full playback and purges the audio in one step.
// A delivered letter is opened first, since the player only completes what it
// played. Already purged letters are returned unchanged.
func (s *LetterServiceImpl) OnPlaybackComplete(ctx context.Context, letterID string) (*primary.Letter, error) {
	return s.purge(ctx, letterID, true)
}

// Purge clears the audio of a fully played letter. Already purged letters are
// returned unchanged.
func (s *LetterServiceImpl) Purge(ctx context.Context, letterID string) (*primary.Letter, error) {
	return s.purge(ctx, letterID, false)
}

func (s *LetterServiceImpl) purge(ctx context.Context, letterID string, complete bool) (*primary.Letter, error) {
	ctx, unlock := s.locks.Letters.Lock(ctx, letterID)
	defer unlock()

	// Sender is immutable, so it can be read before taking the user lock.
	current, err := s.letterRepo.GetByID(ctx, letterID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to load letter")
	}
	if current.Status == string(coreletter.StatusPurged) {
		return recordToLetter(current), nil
	}
	if current.PromptID != "" {
		var unlockUser func()
		ctx, unlockUser = s.locks.Users.Lock(ctx, current.SenderID)
		defer unlockUser()
	}

	var (
		result    *secondary.LetterRecord
		purgedRef string
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.letterRepo.GetByID(ctx, letterID)
		if err != nil {
			return err
		}
		state := stateOf(record)
		audioRef := record.AudioRef

		if complete {
			if state.Status == coreletter.StatusDelivered {
				if state, _, err = coreletter.MarkOpened(state, s.clock.Now()); err != nil {
					return err
				}
			}
			if state.Status == coreletter.StatusOpened {
				if state, err = coreletter.UpdateProgress(state, 1); err != nil {
					return err
				}
			}
		}

		next, changed, err := coreletter.Purge(state)
		if err != nil {
			return err
		}
		result = record
		if !changed {
			return nil
		}
		if err := s.save(ctx, record, next); err != nil {
			return err
		}
		purgedRef = audioRef

		if coreletter.NeedsSparkOnPurge(next) {
			if _, err := s.ledger.AwardSpark(ctx, record.SenderID, record.PromptID, record.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Storage(err, "failed to purge letter")
	}

	if purgedRef != "" {
		s.logger.Info("letter purged", "letter", letterID)
		if s.blobs != nil {
			if err := s.blobs.Delete(ctx, purgedRef); err != nil {
				s.logger.Warn("failed to delete purged audio", "letter", letterID, "error", err)
			}
		}
	}
	return recordToLetter(result), nil
}

// save writes next onto record, expecting the status record was read with.
func (s *LetterServiceImpl) save(ctx context.Context, record *secondary.LetterRecord, next coreletter.State) error {
	expected := record.Status
	record.Status = string(next.Status)
	record.OpenedAt = next.OpenedAt
	record.PlaybackProgress = next.PlaybackProgress
	record.AudioRef = next.AudioRef
	return s.letterRepo.SaveState(ctx, record, expected)
}

func stateOf(r *secondary.LetterRecord) coreletter.State {
	return coreletter.State{
		Status:           coreletter.Status(r.Status),
		DeliverAt:        r.DeliverAt,
		OpenedAt:         r.OpenedAt,
		PlaybackProgress: r.PlaybackProgress,
		AudioRef:         r.AudioRef,
		PromptID:         r.PromptID,
	}
}

func recordToLetter(r *secondary.LetterRecord) *primary.Letter {
	letter := &primary.Letter{
		ID:               r.ID,
		SenderID:         r.SenderID,
		RecipientID:      r.RecipientID,
		AudioRef:         r.AudioRef,
		Transcript:       r.Transcript,
		StickerID:        r.StickerID,
		DelayPreset:      r.DelayPreset,
		CreatedAt:        r.CreatedAt,
		DeliverAt:        r.DeliverAt,
		PromptID:         r.PromptID,
		Status:           r.Status,
		OpenedAt:         r.OpenedAt,
		PlaybackProgress: r.PlaybackProgress,
	}
	if p := delay.Preset(r.DelayPreset); p.Valid() {
		letter.StampTier = string(delay.TierFor(p))
	}
	return letter
}

// Ensure LetterServiceImpl implements the interface
var _ primary.LetterService = (*LetterServiceImpl)(nil)
