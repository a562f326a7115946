package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/clock"
	coreprompt "github.com/example/vintagevoice/internal/core/prompt"
	"github.com/example/vintagevoice/internal/ports/primary"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// ProfileServiceImpl implements the ProfileService interface.
type ProfileServiceImpl struct {
	tx          secondary.Transactor
	profileRepo secondary.ProfileRepository
	clock       clock.Clock
	locks       *Locks
	logger      *slog.Logger
}

// NewProfileService creates a new ProfileService with injected dependencies.
func NewProfileService(
	tx secondary.Transactor,
	profileRepo secondary.ProfileRepository,
	clk clock.Clock,
	locks *Locks,
	logger *slog.Logger,
) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		tx:          tx,
		profileRepo: profileRepo,
		clock:       clk,
		locks:       locks,
		logger:      logger,
	}
}

// RegisterProfile creates a profile with zero points and streak.
func (s *ProfileServiceImpl) RegisterProfile(ctx context.Context, req primary.RegisterProfileRequest) (*primary.Profile, error) {
	if req.UserID == "" {
		return nil, apperr.New(apperr.KindValidation, "user ID is required")
	}

	window := coreprompt.DefaultWindow
	if req.ActiveWindowStart != nil {
		window.Start = *req.ActiveWindowStart
	}
	if req.ActiveWindowEnd != nil {
		window.End = *req.ActiveWindowEnd
	}
	timezone, err := validateWindow(window, req.Timezone)
	if err != nil {
		return nil, err
	}

	record := &secondary.ProfileRecord{
		UserID:            req.UserID,
		Timezone:          timezone,
		ActiveWindowStart: window.Start,
		ActiveWindowEnd:   window.End,
		CreatedAt:         s.clock.Now(),
	}

	if _, err := s.profileRepo.GetByID(ctx, req.UserID); err == nil {
		return nil, apperr.New(apperr.KindValidation, "profile %s already exists", req.UserID)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		return nil, apperr.Storage(err, "failed to check profile")
	}

	if err := s.profileRepo.Create(ctx, record); err != nil {
		return nil, apperr.Storage(err, "failed to create profile")
	}

	s.logger.Info("profile registered", "user", req.UserID, "timezone", timezone)
	return s.GetProfile(ctx, req.UserID)
}

// GetProfile retrieves a profile.
func (s *ProfileServiceImpl) GetProfile(ctx context.Context, userID string) (*primary.Profile, error) {
	record, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "failed to load profile")
	}
	return recordToProfile(record), nil
}

// Pair links two users as partners of each other, replacing any previous pairing.
func (s *ProfileServiceImpl) Pair(ctx context.Context, userID, partnerID string) error {
	if userID == "" || partnerID == "" {
		return apperr.New(apperr.KindValidation, "both users are required to pair")
	}
	if userID == partnerID {
		return apperr.New(apperr.KindValidation, "cannot pair a user with themselves")
	}

	ctx, unlock, err := s.lockWithPartners(ctx, userID, partnerID)
	if err != nil {
		return err
	}
	defer unlock()

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		for _, id := range []string{userID, partnerID} {
			profile, err := s.profileRepo.GetByID(ctx, id)
			if err != nil {
				return err
			}
			// Unlink a previous partner so pairing stays symmetric.
			if profile.PartnerID != "" && profile.PartnerID != userID && profile.PartnerID != partnerID {
				if err := s.profileRepo.SetPartner(ctx, profile.PartnerID, ""); err != nil && !apperr.Is(err, apperr.KindNotFound) {
					return err
				}
			}
		}
		if err := s.profileRepo.SetPartner(ctx, userID, partnerID); err != nil {
			return err
		}
		return s.profileRepo.SetPartner(ctx, partnerID, userID)
	})
	if err != nil {
		return apperr.Storage(err, "failed to pair users")
	}

	s.logger.Info("users paired", "user", userID, "partner", partnerID)
	return nil
}

// Unpair removes a user's pairing on both sides.
func (s *ProfileServiceImpl) Unpair(ctx context.Context, userID string) error {
	ctx, unlock, err := s.lockWithPartners(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return apperr.Storage(err, "failed to load profile")
	}
	if profile.PartnerID == "" {
		return apperr.New(apperr.KindValidation, "%s is not paired", userID)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		partner, err := s.profileRepo.GetByID(ctx, profile.PartnerID)
		switch {
		case err == nil && partner.PartnerID == userID:
			if err := s.profileRepo.SetPartner(ctx, partner.UserID, ""); err != nil {
				return err
			}
		case err != nil && !apperr.Is(err, apperr.KindNotFound):
			return err
		}
		return s.profileRepo.SetPartner(ctx, userID, "")
	})
	if err != nil {
		return apperr.Storage(err, "failed to unpair users")
	}

	s.logger.Info("users unpaired", "user", userID, "partner", profile.PartnerID)
	return nil
}

// maxPairingAttempts bounds retries when a pairing changes between reading the
// partners and locking them.
const maxPairingAttempts = 3

// lockWithPartners locks userIDs together with their current partners, so
// unlinking a previous partner happens under that user's lock too.
func (s *ProfileServiceImpl) lockWithPartners(ctx context.Context, userIDs ...string) (context.Context, func(), error) {
	for attempt := 0; attempt < maxPairingAttempts; attempt++ {
		keys, err := s.withPartners(ctx, userIDs)
		if err != nil {
			return nil, nil, err
		}

		locked, unlock := s.locks.Users.LockAll(ctx, keys...)
		current, err := s.withPartners(locked, userIDs)
		if err != nil {
			unlock()
			return nil, nil, err
		}
		if covers(keys, current) {
			return locked, unlock, nil
		}
		unlock()
	}
	return nil, nil, apperr.Storage(errPairingChanged, "failed to lock pairing")
}

var errPairingChanged = errors.New("pairing changed concurrently")

func (s *ProfileServiceImpl) withPartners(ctx context.Context, userIDs []string) ([]string, error) {
	keys := append([]string(nil), userIDs...)
	for _, id := range userIDs {
		profile, err := s.profileRepo.GetByID(ctx, id)
		if err != nil {
			return nil, apperr.Storage(err, "failed to load profile")
		}
		if profile.PartnerID != "" {
			keys = append(keys, profile.PartnerID)
		}
	}
	return keys, nil
}

// covers reports whether every key in want is in held.
func covers(held, want []string) bool {
	set := make(map[string]bool, len(held))
	for _, k := range held {
		set[k] = true
	}
	for _, k := range want {
		if !set[k] {
			return false
		}
	}
	return true
}

// SetActiveWindow updates the hours during which a user receives prompts.
// An empty timezone keeps the stored one.
func (s *ProfileServiceImpl) SetActiveWindow(ctx context.Context, userID string, start, end int, timezone string) error {
	ctx, unlock := s.locks.Users.Lock(ctx, userID)
	defer unlock()

	if timezone == "" {
		profile, err := s.profileRepo.GetByID(ctx, userID)
		if err != nil {
			return apperr.Storage(err, "failed to load profile")
		}
		timezone = profile.Timezone
	}

	timezone, err := validateWindow(coreprompt.Window{Start: start, End: end}, timezone)
	if err != nil {
		return err
	}

	if err := s.profileRepo.UpdateWindow(ctx, userID, start, end, timezone); err != nil {
		return apperr.Storage(err, "failed to update active window")
	}
	return nil
}

func validateWindow(w coreprompt.Window, timezone string) (string, error) {
	if !w.Valid() {
		return "", apperr.New(apperr.KindValidation, "active window hours must be between 0 and 23")
	}
	if timezone == "" {
		return "UTC", nil
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return "", apperr.New(apperr.KindValidation, "unknown timezone %q", timezone)
	}
	return timezone, nil
}

func recordToProfile(r *secondary.ProfileRecord) *primary.Profile {
	return &primary.Profile{
		UserID:            r.UserID,
		PartnerID:         r.PartnerID,
		Timezone:          r.Timezone,
		StreakCount:       r.StreakCount,
		PostagePoints:     r.PostagePoints,
		LastPromptAt:      r.LastPromptAt,
		ActiveWindowStart: r.ActiveWindowStart,
		ActiveWindowEnd:   r.ActiveWindowEnd,
		CollectedStamps:   r.CollectedStamps,
	}
}

// Ensure ProfileServiceImpl implements the interface
var _ primary.ProfileService = (*ProfileServiceImpl)(nil)
