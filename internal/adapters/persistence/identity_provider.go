// Package persistence contains adapters that resolve identity from stored profiles.
package persistence

import (
	"context"

	"github.com/example/vintagevoice/internal/apperr"
	"github.com/example/vintagevoice/internal/ctxutil"
	"github.com/example/vintagevoice/internal/ports/secondary"
)

// IdentityProviderAdapter implements secondary.IdentityProvider.
// The acting user comes from the context, falling back to the configured default.
// Pairing is read from the profile store.
type IdentityProviderAdapter struct {
	profileRepo   secondary.ProfileRepository
	defaultUserID string
}

// NewIdentityProvider creates a new IdentityProviderAdapter.
func NewIdentityProvider(profileRepo secondary.ProfileRepository, defaultUserID string) *IdentityProviderAdapter {
	return &IdentityProviderAdapter{
		profileRepo:   profileRepo,
		defaultUserID: defaultUserID,
	}
}

// CurrentUserID returns the acting user.
func (p *IdentityProviderAdapter) CurrentUserID(ctx context.Context) (string, error) {
	if userID := ctxutil.UserFromContext(ctx); userID != "" {
		return userID, nil
	}
	if p.defaultUserID != "" {
		return p.defaultUserID, nil
	}
	return "", apperr.New(apperr.KindValidation, "no user configured (set user_id or VV_USER_ID)")
}

// PartnerID returns userID's paired partner, or "" when unpaired.
func (p *IdentityProviderAdapter) PartnerID(ctx context.Context, userID string) (string, error) {
	profile, err := p.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.PartnerID, nil
}

// Ensure IdentityProviderAdapter implements the interface
var _ secondary.IdentityProvider = (*IdentityProviderAdapter)(nil)
