package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/provider"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/pkg/slogx"
)

// ErrNoProviderAccount is returned when a user has no account at the
// requested provider.
var ErrNoProviderAccount = errors.New("no_provider_account")

// AccountService answers questions about the signed-in user for the rest
// of the backend.
type AccountService struct {
	Providers Adapters
	Store     store.Store
	Now       func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Me returns the user with their linked accounts.
func (s *AccountService) Me(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, fmt.Errorf("%w: user not found", ErrUnauthorized)
		}
		return domain.User{}, err
	}

	accounts, err := s.Store.Accounts().ListAccountsByUser(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	u.Accounts = accounts
	return u, nil
}

// ProviderAccessToken returns a usable provider access token for the user,
// refreshing and persisting it first when the stored one has expired and
// the provider supports refresh.
func (s *AccountService) ProviderAccessToken(ctx context.Context, userID string, p domain.Provider) (domain.ProviderToken, error) {
	log := slogx.FromContext(ctx).With(slog.String("provider", p.Slug()), slog.String("user_id", userID))

	acc, err := s.Store.Accounts().FindUserAccount(ctx, userID, p)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ProviderToken{}, fmt.Errorf("%w: %s", ErrNoProviderAccount, p.Slug())
		}
		return domain.ProviderToken{}, err
	}

	current := domain.ProviderToken{AccessToken: acc.AccessToken, RefreshToken: acc.RefreshToken}
	if acc.ExpiresAt != nil {
		current.ExpiresAt = *acc.ExpiresAt
	}
	if !acc.TokenExpired(s.now()) {
		return current, nil
	}

	a, err := s.Providers.Get(p)
	if err != nil {
		return domain.ProviderToken{}, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p.Slug())
	}
	refresher, ok := a.(provider.Refresher)
	if !ok || acc.RefreshToken == "" {
		log.Info("provider token expired and cannot be refreshed")
		return domain.ProviderToken{}, fmt.Errorf("%w: provider token expired, sign in again", ErrUnauthorized)
	}

	fresh, err := refresher.RefreshToken(ctx, acc.RefreshToken)
	if err != nil {
		log.Info("provider token refresh failed", slog.Any("error", err))
		return domain.ProviderToken{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	acc.AccessToken = fresh.AccessToken
	acc.RefreshToken = fresh.RefreshToken
	acc.ExpiresAt = nil
	if fresh.ExpiresAt > 0 {
		exp := fresh.ExpiresAt
		acc.ExpiresAt = &exp
	}
	if err := s.Store.Accounts().UpdateAccount(ctx, acc); err != nil {
		return domain.ProviderToken{}, fmt.Errorf("persist refreshed provider token: %w", err)
	}

	log.Debug("provider token refreshed")
	return fresh, nil
}
