package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/metrics"
	"github.com/aussiebroadwan/beatme/internal/auth/provider"
	"github.com/aussiebroadwan/beatme/internal/auth/store"
	"github.com/aussiebroadwan/beatme/pkg/idx"
	"github.com/aussiebroadwan/beatme/pkg/slogx"
	"github.com/google/uuid"
)

// Adapters resolves the adapter for a provider. *provider.Registry
// implements it.
type Adapters interface {
	Get(p domain.Provider) (provider.Adapter, error)
}

// Issuer mints session tokens for a user.
type Issuer interface {
	Issue(ctx context.Context, userID string) (domain.TokenPair, error)
}

// OAuthService drives the sign-in flow shared by every provider: exchange
// the code, fetch the profile, reconcile it with stored accounts and issue
// a session.
type OAuthService struct {
	Providers Adapters
	Store     store.Store
	Tokens    Issuer
	Metrics   metrics.Recorder
	Now       func() time.Time
}

func (s *OAuthService) recorder() metrics.Recorder {
	if s.Metrics == nil {
		return metrics.Nop{}
	}
	return s.Metrics
}

func (s *OAuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OAuthService) adapter(p domain.Provider) (provider.Adapter, error) {
	a, err := s.Providers.Get(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, p.Slug())
	}
	return a, nil
}

// AuthorizeLink returns the consent URL the client should open to start a
// sign-in with p.
func (s *OAuthService) AuthorizeLink(ctx context.Context, p domain.Provider) (string, error) {
	a, err := s.adapter(p)
	if err != nil {
		return "", err
	}
	return a.AuthorizeURL(), nil
}

// flow tracks the current state of one Complete call for logging and error
// reporting.
type flow struct {
	provider domain.Provider
	state    FlowState
	log      *slog.Logger
}

func (f *flow) enter(state FlowState) {
	f.state = state
	f.log.Debug("oauth flow transition", slog.String("state", string(state)))
}

func (f *flow) fail(err error) error {
	f.log.Info("oauth flow failed",
		slog.String("state", string(f.state)),
		slog.Any("error", err),
	)
	return &FlowError{Provider: f.provider, State: f.state, Err: err}
}

// Complete finishes a sign-in with the authorization code the provider
// redirected back with. ambientUserID is the caller's current session user,
// empty for anonymous callers; when set, a new provider identity is linked to
// that user instead of creating a new one.
func (s *OAuthService) Complete(ctx context.Context, p domain.Provider, code, ambientUserID string) (pair domain.TokenPair, err error) {
	f := &flow{
		provider: p,
		state:    StateAwaitingCode,
		log:      slogx.FromContext(ctx).With(slog.String("provider", p.Slug())),
	}

	defer func() {
		s.recorder().OAuthFlow(p.Slug(), flowOutcome(err))
	}()

	a, err := s.adapter(p)
	if err != nil {
		return domain.TokenPair{}, f.fail(err)
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return domain.TokenPair{}, f.fail(fmt.Errorf("%w: code is required", ErrBadRequest))
	}

	// 1. Trade the code for provider tokens
	f.enter(StateExchanging)
	tok, err := a.ExchangeCode(ctx, code)
	if err != nil {
		return domain.TokenPair{}, f.fail(fmt.Errorf("%w: %w", ErrUnauthorized, err))
	}

	// 2. Load the identity behind them
	f.enter(StateFetchingProfile)
	profile, err := a.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return domain.TokenPair{}, f.fail(fmt.Errorf("%w: %w", ErrUnauthorized, err))
	}

	// 3. Find or create the account and its owner
	f.enter(StateReconcilingIdentity)
	userID, err := s.reconcile(ctx, p, profile, tok, ambientUserID)
	if err != nil {
		return domain.TokenPair{}, f.fail(err)
	}
	f.log = f.log.With(slog.String("user_id", userID))

	// 4. Start the session
	f.enter(StateIssuingTokens)
	pair, err = s.Tokens.Issue(ctx, userID)
	if err != nil {
		return domain.TokenPair{}, f.fail(err)
	}

	f.enter(StateDone)
	f.log.Info("oauth sign-in completed")
	return pair, nil
}

// reconcile maps a provider profile onto a user id. A concurrent first
// sign-in for the same identity makes the account insert fail with
// ErrAlreadyExists; the second attempt then sees the account and updates it.
func (s *OAuthService) reconcile(ctx context.Context, p domain.Provider, profile domain.Profile, tok domain.ProviderToken, ambientUserID string) (string, error) {
	var (
		userID string
		err    error
	)
	for attempt := 0; attempt < 2; attempt++ {
		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			id, txErr := s.reconcileTx(ctx, tx, p, profile, tok, ambientUserID)
			userID = id
			return txErr
		})
		if !errors.Is(err, store.ErrAlreadyExists) {
			break
		}
		slogx.FromContext(ctx).Info("account created concurrently, retrying",
			slog.String("provider", p.Slug()),
			slog.String("external_id", profile.ExternalID),
		)
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (s *OAuthService) reconcileTx(ctx context.Context, tx store.Tx, p domain.Provider, profile domain.Profile, tok domain.ProviderToken, ambientUserID string) (string, error) {
	acc, err := tx.Accounts().FindAccount(ctx, p, profile.ExternalID)
	switch {
	case err == nil:
		return s.updateExisting(ctx, tx, acc, profile, tok, ambientUserID)
	case errors.Is(err, store.ErrNotFound):
	default:
		return "", err
	}

	userID, err := s.resolveNewOwner(ctx, tx, ambientUserID)
	if err != nil {
		return "", err
	}

	acc = domain.NewAuthAccount(idx.New().String(), p, profile, tok)
	if err := tx.Accounts().CreateAccount(ctx, acc); err != nil {
		return "", err
	}
	if err := tx.Accounts().LinkAccount(ctx, userID, acc.ID); err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("auth account created",
		slog.String("provider", p.Slug()),
		slog.String("account_id", acc.ID),
		slog.String("user_id", userID),
		slog.Bool("linked", ambientUserID != ""),
	)
	return userID, nil
}

// updateExisting refreshes a known account. The account's owner always wins:
// a signed-in caller completing a flow for an identity owned by someone else
// gets ErrAccountConflict.
func (s *OAuthService) updateExisting(ctx context.Context, tx store.Tx, acc domain.AuthAccount, profile domain.Profile, tok domain.ProviderToken, ambientUserID string) (string, error) {
	owner, err := tx.Accounts().GetAccountOwner(ctx, acc.ID)
	switch {
	case err == nil:
		if ambientUserID != "" && ambientUserID != owner {
			return "", fmt.Errorf("%w: %s account is linked to another user", ErrAccountConflict, acc.Provider.Slug())
		}
	case errors.Is(err, store.ErrNotFound):
		// Unowned account: adopt it.
		owner, err = s.resolveNewOwner(ctx, tx, ambientUserID)
		if err != nil {
			return "", err
		}
		if err := tx.Accounts().LinkAccount(ctx, owner, acc.ID); err != nil {
			return "", err
		}
	default:
		return "", err
	}

	acc.Apply(profile, tok)
	if err := tx.Accounts().UpdateAccount(ctx, acc); err != nil {
		return "", err
	}
	return owner, nil
}

// resolveNewOwner returns the ambient user, or creates a fresh one for
// anonymous callers.
func (s *OAuthService) resolveNewOwner(ctx context.Context, tx store.Tx, ambientUserID string) (string, error) {
	if ambientUserID != "" {
		if _, err := tx.Users().GetUserByID(ctx, ambientUserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return "", fmt.Errorf("%w: session user no longer exists", ErrUnauthorized)
			}
			return "", err
		}
		return ambientUserID, nil
	}

	u := domain.User{ID: uuid.NewString(), CreatedAt: s.now()}
	if err := tx.Users().CreateUser(ctx, u); err != nil {
		return "", err
	}
	return u.ID, nil
}

func flowOutcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrUnsupportedProvider):
		return "unsupported"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAccountConflict):
		return "conflict"
	default:
		return "error"
	}
}
