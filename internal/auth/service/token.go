package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/beatme/internal/auth/domain"
	"github.com/aussiebroadwan/beatme/internal/auth/metrics"
	"github.com/aussiebroadwan/beatme/internal/auth/tokenstore"
	"github.com/aussiebroadwan/beatme/pkg/cryptox"
	"github.com/aussiebroadwan/beatme/pkg/jwtx"
	"github.com/aussiebroadwan/beatme/pkg/slogx"
)

// TokenService issues, looks up, revokes and refreshes session token pairs.
// A token is valid only while its signature verifies, its exp hasn't passed
// and it still has an entry in the token store.
type TokenService struct {
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Tokens     tokenstore.Store
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Metrics    metrics.Recorder
	Now        func() time.Time
}

func NewTokenService(codec interface {
	jwtx.Signer
	jwtx.Verifier
}, tokens tokenstore.Store, accessTTL, refreshTTL time.Duration, rec metrics.Recorder) *TokenService {
	if accessTTL <= 0 {
		accessTTL = jwtx.DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = jwtx.DefaultRefreshTokenTTL
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &TokenService{
		Signer:     codec,
		Verifier:   codec,
		Tokens:     tokens,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		Metrics:    rec,
		Now:        time.Now,
	}
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Issue mints a new access/refresh pair for userID and records both in the
// token store. Each entry points at its partner so either side can revoke
// the pair.
func (s *TokenService) Issue(ctx context.Context, userID string) (domain.TokenPair, error) {
	now := s.now()
	accessExp := now.Add(s.AccessTTL)
	refreshExp := now.Add(s.RefreshTTL)

	access, err := s.Signer.Sign(jwtx.NewAccessClaims(userID, now, accessExp))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.Signer.Sign(jwtx.NewRefreshClaims(userID, access, now, refreshExp))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	// The access entry lives as long as the pair so a refresh can still
	// revoke it after the access JWT itself has expired.
	pairTTL := max(refreshExp.Sub(now), accessExp.Sub(now))

	accessRec := domain.TokenRecord{UserID: userID, Exp: accessExp.Unix(), RefreshToken: refresh}
	if err := s.put(ctx, access, accessRec, pairTTL); err != nil {
		return domain.TokenPair{}, err
	}

	refreshRec := domain.TokenRecord{UserID: userID, Exp: refreshExp.Unix(), AccessToken: access}
	if err := s.put(ctx, refresh, refreshRec, refreshExp.Sub(now)); err != nil {
		if _, derr := s.Tokens.Delete(ctx, access); derr != nil {
			slogx.FromContext(ctx).Warn("failed to roll back access token", slog.Any("error", derr))
		}
		return domain.TokenPair{}, err
	}

	s.Metrics.TokensIssued()
	slogx.FromContext(ctx).Debug("issued token pair",
		slog.String("user_id", userID),
		slog.String("token_fp", cryptox.ShortFingerprint(access)),
	)

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    accessExp.Unix(),
	}, nil
}

func (s *TokenService) put(ctx context.Context, key string, rec domain.TokenRecord, ttl time.Duration) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.Tokens.Set(ctx, key, raw, ttl); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	return nil
}

// Lookup returns the store record for token. A missing entry is
// ErrUnauthorized; other store failures are returned as is.
func (s *TokenService) Lookup(ctx context.Context, token string) (domain.TokenRecord, error) {
	raw, err := s.Tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, tokenstore.ErrNotFound) {
			return domain.TokenRecord{}, fmt.Errorf("%w: token not in store", ErrUnauthorized)
		}
		return domain.TokenRecord{}, fmt.Errorf("load token: %w", err)
	}

	var rec domain.TokenRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.TokenRecord{}, fmt.Errorf("decode token record: %w", err)
	}
	return rec, nil
}

// Authenticate verifies raw and then checks the store. An invalid or
// expired token fails before the store is queried.
func (s *TokenService) Authenticate(ctx context.Context, raw string) (domain.TokenRecord, error) {
	_, rec, err := s.authenticate(ctx, raw)
	return rec, err
}

func (s *TokenService) authenticate(ctx context.Context, raw string) (jwtx.Claims, domain.TokenRecord, error) {
	claims, err := s.Verifier.Verify(raw)
	if err != nil {
		return jwtx.Claims{}, domain.TokenRecord{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	rec, err := s.Lookup(ctx, raw)
	if err != nil {
		return jwtx.Claims{}, domain.TokenRecord{}, err
	}
	if rec.UserID != claims.UserID {
		return jwtx.Claims{}, domain.TokenRecord{}, fmt.Errorf("%w: token subject mismatch", ErrUnauthorized)
	}
	return claims, rec, nil
}

// Revoke deletes token and its partner. It reports false when token had no
// entry, including when a concurrent revoke got there first.
func (s *TokenService) Revoke(ctx context.Context, token string) (bool, error) {
	rec, err := s.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return false, nil
		}
		return false, err
	}

	n, err := s.Tokens.Delete(ctx, token)
	if err != nil {
		return false, fmt.Errorf("delete token: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	revoked := int(n)
	if partner := rec.Partner(); partner != "" {
		m, err := s.Tokens.Delete(ctx, partner)
		if err != nil {
			slogx.FromContext(ctx).Warn("failed to delete partner token",
				slog.String("user_id", rec.UserID),
				slog.Any("error", err),
			)
		}
		revoked += int(m)
	}

	s.Metrics.TokensRevoked(revoked)
	return true, nil
}

// Refresh trades a refresh token for a fresh pair. The old pair is revoked
// first, so a refresh token works exactly once.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx)

	claims, rec, err := s.authenticate(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.Metrics.TokenRefresh("unknown")
		}
		return domain.TokenPair{}, err
	}
	// The claim and the store entry must agree on the paired access token.
	if !claims.IsRefresh() || rec.AccessToken != claims.AccessToken {
		s.Metrics.TokenRefresh("not_refresh")
		return domain.TokenPair{}, fmt.Errorf("%w: not a refresh token", ErrUnauthorized)
	}

	ok, err := s.Revoke(ctx, rec.AccessToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !ok {
		s.Metrics.TokenRefresh("reused")
		log.Info("refresh token reused",
			slog.String("user_id", rec.UserID),
			slog.String("token_fp", cryptox.ShortFingerprint(refreshToken)),
		)
		return domain.TokenPair{}, fmt.Errorf("%w: refresh token already used", ErrUnauthorized)
	}

	pair, err := s.Issue(ctx, rec.UserID)
	if err != nil {
		return domain.TokenPair{}, err
	}
	s.Metrics.TokenRefresh("success")
	return pair, nil
}
