package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/pkg/cryptox"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
	"github.com/aussiebroadwan/tellerdesk/pkg/jwtx"
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrExpiredRefresh     = errors.New("expired_refresh_token")
	ErrRevoked            = errors.New("token_revoked")
)

// TokenService issues, verifies, refreshes and revokes tokens. Access tokens
// are signed JWTs; refresh tokens are opaque values stored by fingerprint.
type TokenService struct {
	Signer     jwtx.Signer
	Verifier   jwtx.Verifier
	Store      store.Store
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	// DevSubjects lists user ids that receive the development identity
	// claim at issuance. Only honoured when DevMode is set, so production
	// config cannot mint override-capable tokens by accident.
	DevMode     bool
	DevSubjects map[string]struct{}
}

// IssuePair signs an access token for the user and creates a refresh token.
func (s *TokenService) IssuePair(ctx context.Context, user domain.User) (*domain.TokenPair, error) {
	now := time.Now()

	accessToken, err := s.signAccess(user, now)
	if err != nil {
		return nil, err
	}

	refreshOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	rt := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TenantID:  user.TenantID,
		TokenHash: cryptox.FingerprintToken(refreshOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now.UTC(),
	}
	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, rt); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Verify validates an access token. The revocation check runs on the jti
// extracted before signature verification so a revoked token reports Revoked
// even once it has also expired.
func (s *TokenService) Verify(ctx context.Context, token string) (jwtx.Claims, error) {
	jti, err := jwtx.PeekJTI(token)
	if err != nil {
		return jwtx.Claims{}, err
	}

	revoked, err := s.Store.RevokedTokens().IsRevoked(ctx, jti)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if revoked {
		return jwtx.Claims{}, ErrRevoked
	}

	return s.Verifier.Verify(token)
}

// Refresh rotates a refresh token: the presented value is consumed and a new
// pair is issued. A second use of the same value fails because the old
// mapping is deleted in the same transaction that records the new one.
func (s *TokenService) Refresh(ctx context.Context, refreshOpaque string) (*domain.TokenPair, error) {
	now := time.Now()
	l := slogx.FromContext(ctx)

	// 1. Lookup the persisted refresh row by token fingerprint
	fp := cryptox.FingerprintToken(refreshOpaque)
	rt, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	// 2. Expired rows are dropped eagerly rather than waiting for the sweep
	if now.After(rt.ExpiresAt) {
		if err := s.Store.RefreshTokens().DeleteRefreshToken(ctx, fp); err != nil {
			l.Error("failed to delete expired refresh token", slog.Any("error", err))
		}
		return nil, ErrExpiredRefresh
	}

	// 3. Re-resolve the user so the new access token carries the current role
	user, err := s.Store.Users().GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}

	accessToken, err := s.signAccess(user, now)
	if err != nil {
		return nil, err
	}

	newOpaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return nil, err
	}

	newRT := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TenantID:  user.TenantID,
		TokenHash: cryptox.FingerprintToken(newOpaque),
		ExpiresAt: now.Add(s.RefreshTTL),
		CreatedAt: now.UTC(),
	}

	// 4. Atomically consume the old mapping and record the rotated one
	if err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().DeleteRefreshToken(ctx, fp); err != nil {
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRT)
	}); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newOpaque,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// Revoke adds a jti to the revocation set. Idempotent; revoking an unknown or
// already revoked jti succeeds.
func (s *TokenService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return s.Store.RevokedTokens().RevokeJTI(ctx, domain.RevokedToken{
		JTI:       jti,
		ExpiresAt: expiresAt,
		RevokedAt: time.Now().UTC(),
	})
}

func (s *TokenService) signAccess(user domain.User, now time.Time) (string, error) {
	claims := jwtx.NewAccessClaims(
		user.ID,
		user.TenantID,
		domain.RoleStrings([]domain.Role{user.Role}),
		s.isDev(user.ID),
		s.AccessTTL,
		s.Issuer,
		user.Username,
		now,
	)
	return s.Signer.Sign(claims)
}

func (s *TokenService) isDev(userID string) bool {
	if !s.DevMode {
		return false
	}
	_, ok := s.DevSubjects[userID]
	return ok
}
