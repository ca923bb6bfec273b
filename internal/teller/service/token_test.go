package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/service"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store/drivers/sqlite"
	"github.com/aussiebroadwan/tellerdesk/pkg/cryptox"
	"github.com/aussiebroadwan/tellerdesk/pkg/idx"
	"github.com/aussiebroadwan/tellerdesk/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

const testIssuer = "tellerdesk-test"

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTokenService(t *testing.T, s store.Store) *service.TokenService {
	t.Helper()

	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	verifier := jwtx.NewVerifierHS256(testSecret, testIssuer, time.Hour)

	return &service.TokenService{
		Signer:     signer,
		Verifier:   verifier,
		Store:      s,
		Issuer:     testIssuer,
		AccessTTL:  2 * time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func seedUser(t *testing.T, s store.Store, tenantID, username string, role domain.Role) domain.User {
	t.Helper()

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		TenantID:     tenantID,
		Username:     username,
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestIssueThenVerify(t *testing.T) {
	s := newTestStore(t)
	svc := newTokenService(t, s)
	ctx := context.Background()
	user := seedUser(t, s, "tenant-a", "alice", domain.RoleCustomer)

	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.Verify(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.Subject)
	require.Equal(t, "tenant-a", claims.TenantID)
	require.Equal(t, []string{"customer"}, claims.Roles)
	require.False(t, claims.Dev)
}

func TestVerifyRevokedWinsOverExpired(t *testing.T) {
	s := newTestStore(t)
	svc := newTokenService(t, s)
	ctx := context.Background()

	// Sign a token already expired well beyond the verifier's leeway
	signer, err := jwtx.NewSignerHS256(testSecret)
	require.NoError(t, err)
	claims := jwtx.NewAccessClaims("user-1", "tenant-a", []string{"customer"}, false,
		time.Hour, testIssuer, "alice", time.Now().Add(-48*time.Hour))
	token, err := signer.Sign(claims)
	require.NoError(t, err)

	// Without revocation it fails as expired
	_, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	// After revocation the revoked error takes precedence
	require.NoError(t, svc.Revoke(ctx, claims.ID, claims.ExpiresAt.Time))
	_, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, service.ErrRevoked)
}

func TestRevokeIdempotent(t *testing.T) {
	s := newTestStore(t)
	svc := newTokenService(t, s)
	ctx := context.Background()

	exp := time.Now().Add(time.Hour)
	require.NoError(t, svc.Revoke(ctx, "some-jti", exp))
	require.NoError(t, svc.Revoke(ctx, "some-jti", exp))
	require.NoError(t, svc.Revoke(ctx, "never-issued", exp))
}

func TestRefreshRotation(t *testing.T) {
	s := newTestStore(t)
	svc := newTokenService(t, s)
	ctx := context.Background()
	user := seedUser(t, s, "tenant-a", "alice", domain.RoleCustomer)

	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	claims, err := svc.Verify(ctx, rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.Subject)

	t.Run("old refresh token is consumed", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, service.ErrInvalidRefresh)
	})

	t.Run("rotated token still works", func(t *testing.T) {
		_, err := svc.Refresh(ctx, rotated.RefreshToken)
		require.NoError(t, err)
	})
}

func TestRefreshExpired(t *testing.T) {
	s := newTestStore(t)
	svc := newTokenService(t, s)
	ctx := context.Background()
	user := seedUser(t, s, "tenant-a", "alice", domain.RoleCustomer)

	opaque, err := cryptox.GenerateToken(cryptox.TokenSize256)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, s.RefreshTokens().CreateRefreshToken(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    user.ID,
		TenantID:  user.TenantID,
		TokenHash: cryptox.FingerprintToken(opaque),
		ExpiresAt: now.Add(-time.Minute),
		CreatedAt: now.Add(-25 * time.Hour),
	}))

	_, err = svc.Refresh(ctx, opaque)
	require.ErrorIs(t, err, service.ErrExpiredRefresh)

	// The stale row was deleted eagerly, so a retry reports invalid
	_, err = svc.Refresh(ctx, opaque)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestRefreshPicksUpRoleChanges(t *testing.T) {
	s := newTestStore(t)
	svc := newTokenService(t, s)
	ctx := context.Background()
	user := seedUser(t, s, "tenant-a", "alice", domain.RoleCustomer)

	pair, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)

	// Simulate an operator demoting the user between refreshes
	require.NoError(t, s.Users().UpdateUserRole(ctx, user.ID, domain.RoleReadOnly))

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Verify(ctx, rotated.AccessToken)
	require.NoError(t, err)
	require.Equal(t, []string{"read_only"}, claims.Roles)
}

func TestDevClaimOnlyForConfiguredSubjects(t *testing.T) {
	s := newTestStore(t)
	svc := newTokenService(t, s)
	ctx := context.Background()
	dev := seedUser(t, s, "tenant-a", "dev", domain.RoleAdmin)
	prod := seedUser(t, s, "tenant-a", "prod", domain.RoleAdmin)

	svc.DevMode = true
	svc.DevSubjects = map[string]struct{}{dev.ID: {}}

	devPair, err := svc.IssuePair(ctx, dev)
	require.NoError(t, err)
	claims, err := svc.Verify(ctx, devPair.AccessToken)
	require.NoError(t, err)
	require.True(t, claims.Dev)

	prodPair, err := svc.IssuePair(ctx, prod)
	require.NoError(t, err)
	claims, err = svc.Verify(ctx, prodPair.AccessToken)
	require.NoError(t, err)
	require.False(t, claims.Dev)

	t.Run("dev mode off suppresses the claim entirely", func(t *testing.T) {
		svc.DevMode = false
		pair, err := svc.IssuePair(ctx, dev)
		require.NoError(t, err)
		claims, err := svc.Verify(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.False(t, claims.Dev)
	})
}
