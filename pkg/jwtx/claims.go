package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. These provide sensible security defaults but
// can be overridden per-service via configuration.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 2 * time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 24 * time.Hour

	// DefaultLeeway is the clock-skew tolerance applied when validating
	// exp/nbf. Because time sync is never perfect.
	DefaultLeeway = time.Hour
)

// Token type values carried in the "token_type" claim. Only access tokens are
// accepted by the verifier; this stops a refresh token being replayed as an
// access token.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims are access-token claims used across the service, we are keeping
// additive changes to preserve compatibility for later.
type Claims struct {
	jwt.RegisteredClaims

	/* Cross-service custom fields */

	// TenantID scopes the subject to a tenant.
	TenantID string `json:"tid,omitempty"`

	// Roles held by the subject, e.g. ["customer"], ["admin"].
	Roles []string `json:"roles,omitempty"`

	// TokenType distinguishes access tokens from anything else ("access").
	TokenType string `json:"token_type,omitempty"`

	// Dev marks a designated development identity. Only ever set at
	// issuance time; the gateway honors caller-declared tenant/user ids
	// only when this is true.
	Dev bool `json:"dev,omitempty"`

	// Username for the authenticated user.
	Username string `json:"username,omitempty"`
}

// NewAccessClaims builds minimally-correct access-token claims.
func NewAccessClaims(
	subject, tenantID string,
	roles []string,
	dev bool,
	ttl time.Duration,
	issuer string,
	username string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TenantID:  tenantID,
		Roles:     roles,
		TokenType: TokenTypeAccess,
		Dev:       dev,
		Username:  username,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}

// ValidateTokenType ensures the token is an access token.
func (c *Claims) ValidateTokenType() error {
	if c.TokenType != TokenTypeAccess {
		return ErrTokenType
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	// Check After Leeway
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	// Check Before Leeway
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
