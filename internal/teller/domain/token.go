package domain

import "time"

// TokenPair represents what the login and refresh endpoints return the
// short-lived access token (JWT) and the opaque refresh token.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // seconds until expiry
}

// RefreshToken models the stored refresh token record in the DB. The opaque
// value itself is never persisted, only its fingerprint.
type RefreshToken struct {
	ID        string
	UserID    string
	TenantID  string
	TokenHash string // deterministic fingerprint (base64url SHA-256)
	ExpiresAt time.Time
	CreatedAt time.Time
}

// RevokedToken is a revocation-set entry. ExpiresAt mirrors the access
// token's expiry so housekeeping can drop entries that can no longer verify
// anyway.
type RevokedToken struct {
	JTI       string
	ExpiresAt time.Time
	RevokedAt time.Time
}
