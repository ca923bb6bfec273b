package domain

import "time"

type User struct {
	ID           string
	TenantID     string
	Username     string
	PasswordHash string     // argon2 encoded
	Role         Role       // single role per user; claims carry it as a set
	MFAEnabled   *time.Time // Timestamp when TOTP was enabled (nullable)
	MFASecret    *string    // TOTP secret (nullable, base32 encoded)
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
