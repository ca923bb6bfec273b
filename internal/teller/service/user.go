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
	"github.com/aussiebroadwan/tellerdesk/pkg/slogx"
)

var ErrMFARequired = errors.New("mfa_required")

// UserService covers login and provisioning. Registration is deliberately
// absent from the public surface; users come from the bootstrap admin or an
// operator acting through the store.
type UserService struct {
	Store store.Store
}

// Authenticate verifies a username/password pair within a tenant. When the
// user has TOTP enrolled a valid otpCode is also required.
func (s *UserService) Authenticate(ctx context.Context, tenantID, username, password, otpCode string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, tenantID, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash comparison anyway so missing users take as
			// long as wrong passwords
			_ = cryptox.VerifyPassword(password, dummyHash)
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		l.Info("password verification failed",
			slog.String("tenant_id", tenantID),
			slog.String("username", username),
		)
		return domain.User{}, ErrInvalidCredentials
	}

	if user.MFAEnabled != nil {
		if otpCode == "" {
			return domain.User{}, ErrMFARequired
		}
		if err := VerifyTOTP(user, otpCode); err != nil {
			l.Info("otp verification failed",
				slog.String("tenant_id", tenantID),
				slog.String("username", username),
			)
			return domain.User{}, ErrInvalidCredentials
		}
	}

	return user, nil
}

// CreateUser provisions a user with a freshly hashed password.
func (s *UserService) CreateUser(ctx context.Context, tenantID, username, password string, role domain.Role) (domain.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New().String(),
		TenantID:     tenantID,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// dummyHash is a throwaway argon2id hash used to equalise timing on unknown
// usernames. Never matches any real password.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
