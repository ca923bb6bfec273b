package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/tellerdesk/internal/teller/domain"
	"github.com/aussiebroadwan/tellerdesk/internal/teller/store"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidTOTPCode   = errors.New("invalid TOTP code")
	ErrMFANotEnrolled    = errors.New("MFA not enrolled for this user")
	ErrMFAAlreadyEnabled = errors.New("MFA already enabled for this user")
)

// MFAEnrollResponse carries the generated TOTP secret and provisioning URL.
type MFAEnrollResponse struct {
	Secret  string `json:"secret"`
	URL     string `json:"url"`
	Issuer  string `json:"issuer"`
	Account string `json:"account"`
}

type MFAService struct {
	Store  store.Store
	Issuer string // Issuer name for TOTP authenticator entries
}

// EnrollTOTP generates a TOTP secret for the user and returns it with the
// provisioning URL. MFA is not enabled until VerifyTOTP succeeds.
func (s *MFAService) EnrollTOTP(ctx context.Context, userID, username string) (MFAEnrollResponse, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return MFAEnrollResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user.MFAEnabled != nil {
		return MFAEnrollResponse{}, ErrMFAAlreadyEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: username,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return MFAEnrollResponse{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	if err := s.Store.Users().UpdateMFASecret(ctx, userID, key.Secret()); err != nil {
		return MFAEnrollResponse{}, fmt.Errorf("failed to store MFA secret: %w", err)
	}

	return MFAEnrollResponse{
		Secret:  key.Secret(),
		URL:     key.URL(),
		Issuer:  s.Issuer,
		Account: username,
	}, nil
}

// VerifyTOTP verifies a TOTP code and enables MFA for the user if valid.
func (s *MFAService) VerifyTOTP(ctx context.Context, userID, code string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}
	if user.MFAEnabled != nil {
		return ErrMFAAlreadyEnabled
	}

	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}

	return s.Store.Users().EnableMFA(ctx, userID)
}

// DisableTOTP clears the user's enrollment.
func (s *MFAService) DisableTOTP(ctx context.Context, userID string) error {
	return s.Store.Users().DisableMFA(ctx, userID)
}

// VerifyTOTP checks a code against an already enabled user's secret. Used by
// the login path.
func VerifyTOTP(user domain.User, code string) error {
	if user.MFASecret == nil || *user.MFASecret == "" {
		return ErrMFANotEnrolled
	}
	if !totp.Validate(code, *user.MFASecret) {
		return ErrInvalidTOTPCode
	}
	return nil
}
