package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrAlgMismatch = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")

	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrNotYetValid  = errors.New("jwtx: token not yet valid")
	ErrTokenType    = errors.New("jwtx: not an access token")
	ErrInvalidClaim = errors.New("jwtx: invalid claims")
)

// HS256Verifier validates JWTs signed with an HMAC-SHA256 shared secret.
type HS256Verifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewVerifierHS256 creates a verifier for the given shared secret. Leeway
// allows small clock skew when validating exp/nbf.
func NewVerifierHS256(secret []byte, issuer string, leeway time.Duration) *HS256Verifier {
	return &HS256Verifier{secret: secret, issuer: issuer, leeway: leeway}
}

// Verify validates the JWT string and returns its parsed Claims.
func (v *HS256Verifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidClaim
	}

	// Now check all the claim requirements
	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateTokenType(); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiryWithLeeway(v.leeway); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}

// PeekJTI extracts the "jti" claim without verifying the signature. Used by
// the revocation check, which must run before signature validation so revoked
// tokens fail as revoked rather than as expired.
func PeekJTI(tokenStr string) (string, error) {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if claims.ID == "" {
		return "", ErrInvalidClaim
	}
	return claims.ID, nil
}
