package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
	Validate() error
}

// MinSecretBytes is the smallest HS256 secret we will accept. Anything
// shorter than the hash output weakens the MAC.
const MinSecretBytes = 32

// HS256Signer implements the Signer interface using an HMAC-SHA256 shared
// secret.
type HS256Signer struct {
	secret []byte
	alg    string
}

// NewSignerHS256 creates an HS256 signer from a shared secret.
func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < MinSecretBytes {
		return nil, errors.New("jwtx: HS256 secret too short")
	}
	return &HS256Signer{
		secret: secret,
		alg:    jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (s *HS256Signer) Alg() string { return s.alg }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Validate does a quick sanity check to make sure we actually have a secret.
func (s *HS256Signer) Validate() error {
	if len(s.secret) < MinSecretBytes {
		return errors.New("jwtx: HS256 secret too short")
	}
	return nil
}
