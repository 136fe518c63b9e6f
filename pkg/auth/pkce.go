package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// randomEntropyBytes is the raw entropy behind each verifier and state
// token. 32 bytes encode to 43 base64url characters, which sits inside the
// RFC 7636 verifier bounds (43-128) and carries 256 bits of entropy.
const randomEntropyBytes = 32

// PKCEPair is a code verifier and its S256-derived challenge. A fresh pair
// is generated per login attempt and never persisted or logged.
type PKCEPair struct {
	Verifier  string
	Challenge string
}

// GeneratePKCEPair generates a PKCE verifier/challenge pair per RFC 7636.
// The challenge is base64url(SHA-256(verifier)) without padding.
func GeneratePKCEPair() (*PKCEPair, error) {
	raw := make([]byte, randomEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoUnavailable, err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))

	return &PKCEPair{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
	}, nil
}

// GenerateState generates an unguessable anti-CSRF state token for a single
// login attempt.
func GenerateState() (string, error) {
	raw := make([]byte, randomEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptoUnavailable, err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
