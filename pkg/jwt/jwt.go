// Package jwt signs and verifies HS256 tokens with arbitrary claims
// structs. Claims round-trip through JSON, so any struct with json tags
// works on both sides.
package jwt

import (
	"encoding/json"
	"errors"
	"fmt"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret      = errors.New("jwt: signing secret is empty")
	ErrWeakSecret       = errors.New("jwt: signing secret must be at least 32 bytes")
	ErrInvalidToken     = errors.New("jwt: invalid token")
	ErrExpiredToken     = errors.New("jwt: token expired")
	ErrInvalidSignature = errors.New("jwt: invalid signature")
)

// Service signs and parses tokens with a single HMAC secret.
type Service struct {
	secret []byte
}

// New creates a Service. The secret must be at least 32 bytes.
func New(secret []byte) (*Service, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	return &Service{secret: secret}, nil
}

// NewFromString creates a Service from a string secret.
func NewFromString(secret string) (*Service, error) {
	return New([]byte(secret))
}

// Generate signs claims into a compact HS256 token.
func (s *Service) Generate(claims any) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("jwt: marshal claims: %w", err)
	}
	var mc jwtlib.MapClaims
	if err := json.Unmarshal(payload, &mc); err != nil {
		return "", fmt.Errorf("jwt: claims must encode to a JSON object: %w", err)
	}
	return jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, mc).SignedString(s.secret)
}

// Parse verifies the token signature and registered claims, then decodes
// the payload into v. Expired tokens return ErrExpiredToken; signature
// mismatches return ErrInvalidSignature.
func (s *Service) Parse(token string, v any) error {
	parsed, err := jwtlib.ParseWithClaims(token, jwtlib.MapClaims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return ErrExpiredToken
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return ErrInvalidSignature
		default:
			return fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
	}

	payload, err := json.Marshal(parsed.Claims)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return nil
}
