// Package token mints and verifies the self-contained signed session tokens
// that carry authentication state between requests. A token's validity is
// determined entirely by its signature and expiry; there is no revocation
// mechanism, so an issued token stays valid for its whole stated lifetime.
// This is a deliberate simplicity/availability trade-off.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrMalformed is returned when the token structure cannot be parsed
	ErrMalformed = errors.New("malformed token")

	// ErrInvalidSignature is returned when the signature does not match
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrExpired is returned when the token is past its expiry instant
	ErrExpired = errors.New("token expired")
)

// Claims is the claim set embedded in and recovered from a signed token
type Claims struct {
	SubjectID   uuid.UUID
	DisplayName string
	Email       string
	Role        string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// jwtClaims is the wire representation of Claims
type jwtClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Codec issues and verifies signed session tokens with a symmetric key
// loaded once at startup and never mutated. Codec methods are pure and safe
// for unrestricted concurrent use.
type Codec struct {
	key []byte
}

// NewCodec creates a Codec signing with the given secret
func NewCodec(secret string) *Codec {
	return &Codec{key: []byte(secret)}
}

// Issue mints a signed token for the given subject. The signature covers the
// full claim set: subject id, display name, email, role, issued-at and
// expiry (issued-at + ttl).
func (c *Codec) Issue(subjectID uuid.UUID, displayName, email, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		Username: displayName,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. It fails with ErrMalformed,
// ErrInvalidSignature or ErrExpired; any token whose signature does not
// cover the full claim set is rejected.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &jwtClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return c.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrMalformed
		}
	}

	wire, ok := parsed.Claims.(*jwtClaims)
	if !ok || wire.ExpiresAt == nil || wire.IssuedAt == nil {
		return nil, ErrMalformed
	}

	subjectID, err := uuid.Parse(wire.Subject)
	if err != nil {
		return nil, ErrMalformed
	}

	return &Claims{
		SubjectID:   subjectID,
		DisplayName: wire.Username,
		Email:       wire.Email,
		Role:        wire.Role,
		IssuedAt:    wire.IssuedAt.Time,
		ExpiresAt:   wire.ExpiresAt.Time,
	}, nil
}
