// Package auth issues and verifies the bearer tokens that identify API callers.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AnshRaj112/contactbook-backend/internal/apperrors"
)

// TokenLifetime is how long an issued token stays valid.
const TokenLifetime = 30 * 24 * time.Hour

// TokenService signs tokens with a process-wide HMAC secret. The secret is
// fixed for the life of the process; rotating it invalidates every token.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// tokenClaims carries only registered claims; the subject is the user id.
type tokenClaims struct {
	jwt.RegisteredClaims
}

// NewTokenService returns a service signing with secret. now may be nil.
func NewTokenService(secret string, now func() time.Time) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is required")
	}
	if now == nil {
		now = time.Now
	}
	return &TokenService{secret: []byte(secret), now: now}, nil
}

// Issue returns a signed token for userID expiring TokenLifetime from now.
func (s *TokenService) Issue(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("issue token: user id is required")
	}
	now := s.now().UTC().Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first and expiry second, returning the user
// id. Failures are apperrors with CodeTokenInvalid or CodeTokenExpired.
func (s *TokenService) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperrors.New(apperrors.CodeTokenInvalid, "Token is required")
	}

	var claims tokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeTokenInvalid, "Token is invalid", err)
	}

	if strings.TrimSpace(claims.Subject) == "" {
		return "", apperrors.New(apperrors.CodeTokenInvalid, "Token has no subject")
	}
	if claims.ExpiresAt == nil {
		return "", apperrors.New(apperrors.CodeTokenInvalid, "Token has no expiry")
	}
	if !claims.ExpiresAt.Time.After(s.now()) {
		return "", apperrors.New(apperrors.CodeTokenExpired, "Token has expired")
	}
	return claims.Subject, nil
}
