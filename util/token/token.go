// Package token issues and verifies the signed, expiring session tokens
// (HS256 JWT) that carry a user id.
//
// Tokens are stateless: there is no server-side revocation, a token stays
// valid until it expires.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is matched by every verification failure.
	ErrInvalidToken = errors.New("invalid token")

	ErrMalformed        = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: invalid signature", ErrInvalidToken)
	ErrExpired          = fmt.Errorf("%w: expired", ErrInvalidToken)
)

// Claims is the token payload.
type Claims struct {
	UserID int `json:"user_id"`
	jwt.RegisteredClaims
}

// Service signs tokens with a secret fixed at construction.
type Service struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type Option func(*Service)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(secret []byte, ttl time.Duration, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	s := &Service{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the lifetime of issued tokens.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue returns a signed token for userID expiring after the service TTL.
func (s *Service) Issue(userID int) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("invalid user id %d", userID)
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the user id. Failures are
// ErrMalformed, ErrInvalidSignature or ErrExpired.
func (s *Service) Verify(tokenString string) (int, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, classify(err)
	}
	if claims.UserID <= 0 {
		return 0, ErrMalformed
	}
	return claims.UserID, nil
}

// Reason names the failure for logs and metrics.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrMalformed):
		return "malformed"
	default:
		return "unknown"
	}
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrInvalidSignature
	default:
		return ErrMalformed
	}
}
