package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inventory-api/internal/model"
)

const (
	DefaultTokenTTL       = 24 * time.Hour
	DefaultClockTolerance = 60 * time.Second
)

type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 session tokens. There is no
// revocation store: a token stays valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	leeway time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration, leeway time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: token secret is empty", model.ErrConfiguration)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if leeway < 0 {
		leeway = DefaultClockTolerance
	}

	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		leeway: leeway,
		now:    time.Now,
	}, nil
}

func (s *TokenService) Issue(user model.User) (string, error) {
	now := s.now().UTC()
	claims := sessionClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry, accepting tokens up to the configured
// tolerance past their expiry. It never consults a store.
func (s *TokenService) Verify(token string) (model.Claims, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(s.leeway),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return model.Claims{}, model.ErrTokenExpired
	}
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return model.Claims{}, model.ErrTokenInvalid
	}

	out := model.Claims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Role:    model.Role(claims.Role),
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	out.ExpiresAt = claims.ExpiresAt.Time

	return out, nil
}
