package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token service errors.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrKeyTooShort  = errors.New("signing key must be at least 32 bytes")
)

// MinKeyLength is the shortest HMAC key accepted for HS256.
const MinKeyLength = 32

// TokenConfig configures token issuance and validation.
type TokenConfig struct {
	Key      []byte
	Issuer   string
	Audience string
	TTL      time.Duration
}

// tokenClaims is the JWT payload issued by JWTService.
type tokenClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// JWTService issues and verifies HS256 tokens. It implements TokenVerifier.
type JWTService struct {
	cfg TokenConfig
	now func() time.Time
}

// NewJWTService creates a new JWTService.
func NewJWTService(cfg TokenConfig) (*JWTService, error) {
	if len(cfg.Key) < MinKeyLength {
		return nil, ErrKeyTooShort
	}

	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("jwt: token TTL must be positive, got %s", cfg.TTL)
	}

	return &JWTService{cfg: cfg, now: time.Now}, nil
}

// Issue creates a signed token for the given user name.
func (s *JWTService) Issue(username string) (string, error) {
	now := s.now()

	claims := tokenClaims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			Issuer:    s.cfg.Issuer,
			Audience:  jwt.ClaimStrings{s.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Key)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	return signed, nil
}

// Verify checks the signature, algorithm, issuer, audience and lifetime of
// rawToken and returns its claims.
func (s *JWTService) Verify(_ context.Context, rawToken string) (*TokenClaims, error) {
	claims := &tokenClaims{}

	_, err := jwt.ParseWithClaims(rawToken, claims,
		func(_ *jwt.Token) (any, error) {
			return s.cfg.Key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithAudience(s.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	out := &TokenClaims{
		Subject:  claims.Subject,
		Audience: claims.Audience,
		Issuer:   claims.Issuer,
		Name:     claims.Name,
	}
	if claims.ExpiresAt != nil {
		out.Expiry = claims.ExpiresAt.Time
	}

	return out, nil
}

// TTL returns the lifetime of issued tokens.
func (s *JWTService) TTL() time.Duration {
	return s.cfg.TTL
}
