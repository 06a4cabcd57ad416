// Package auth verifies bearer tokens issued by the external identity
// provider. Sign-up, login and password handling live with the provider.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"permit-review/internal/config"
	"permit-review/internal/domain"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrNotConfigured = errors.New("token verification is not configured")
)

type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type Service interface {
	ValidateAccessToken(tokenString string) (*domain.Principal, error)
}

type service struct {
	secret []byte
	issuer string
}

func NewService(cfg *config.Config) Service {
	return &service{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
	}
}

func (s *service) ValidateAccessToken(tokenString string) (*domain.Principal, error) {
	if len(s.secret) == 0 {
		return nil, ErrNotConfigured
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &domain.Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
	}, nil
}

// IssueToken signs a token the way the identity provider does. It is used
// by local tooling and tests.
func IssueToken(secret, issuer string, principal domain.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Email: principal.Email,
		Name:  principal.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.UserID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
