package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"truckbay-api/internal/config"
)

// Principal is the verified identity behind a request
type Principal struct {
	Subject  string
	Email    string
	DealerID int
}

// Verifier is the identity-provider capability: it turns a bearer token
// into a principal. Concrete adapters exist per deployment target.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// claims are the token claims the marketplace issues
type claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email,omitempty"`
	DealerID int    `json:"dealer_id,omitempty"`
}

// jwtVerifier validates HMAC-signed tokens
type jwtVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier creates an HMAC JWT verifier adapter
func NewJWTVerifier(cfg config.AuthConfig) (Verifier, error) {
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("auth: JWT secret is required")
	}
	return &jwtVerifier{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}, nil
}

// Verify parses and validates a token string
func (v *jwtVerifier) Verify(_ context.Context, tokenString string) (*Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &claims{},
		func(t *jwt.Token) (interface{}, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &Principal{
		Subject:  c.Subject,
		Email:    c.Email,
		DealerID: c.DealerID,
	}, nil
}

// IssueToken signs a token for a principal. Used by tests and local tooling;
// production tokens come from the external identity provider.
func IssueToken(cfg config.AuthConfig, p Principal, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    p.Email,
		DealerID: p.DealerID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString([]byte(cfg.JWTSecret))
}
