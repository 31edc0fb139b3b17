// Package auth holds the Google login setup and the bearer tokens issued to
// API clients.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/s/coursehub/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload of an API token.
type Claims struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Enabled reports whether a signing secret is configured.
func (t *Tokens) Enabled() bool {
	return t != nil && len(t.secret) > 0
}

func (t *Tokens) Issue(actor domain.Actor) (string, error) {
	if !t.Enabled() {
		return "", errors.New("issue token: no signing secret configured")
	}
	now := t.now()
	claims := Claims{
		Name: actor.Name,
		Role: actor.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and returns the actor it was issued to.
func (t *Tokens) Parse(raw string) (domain.Actor, error) {
	if !t.Enabled() {
		return domain.Actor{}, ErrInvalidToken
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return domain.Actor{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return domain.Actor{}, ErrInvalidToken
	}
	return domain.Actor{ID: claims.Subject, Name: claims.Name, Role: claims.Role}, nil
}
