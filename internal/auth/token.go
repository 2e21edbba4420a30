package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthenticated is returned for a missing, malformed, expired or
// otherwise unverifiable credential, on either the HTTP or realtime channel.
var ErrUnauthenticated = errors.New("unauthenticated")

// SessionCookie carries the session token for both the HTTP and realtime
// surfaces, so authorization semantics stay identical across them.
const SessionCookie = "jwt"

// Principal is the resolved identity behind a verified credential. The same
// principal drives authorization on the HTTP surface and tenant-group
// assignment on the realtime surface.
type Principal struct {
	UserID       int64
	Role         Role
	RestaurantID int64
}

type claims struct {
	Role         string `json:"role"`
	RestaurantID int64  `json:"restaurantId"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the signed session tokens shared by both
// surfaces.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

// NewTokens creates a token issuer/verifier with the given HMAC secret.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl}
}

// TTL returns the token lifetime, so the session cookie can expire with
// the token it carries.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the given principal.
func (t *Tokens) Issue(p Principal, now time.Time) (string, error) {
	c := claims{
		Role:         string(p.Role),
		RestaurantID: p.RestaurantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", p.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
}

// Verify checks signature and expiry and resolves the token to a principal.
func (t *Tokens) Verify(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, ErrUnauthenticated
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(tokenString, &c, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, ErrUnauthenticated
	}

	role, ok := ParseRole(c.Role)
	if !ok {
		return Principal{}, ErrUnauthenticated
	}

	var userID int64
	if _, err := fmt.Sscanf(c.Subject, "%d", &userID); err != nil {
		return Principal{}, ErrUnauthenticated
	}

	return Principal{
		UserID:       userID,
		Role:         role,
		RestaurantID: c.RestaurantID,
	}, nil
}
