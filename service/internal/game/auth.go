// internal/game/auth.go
package game

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrUnauthorized is returned when a connection carries no valid token.
var ErrUnauthorized = errors.New("unauthorized")

// Claims identify the team a simulation connection drives.
type Claims struct {
	Team string `json:"team"`
	jwt.RegisteredClaims
}

// IssueToken mints an HS256 token for team that expires after ttl.
func IssueToken(secret []byte, team string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", fmt.Errorf("%w: empty signing secret", ErrUnauthorized)
	}
	now := time.Now()
	claims := Claims{
		Team: team,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   team,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseToken verifies tokenString and returns its claims.
func ParseToken(secret []byte, tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	if claims.Team == "" {
		return nil, fmt.Errorf("%w: token has no team", ErrUnauthorized)
	}
	return claims, nil
}

// tokenFromRequest takes the bearer token from the Authorization header, or
// from the "token" query parameter for clients that cannot set headers on
// the upgrade request.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if tok, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
