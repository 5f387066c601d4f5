package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT validation errors.
var (
	// ErrInvalidToken indicates a token is malformed or fails validation.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken indicates a token has expired.
	ErrExpiredToken = errors.New("token expired")
)

// tokenIssuer is written into every session token.
const tokenIssuer = "cashclear"

// SessionClaims defines JWT claims carried by operator session tokens. The registered ID
// claim holds the session identifier.
type SessionClaims struct {
	OperatorID string `json:"operator_id"`
	Role       string `json:"role"`
	BreakGlass bool   `json:"break_glass,omitempty"`
	jwt.RegisteredClaims
}

// GenerateSessionToken signs a session JWT that expires at expiresAt.
func GenerateSessionToken(secret, sessionID, operatorID, role string, breakGlass bool, expiresAt time.Time) (string, error) {
	if secret == "" {
		return "", ErrInvalidToken
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		OperatorID: operatorID,
		Role:       role,
		BreakGlass: breakGlass,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Issuer:    tokenIssuer,
			Subject:   operatorID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt.UTC()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates a session JWT and returns its claims.
func ParseSessionToken(secret, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
