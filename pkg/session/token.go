package session

import (
	"fmt"
	"time"

	"github.com/arkfood/ordering-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// Claims identifies an anonymous cart session. SessionID keys the persisted
// cart, so every client presenting the same token sees the same cart.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Mint issues a signed token for a brand new session.
func Mint(cfg config.SessionConfig, now time.Time) (token string, sessionID string, err error) {
	return MintFor(cfg, now, uuid.NewString())
}

// MintFor issues a signed token for an existing session id.
func MintFor(cfg config.SessionConfig, now time.Time, sessionID string) (string, string, error) {
	if cfg.Secret == "" {
		return "", "", fmt.Errorf("session secret is required")
	}
	if cfg.Issuer == "" {
		return "", "", fmt.Errorf("session issuer is required")
	}
	if cfg.TTLMinutes <= 0 {
		return "", "", fmt.Errorf("session ttl minutes must be positive")
	}
	if sessionID == "" {
		return "", "", fmt.Errorf("session id is required")
	}

	claims := Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL())),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, sessionID, nil
}

// Parse validates the token string and returns typed claims.
func Parse(cfg config.SessionConfig, tokenString string) (*Claims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, fmt.Errorf("token missing session id")
	}

	return claims, nil
}
