// Package token signs and verifies the session tokens carried in the auth cookie.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrShortKey     = errors.New("signing key must be at least 32 characters")
)

const minKeySize = 32

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type JWTMaker struct {
	key      []byte
	duration time.Duration
}

func NewJWTMaker(key string, duration time.Duration) (*JWTMaker, error) {
	if len(key) < minKeySize {
		return nil, ErrShortKey
	}
	return &JWTMaker{key: []byte(key), duration: duration}, nil
}

func (m *JWTMaker) Create(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *JWTMaker) Verify(tokenString string) (*Claims, error) {
	keyFunc := func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.key, nil
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, keyFunc)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
